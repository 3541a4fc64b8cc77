package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/repository"
	jwtpkg "touristiq/iqhub/pkg/jwt"
)

// Session is the resolved identity behind a session cookie.
type Session struct {
	Token  string     `json:"-"`
	JTI    string     `json:"-"`
	IQCode string     `json:"iqCode"`
	Role   model.Role `json:"role"`
}

type SessionService interface {
	Login(ctx context.Context, iqCode string) (*Session, error)
	Resolve(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, token string) error
}

type sessionService struct {
	codeRepo repository.IQCodeRepository
	sessions repository.SessionStore
	jwt      *jwtpkg.Manager
}

func NewSessionService(codeRepo repository.IQCodeRepository, sessions repository.SessionStore, jwt *jwtpkg.Manager) SessionService {
	return &sessionService{codeRepo: codeRepo, sessions: sessions, jwt: jwt}
}

func (s *sessionService) Login(ctx context.Context, iqCode string) (*Session, error) {
	iqCode = strings.ToUpper(strings.TrimSpace(iqCode))
	if iqCode == "" {
		return nil, invalid("Inserisci un codice IQ")
	}
	code, err := s.codeRepo.GetByCode(ctx, iqCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load iqcode: %w", err)
	}
	if !code.CanLogin() {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.jwt.GenerateSessionToken(code.Code, string(code.Role))
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	if err := s.sessions.Register(ctx, claims.ID, code.Code, s.jwt.SessionTTL()); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}
	return &Session{Token: token, JTI: claims.ID, IQCode: code.Code, Role: code.Role}, nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, ErrSessionInvalid
	}
	iqCode, err := s.sessions.Lookup(ctx, claims.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if iqCode != claims.Subject {
		return nil, ErrSessionInvalid
	}
	// blocking or trashing a code ends its open sessions
	code, err := s.codeRepo.GetByCode(ctx, iqCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("load iqcode: %w", err)
	}
	if !code.CanLogin() {
		return nil, ErrSessionInvalid
	}
	return &Session{Token: token, JTI: claims.ID, IQCode: code.Code, Role: code.Role}, nil
}

func (s *sessionService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		// already expired or forged; nothing to revoke
		return nil
	}
	return s.sessions.Revoke(ctx, claims.ID)
}

var _ SessionService = (*sessionService)(nil)
