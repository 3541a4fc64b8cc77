package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/repository"
	"touristiq/iqhub/pkg/crypto"
)

// RecoveryService implements the "Custode del Codice": a code holder
// registers a secret word and birth date, stored only as SHA-256 digests,
// and can later recover the code from them.
type RecoveryService interface {
	Activate(ctx context.Context, iqCode, secretWord, birthDate string) error
	Update(ctx context.Context, iqCode, secretWord, birthDate string) error
	Recover(ctx context.Context, secretWord, birthDate string) (string, error)
	Status(ctx context.Context, iqCode string) (bool, error)
}

type recoveryService struct {
	repo   repository.RecoveryRepository
	sealer *crypto.Sealer
	logger *zap.Logger
}

func NewRecoveryService(repo repository.RecoveryRepository, sealer *crypto.Sealer, logger *zap.Logger) RecoveryService {
	return &recoveryService{repo: repo, sealer: sealer, logger: logger}
}

type recoveryHashes struct {
	code, word, date string
}

func hashRecovery(iqCode, secretWord, birthDate string) (recoveryHashes, error) {
	word := crypto.NormalizeSecretWord(secretWord)
	date := crypto.NormalizeBirthDate(birthDate)
	if word == "" || date == "" {
		return recoveryHashes{}, invalid("Parola segreta e data di nascita sono obbligatorie")
	}
	return recoveryHashes{
		code: crypto.SHA256Hex(iqCode),
		word: crypto.SHA256Hex(word),
		date: crypto.SHA256Hex(date),
	}, nil
}

func (s *recoveryService) Activate(ctx context.Context, iqCode, secretWord, birthDate string) error {
	h, err := hashRecovery(iqCode, secretWord, birthDate)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetByIQCodeHash(ctx, h.code); err == nil {
		return ErrAlreadyActivated
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err := s.ensurePairFree(ctx, h); err != nil {
		return err
	}

	sealed, err := s.sealer.Seal(iqCode)
	if err != nil {
		return fmt.Errorf("seal iqcode: %w", err)
	}
	key := &model.RecoveryKey{IQCodeHash: h.code, SecretWordHash: h.word, BirthDateHash: h.date}
	index := &model.RecoveryCodeIndex{IQCodeHash: h.code, SealedCode: sealed}
	if err := s.repo.Create(ctx, key, index); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyActivated
		}
		return fmt.Errorf("create recovery key: %w", err)
	}
	s.logger.Info("custode activated", zap.String("code_hash", h.code[:12]))
	return nil
}

func (s *recoveryService) Update(ctx context.Context, iqCode, secretWord, birthDate string) error {
	h, err := hashRecovery(iqCode, secretWord, birthDate)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetByIQCodeHash(ctx, h.code); errors.Is(err, repository.ErrNotFound) {
		return ErrNotActivated
	} else if err != nil {
		return err
	}
	if err := s.ensurePairFree(ctx, h); err != nil {
		return err
	}
	err = s.repo.Update(ctx, &model.RecoveryKey{IQCodeHash: h.code, SecretWordHash: h.word, BirthDateHash: h.date})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotActivated
	}
	return err
}

// ensurePairFree rejects a (word, date) pair already registered by another
// code so that Recover always resolves to a single code.
func (s *recoveryService) ensurePairFree(ctx context.Context, h recoveryHashes) error {
	existing, err := s.repo.FindByPair(ctx, h.word, h.date)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.IQCodeHash != h.code {
		return ErrRecoveryPairTaken
	}
	return nil
}

func (s *recoveryService) Recover(ctx context.Context, secretWord, birthDate string) (string, error) {
	word := crypto.NormalizeSecretWord(secretWord)
	date := crypto.NormalizeBirthDate(birthDate)
	if word == "" || date == "" {
		return "", invalid("Parola segreta e data di nascita sono obbligatorie")
	}
	key, err := s.repo.FindByPair(ctx, crypto.SHA256Hex(word), crypto.SHA256Hex(date))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrRecoveryNotFound
	}
	if err != nil {
		return "", err
	}
	index, err := s.repo.GetIndex(ctx, key.IQCodeHash)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("recovery index missing", zap.String("code_hash", key.IQCodeHash[:12]))
		return "", ErrRecoveryNotFound
	}
	if err != nil {
		return "", err
	}
	code, err := s.sealer.Open(index.SealedCode)
	if err != nil {
		return "", fmt.Errorf("open recovery index: %w", err)
	}
	// the side index must agree with the digest it is keyed by
	if crypto.SHA256Hex(code) != key.IQCodeHash {
		return "", fmt.Errorf("recovery index mismatch for %s", key.IQCodeHash[:12])
	}
	return code, nil
}

func (s *recoveryService) Status(ctx context.Context, iqCode string) (bool, error) {
	_, err := s.repo.GetByIQCodeHash(ctx, crypto.SHA256Hex(strings.TrimSpace(iqCode)))
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

var _ RecoveryService = (*recoveryService)(nil)
