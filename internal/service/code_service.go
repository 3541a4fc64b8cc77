package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"touristiq/iqhub/internal/codegen"
	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/repository"
)

// GenerateRequest is an admin request for a new IQCode.
type GenerateRequest struct {
	CodeType   model.CodeType
	Role       model.Role
	Location   string
	AssignedTo string
}

// GeneratedCode is returned by every generation path. CreditsRemaining is
// set only when the generation was charged to a credit package.
type GeneratedCode struct {
	Code             *model.IQCode
	CreditsRemaining *int
}

type CodeListFilter struct {
	Role           model.Role
	Status         model.CodeStatus
	IncludeDeleted bool
}

type CodeService interface {
	GenerateByAdmin(ctx context.Context, admin string, req GenerateRequest) (*GeneratedCode, error)
	GenerateTouristCode(ctx context.Context, issuer, location, assignedTo string) (*GeneratedCode, error)
	GenerateTemporaryCode(ctx context.Context, issuer string) (*GeneratedCode, error)
	List(ctx context.Context, filter CodeListFilter) ([]model.IQCode, error)
	SetStatus(ctx context.Context, code string, status model.CodeStatus) error
	SoftDelete(ctx context.Context, code string) error
	Restore(ctx context.Context, code string) error
	ListTrash(ctx context.Context) ([]model.IQCode, error)
	EmptyTrash(ctx context.Context) (int64, error)
	SetPartnerExcluded(ctx context.Context, partner string, excluded bool) error
}

type codeService struct {
	codeRepo    repository.IQCodeRepository
	generator   *codegen.Generator
	initialUses int
	logger      *zap.Logger
}

func NewCodeService(codeRepo repository.IQCodeRepository, generator *codegen.Generator, initialUses int, logger *zap.Logger) CodeService {
	return &codeService{
		codeRepo:    codeRepo,
		generator:   generator,
		initialUses: initialUses,
		logger:      logger,
	}
}

func (s *codeService) GenerateByAdmin(ctx context.Context, admin string, req GenerateRequest) (*GeneratedCode, error) {
	switch req.CodeType {
	case model.CodeTypeEmotional:
		return s.generateEmotional(ctx, admin, req.Location, req.AssignedTo)
	case model.CodeTypeProfessional:
		if req.Role != model.RoleStructure && req.Role != model.RolePartner {
			return nil, invalid("I codici professionali sono riservati a strutture e partner")
		}
		code, err := s.generator.Professional(ctx, req.Location, req.Role, s.codeRepo.Exists)
		if err != nil {
			return nil, err
		}
		iq := &model.IQCode{
			Code:       code,
			Role:       req.Role,
			IsActive:   true,
			Status:     model.CodeStatusApproved,
			AssignedTo: strings.TrimSpace(req.AssignedTo),
			Location:   strings.ToUpper(strings.TrimSpace(req.Location)),
			CodeType:   model.CodeTypeProfessional,
			CreatedBy:  admin,
		}
		if err := s.codeRepo.Create(ctx, iq); err != nil {
			return nil, translateCreateError(err)
		}
		s.logger.Info("professional code generated", zap.String("code", code), zap.String("role", string(req.Role)), zap.String("by", admin))
		return &GeneratedCode{Code: iq}, nil
	default:
		return nil, invalid("Tipo di codice non valido")
	}
}

func (s *codeService) GenerateTouristCode(ctx context.Context, issuer, location, assignedTo string) (*GeneratedCode, error) {
	return s.generateEmotional(ctx, issuer, location, assignedTo)
}

// generateEmotional creates a tourist code and charges one credit to issuer
// in the same transaction.
func (s *codeService) generateEmotional(ctx context.Context, issuer, location, assignedTo string) (*GeneratedCode, error) {
	code, err := s.generator.Emotional(ctx, location, s.codeRepo.Exists)
	if err != nil {
		return nil, err
	}
	iq := &model.IQCode{
		Code:                 code,
		Role:                 model.RoleTourist,
		IsActive:             true,
		Status:               model.CodeStatusApproved,
		AssignedTo:           strings.TrimSpace(assignedTo),
		Location:             strings.ToUpper(strings.TrimSpace(location)),
		CodeType:             model.CodeTypeEmotional,
		CreatedBy:            issuer,
		AvailableOneTimeUses: s.initialUses,
	}
	remaining, err := s.codeRepo.CreateCharged(ctx, iq, issuer)
	if errors.Is(err, repository.ErrInsufficientCredits) {
		s.logger.Warn("credits exhausted", zap.String("issuer", issuer))
		return nil, ErrInsufficientCredits
	}
	if err != nil {
		return nil, translateCreateError(err)
	}
	s.logger.Info("tourist code generated",
		zap.String("code", code),
		zap.String("by", issuer),
		zap.Int("credits_remaining", remaining),
	)
	return &GeneratedCode{Code: iq, CreditsRemaining: &remaining}, nil
}

func (s *codeService) GenerateTemporaryCode(ctx context.Context, issuer string) (*GeneratedCode, error) {
	code, err := s.generator.Temporary(ctx, s.codeRepo.Exists)
	if err != nil {
		return nil, err
	}
	iq := &model.IQCode{
		Code:                 code,
		Role:                 model.RoleTourist,
		IsActive:             true,
		Status:               model.CodeStatusApproved,
		CodeType:             model.CodeTypeTemporary,
		CreatedBy:            issuer,
		AvailableOneTimeUses: s.initialUses,
	}
	if err := s.codeRepo.Create(ctx, iq); err != nil {
		return nil, translateCreateError(err)
	}
	return &GeneratedCode{Code: iq}, nil
}

func (s *codeService) List(ctx context.Context, filter CodeListFilter) ([]model.IQCode, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, invalid("Ruolo non valido")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("Stato non valido")
	}
	codes, err := s.codeRepo.List(ctx, repository.IQCodeFilter{Role: filter.Role, Status: filter.Status})
	if err != nil {
		return nil, err
	}
	if !filter.IncludeDeleted {
		return codes, nil
	}
	trash, err := s.codeRepo.ListDeleted(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range trash {
		if (filter.Role == "" || c.Role == filter.Role) && (filter.Status == "" || c.Status == filter.Status) {
			codes = append(codes, c)
		}
	}
	return codes, nil
}

func (s *codeService) SetStatus(ctx context.Context, code string, status model.CodeStatus) error {
	if !status.Valid() {
		return invalid("Stato non valido")
	}
	return notFoundAs(s.codeRepo.UpdateStatus(ctx, code, status), ErrCodeNotFound)
}

func (s *codeService) SoftDelete(ctx context.Context, code string) error {
	return notFoundAs(s.codeRepo.SoftDelete(ctx, code), ErrCodeNotFound)
}

func (s *codeService) Restore(ctx context.Context, code string) error {
	return notFoundAs(s.codeRepo.Restore(ctx, code), ErrCodeNotFound)
}

func (s *codeService) ListTrash(ctx context.Context) ([]model.IQCode, error) {
	return s.codeRepo.ListDeleted(ctx)
}

func (s *codeService) EmptyTrash(ctx context.Context) (int64, error) {
	n, err := s.codeRepo.PurgeDeleted(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("trash emptied", zap.Int64("purged", n))
	return n, nil
}

func (s *codeService) SetPartnerExcluded(ctx context.Context, partner string, excluded bool) error {
	code, err := s.codeRepo.GetByCode(ctx, partner)
	if err != nil {
		return notFoundAs(err, ErrCodeNotFound)
	}
	if code.Role != model.RolePartner {
		return invalid("Il codice indicato non appartiene a un partner")
	}
	if err := s.codeRepo.SetExcluded(ctx, partner, excluded); err != nil {
		return notFoundAs(err, ErrCodeNotFound)
	}
	s.logger.Info("partner exclusion changed", zap.String("partner", partner), zap.Bool("excluded", excluded))
	return nil
}

func translateCreateError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrCodeConflict
	}
	return fmt.Errorf("create iqcode: %w", err)
}

// notFoundAs maps repository.ErrNotFound to a service sentinel.
func notFoundAs(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

var _ CodeService = (*codeService)(nil)
