package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/repository"
)

// CreditSummary aggregates every package assigned to one issuer.
type CreditSummary struct {
	Packages         []model.CreditPackage `json:"packages"`
	CreditsRemaining int                   `json:"creditsRemaining"`
	CreditsUsed      int                   `json:"creditsUsed"`
}

type CreditService interface {
	AssignPackage(ctx context.Context, admin, recipient string, size int) (*model.CreditPackage, error)
	ListPackages(ctx context.Context) ([]model.CreditPackage, error)
	Credits(ctx context.Context, issuer string) (*CreditSummary, error)
	// Seed assigns a package of arbitrary size without recipient checks. Used at bootstrap.
	Seed(ctx context.Context, recipient string, size int) error
}

type creditService struct {
	codeRepo   repository.IQCodeRepository
	creditRepo repository.CreditRepository
	logger     *zap.Logger
}

func NewCreditService(codeRepo repository.IQCodeRepository, creditRepo repository.CreditRepository, logger *zap.Logger) CreditService {
	return &creditService{codeRepo: codeRepo, creditRepo: creditRepo, logger: logger}
}

func (s *creditService) AssignPackage(ctx context.Context, admin, recipient string, size int) (*model.CreditPackage, error) {
	if !model.IsValidPackageSize(size) {
		return nil, invalid("Dimensione pacchetto non valida (25, 50, 75 o 100)")
	}
	code, err := s.codeRepo.GetByCode(ctx, recipient)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load recipient: %w", err)
	}
	if code.Role != model.RoleStructure && code.Role != model.RolePartner {
		return nil, invalid("I pacchetti si assegnano solo a strutture e partner")
	}

	pkg := &model.CreditPackage{
		RecipientCode:    code.Code,
		PackageSize:      size,
		CreditsRemaining: size,
		AssignedBy:       admin,
	}
	if err := s.creditRepo.Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("create credit package: %w", err)
	}
	s.logger.Info("credit package assigned",
		zap.String("recipient", code.Code),
		zap.Int("size", size),
		zap.String("by", admin),
	)
	return pkg, nil
}

func (s *creditService) ListPackages(ctx context.Context) ([]model.CreditPackage, error) {
	return s.creditRepo.List(ctx)
}

func (s *creditService) Credits(ctx context.Context, issuer string) (*CreditSummary, error) {
	pkgs, err := s.creditRepo.ListByRecipient(ctx, issuer)
	if err != nil {
		return nil, err
	}
	summary := &CreditSummary{Packages: pkgs}
	if summary.Packages == nil {
		summary.Packages = []model.CreditPackage{}
	}
	for _, p := range pkgs {
		summary.CreditsRemaining += p.CreditsRemaining
		summary.CreditsUsed += p.CreditsUsed
	}
	return summary, nil
}

func (s *creditService) Seed(ctx context.Context, recipient string, size int) error {
	pkgs, err := s.creditRepo.ListByRecipient(ctx, recipient)
	if err != nil {
		return err
	}
	if len(pkgs) > 0 {
		return nil
	}
	return s.creditRepo.Create(ctx, &model.CreditPackage{
		RecipientCode:    recipient,
		PackageSize:      size,
		CreditsRemaining: size,
		AssignedBy:       "system",
	})
}

var _ CreditService = (*creditService)(nil)
