package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/codegen"
	"touristiq/iqhub/internal/events"
	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/repository"
)

type IssuedCode struct {
	Code      string `json:"code"`
	Remaining int    `json:"remaining"`
}

// CodeValidation is shown to partners, so TouristCode is masked.
type CodeValidation struct {
	Valid       bool   `json:"valid"`
	Used        bool   `json:"used"`
	TouristCode string `json:"touristIqCode,omitempty"`
}

type RedeemRequest struct {
	Code               string
	OriginalAmount     decimal.Decimal
	DiscountPercentage decimal.Decimal
	OfferDescription   string
}

type PlafondSummary struct {
	AvailableUses     int             `json:"availableUses"`
	TotalDiscountUsed decimal.Decimal `json:"totalDiscountUsed"`
	RemainingPlafond  decimal.Decimal `json:"remainingPlafond"`
}

type OTCService interface {
	Issue(ctx context.Context, tourist string) (*IssuedCode, error)
	Validate(ctx context.Context, code string) (*CodeValidation, error)
	Redeem(ctx context.Context, partner string, req RedeemRequest) (*DiscountResult, error)
	ListForTourist(ctx context.Context, tourist string) ([]model.OneTimeCode, error)
	Summary(ctx context.Context, tourist string) (*PlafondSummary, error)
	ListRedemptions(ctx context.Context, partner string) ([]model.OneTimeCode, error)
}

type otcService struct {
	otcRepo     repository.OneTimeCodeRepository
	codeRepo    repository.IQCodeRepository
	partnerRepo repository.PartnerRepository
	generator   *codegen.Generator
	publisher   events.Publisher
	logger      *zap.Logger
	now         func() time.Time
}

func NewOTCService(
	otcRepo repository.OneTimeCodeRepository,
	codeRepo repository.IQCodeRepository,
	partnerRepo repository.PartnerRepository,
	generator *codegen.Generator,
	publisher events.Publisher,
	logger *zap.Logger,
) OTCService {
	return &otcService{
		otcRepo:     otcRepo,
		codeRepo:    codeRepo,
		partnerRepo: partnerRepo,
		generator:   generator,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// issueRetries covers the window between the uniqueness check and the insert.
const issueRetries = 3

func (s *otcService) Issue(ctx context.Context, tourist string) (*IssuedCode, error) {
	for attempt := 0; attempt < issueRetries; attempt++ {
		code, err := s.generator.OneTime(ctx, s.otcRepo.Exists)
		if err != nil {
			return nil, err
		}
		remaining, err := s.otcRepo.Issue(ctx, &model.OneTimeCode{Code: code, TouristCode: tourist})
		switch {
		case err == nil:
			return &IssuedCode{Code: code, Remaining: remaining}, nil
		case errors.Is(err, repository.ErrNoUsesRemaining):
			return nil, ErrNoUsesRemaining
		case errors.Is(err, repository.ErrDuplicate):
			continue
		default:
			return nil, fmt.Errorf("issue one-time code: %w", err)
		}
	}
	return nil, codegen.ErrGenerationExhausted
}

func (s *otcService) Validate(ctx context.Context, code string) (*CodeValidation, error) {
	otc, err := s.otcRepo.GetByCode(ctx, normalizeOTC(code))
	if errors.Is(err, repository.ErrNotFound) {
		return &CodeValidation{Valid: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &CodeValidation{Valid: true, Used: otc.IsUsed, TouristCode: model.MaskCode(otc.TouristCode)}, nil
}

func (s *otcService) Redeem(ctx context.Context, partner string, req RedeemRequest) (*DiscountResult, error) {
	code := normalizeOTC(req.Code)
	if code == "" {
		return nil, invalid("Codice monouso mancante")
	}
	if !req.OriginalAmount.IsPositive() {
		return nil, invalid("L'importo originale deve essere maggiore di zero")
	}
	if !req.DiscountPercentage.IsPositive() || req.DiscountPercentage.GreaterThan(hundred) {
		return nil, invalid("La percentuale di sconto deve essere compresa tra 0 e 100")
	}

	partnerCode, err := s.codeRepo.GetByCode(ctx, partner)
	if err != nil {
		return nil, notFoundAs(err, ErrCodeNotFound)
	}
	if partnerCode.IsExcluded {
		return nil, ErrPartnerExcluded
	}
	partnerName := s.partnerName(ctx, partnerCode)

	var result DiscountResult
	otc, err := s.otcRepo.Redeem(ctx, code, func(_ *model.OneTimeCode, prior decimal.Decimal) (model.Redemption, error) {
		var err error
		result, err = ApplyPlafond(req.OriginalAmount, req.DiscountPercentage, prior)
		if err != nil {
			return model.Redemption{}, err
		}
		return model.Redemption{
			PartnerCode:        partnerCode.Code,
			PartnerName:        partnerName,
			OriginalAmount:     req.OriginalAmount,
			DiscountPercentage: req.DiscountPercentage,
			DiscountAmount:     result.AppliedDiscount,
			OfferDescription:   strings.TrimSpace(req.OfferDescription),
			UsedAt:             s.now(),
		}, nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrOTCNotFound
	case errors.Is(err, repository.ErrAlreadyUsed):
		return nil, ErrAlreadyUsed
	case errors.Is(err, ErrPlafondExhausted):
		s.logger.Info("plafond exhausted", zap.String("otc", code), zap.String("partner", partnerCode.Code))
		return nil, ErrPlafondExhausted
	case err != nil:
		return nil, fmt.Errorf("redeem one-time code: %w", err)
	}

	fields := []zap.Field{
		zap.String("otc", otc.Code),
		zap.String("tourist", otc.TouristCode),
		zap.String("partner", partnerCode.Code),
		zap.String("discount", result.AppliedDiscount.StringFixed(2)),
		zap.String("remaining_plafond", result.RemainingPlafond.StringFixed(2)),
	}
	if result.Clamped {
		s.logger.Info("discount clamped to plafond", append(fields, zap.String("requested", result.RawDiscount.StringFixed(2)))...)
	} else {
		s.logger.Info("discount applied", fields...)
	}

	event := events.DiscountApplied{
		OTCCode:          otc.Code,
		TouristCode:      otc.TouristCode,
		PartnerCode:      partnerCode.Code,
		OriginalAmount:   result.OriginalAmount.StringFixed(2),
		DiscountAmount:   result.AppliedDiscount.StringFixed(2),
		RemainingPlafond: result.RemainingPlafond.StringFixed(2),
		UsedAt:           *otc.UsedAt,
	}
	if err := s.publisher.PublishDiscountApplied(ctx, event); err != nil {
		s.logger.Warn("publish discount.applied failed", zap.String("otc", otc.Code), zap.Error(err))
	}
	return &result, nil
}

// partnerName prefers the business name from the partner profile.
func (s *otcService) partnerName(ctx context.Context, partner *model.IQCode) string {
	if profile, err := s.partnerRepo.GetProfile(ctx, partner.Code); err == nil && profile.BusinessName != "" {
		return profile.BusinessName
	}
	if partner.AssignedTo != "" {
		return partner.AssignedTo
	}
	return partner.Code
}

func (s *otcService) ListForTourist(ctx context.Context, tourist string) ([]model.OneTimeCode, error) {
	return s.otcRepo.ListByTourist(ctx, tourist)
}

func (s *otcService) Summary(ctx context.Context, tourist string) (*PlafondSummary, error) {
	code, err := s.codeRepo.GetByCode(ctx, tourist)
	if err != nil {
		return nil, notFoundAs(err, ErrCodeNotFound)
	}
	used, err := s.otcRepo.SumDiscounts(ctx, tourist)
	if err != nil {
		return nil, err
	}
	remaining := PlafondLimit.Sub(used)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return &PlafondSummary{
		AvailableUses:     code.AvailableOneTimeUses,
		TotalDiscountUsed: used,
		RemainingPlafond:  remaining,
	}, nil
}

func (s *otcService) ListRedemptions(ctx context.Context, partner string) ([]model.OneTimeCode, error) {
	return s.otcRepo.ListByPartner(ctx, partner)
}

func normalizeOTC(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var _ OTCService = (*otcService)(nil)
