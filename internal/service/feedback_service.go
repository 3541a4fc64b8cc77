package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"touristiq/iqhub/internal/events"
	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/repository"
)

// FeedbackWindow bounds how long after a redemption a tourist may rate the
// partner without naming the code explicitly.
const FeedbackWindow = 2 * time.Hour

type FeedbackRequest struct {
	PartnerCode string
	OTCCode     string
	Rating      model.FeedbackRating
}

type FeedbackService interface {
	Record(ctx context.Context, tourist string, req FeedbackRequest) (*model.PartnerRating, error)
	Recompute(ctx context.Context, partner string) (*model.PartnerRating, error)
	Rating(ctx context.Context, partner string) (*model.PartnerRating, error)
	ListRatings(ctx context.Context) ([]model.PartnerRating, error)
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
	otcRepo      repository.OneTimeCodeRepository
	publisher    events.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	otcRepo repository.OneTimeCodeRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		otcRepo:      otcRepo,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *feedbackService) Record(ctx context.Context, tourist string, req FeedbackRequest) (*model.PartnerRating, error) {
	partner := strings.TrimSpace(req.PartnerCode)
	if partner == "" {
		return nil, invalid("Codice partner mancante")
	}
	if !req.Rating.Valid() {
		return nil, invalid("Valutazione non valida: usa positive o negative")
	}

	otc, err := s.findRedemption(ctx, tourist, partner, normalizeOTC(req.OTCCode))
	if err != nil {
		return nil, err
	}

	fb := &model.PartnerFeedback{
		TouristCode: tourist,
		PartnerCode: partner,
		OTCCode:     otc.Code,
		Rating:      req.Rating,
	}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrFeedbackExists
		}
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	rating, err := s.Recompute(ctx, partner)
	if err != nil {
		return nil, err
	}
	event := events.FeedbackRecorded{
		PartnerCode:  partner,
		Rating:       string(req.Rating),
		Percentage:   rating.Percentage,
		WarningLevel: rating.WarningLevel,
		RecordedAt:   fb.CreatedAt,
	}
	if err := s.publisher.PublishFeedbackRecorded(ctx, event); err != nil {
		s.logger.Warn("publish feedback.recorded failed", zap.String("partner", partner), zap.Error(err))
	}
	return rating, nil
}

// findRedemption resolves the code being rated. Without an explicit code the
// latest redemption by partner inside FeedbackWindow is used.
func (s *feedbackService) findRedemption(ctx context.Context, tourist, partner, code string) (*model.OneTimeCode, error) {
	if code == "" {
		otc, err := s.otcRepo.FindRecentRedemption(ctx, tourist, partner, s.now().Add(-FeedbackWindow))
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRedemptionNotFound
		}
		return otc, err
	}
	otc, err := s.otcRepo.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRedemptionNotFound
	}
	if err != nil {
		return nil, err
	}
	if otc.TouristCode != tourist {
		return nil, ErrForbidden
	}
	if !otc.IsUsed || otc.PartnerCode == nil || *otc.PartnerCode != partner {
		return nil, ErrRedemptionNotFound
	}
	return otc, nil
}

func (s *feedbackService) Recompute(ctx context.Context, partner string) (*model.PartnerRating, error) {
	rating, previous, err := s.feedbackRepo.RecomputeRating(ctx, partner, func(positive, total int) model.PartnerRating {
		r := model.PartnerRating{Positive: positive, Total: total}
		if total > 0 {
			r.Percentage = math.Round(float64(positive)*10000/float64(total)) / 100
		}
		r.WarningLevel = WarningLevel(r.Percentage, total)
		return r
	})
	if err != nil {
		return nil, fmt.Errorf("recompute rating: %w", err)
	}
	if previous != nil && previous.WarningLevel != rating.WarningLevel {
		s.logger.Info("partner warning level changed",
			zap.String("partner", partner),
			zap.Int("from", previous.WarningLevel),
			zap.Int("to", rating.WarningLevel),
			zap.Float64("percentage", rating.Percentage),
		)
	}
	return rating, nil
}

// WarningLevel maps a positive percentage to 0 (fine) .. 4 (critical).
// A partner with no feedback has no warning.
func WarningLevel(percentage float64, total int) int {
	switch {
	case total == 0 || percentage >= 70:
		return 0
	case percentage >= 60:
		return 1
	case percentage >= 50:
		return 2
	case percentage >= 40:
		return 3
	default:
		return 4
	}
}

func (s *feedbackService) Rating(ctx context.Context, partner string) (*model.PartnerRating, error) {
	rating, err := s.feedbackRepo.GetRating(ctx, partner)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.PartnerRating{PartnerCode: partner}, nil
	}
	return rating, err
}

func (s *feedbackService) ListRatings(ctx context.Context) ([]model.PartnerRating, error) {
	return s.feedbackRepo.ListRatings(ctx)
}

var _ FeedbackService = (*feedbackService)(nil)
