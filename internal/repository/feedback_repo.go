package repository

import (
	"context"

	"touristiq/iqhub/internal/model"
)

// RatingFunc builds a partner's rating from its feedback counts.
type RatingFunc func(positive, total int) model.PartnerRating

type FeedbackRepository interface {
	Create(ctx context.Context, fb *model.PartnerFeedback) error
	// RecomputeRating counts the partner's feedback and stores fn's rating
	// while holding the partner's rating row, so concurrent recomputes apply
	// in order. previous is nil for a partner rated for the first time.
	RecomputeRating(ctx context.Context, partner string, fn RatingFunc) (rating, previous *model.PartnerRating, err error)
	GetRating(ctx context.Context, partner string) (*model.PartnerRating, error)
	ListRatings(ctx context.Context) ([]model.PartnerRating, error)
}
