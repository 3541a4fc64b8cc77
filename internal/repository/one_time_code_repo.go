package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"touristiq/iqhub/internal/model"
)

// RedeemFunc decides the redemption fields from the locked code and the
// tourist's prior discount total. Returning an error aborts the redemption.
type RedeemFunc func(otc *model.OneTimeCode, priorDiscounts decimal.Decimal) (model.Redemption, error)

type OneTimeCodeRepository interface {
	Exists(ctx context.Context, code string) (bool, error)
	// Issue debits one of the tourist's available uses and inserts otc atomically.
	Issue(ctx context.Context, otc *model.OneTimeCode) (int, error)
	GetByCode(ctx context.Context, code string) (*model.OneTimeCode, error)
	// Redeem serializes redemptions per tourist and marks the code used at most once.
	Redeem(ctx context.Context, code string, fn RedeemFunc) (*model.OneTimeCode, error)
	ListByTourist(ctx context.Context, tourist string) ([]model.OneTimeCode, error)
	ListByPartner(ctx context.Context, partner string) ([]model.OneTimeCode, error)
	SumDiscounts(ctx context.Context, tourist string) (decimal.Decimal, error)
	// FindRecentRedemption returns the latest code of tourist redeemed by partner after since.
	FindRecentRedemption(ctx context.Context, tourist, partner string, since time.Time) (*model.OneTimeCode, error)
}
