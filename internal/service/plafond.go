package service

import (
	"github.com/shopspring/decimal"
)

// PlafondLimit is the cumulative discount cap per tourist, in euro.
var PlafondLimit = decimal.NewFromInt(150)

var hundred = decimal.NewFromInt(100)

// DiscountResult is the outcome of a plafond check. RemainingPlafond is the
// allowance left after this discount is applied.
type DiscountResult struct {
	OriginalAmount   decimal.Decimal
	RawDiscount      decimal.Decimal
	AppliedDiscount  decimal.Decimal
	FinalAmount      decimal.Decimal
	NewTotalUsed     decimal.Decimal
	RemainingPlafond decimal.Decimal
	Clamped          bool
}

// ApplyPlafond computes the discount for one redemption. A discount larger
// than the remaining allowance is reduced to it, never rejected; only an
// already exhausted plafond fails.
func ApplyPlafond(original, percentage, prior decimal.Decimal) (DiscountResult, error) {
	raw := original.Mul(percentage).Div(hundred).Round(2)
	allowance := PlafondLimit.Sub(prior)
	if !allowance.IsPositive() {
		return DiscountResult{}, ErrPlafondExhausted
	}
	applied := decimal.Min(raw, allowance)
	total := prior.Add(applied)
	return DiscountResult{
		OriginalAmount:   original,
		RawDiscount:      raw,
		AppliedDiscount:  applied,
		FinalAmount:      original.Sub(applied),
		NewTotalUsed:     total,
		RemainingPlafond: PlafondLimit.Sub(total),
		Clamped:          applied.LessThan(raw),
	}, nil
}
