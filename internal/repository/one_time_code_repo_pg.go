package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"touristiq/iqhub/internal/model"
)

type pgOneTimeCodeRepository struct {
	db *gorm.DB
}

func NewPGOneTimeCodeRepository(db *gorm.DB) OneTimeCodeRepository {
	return &pgOneTimeCodeRepository{db: db}
}

func (r *pgOneTimeCodeRepository) Exists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.OneTimeCode{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *pgOneTimeCodeRepository) Issue(ctx context.Context, otc *model.OneTimeCode) (int, error) {
	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tourist model.IQCode
		res := tx.Model(&tourist).
			Clauses(clause.Returning{Columns: []clause.Column{{Name: "available_one_time_uses"}}}).
			Where("code = ? AND available_one_time_uses > 0", otc.TouristCode).
			UpdateColumn("available_one_time_uses", gorm.Expr("available_one_time_uses - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoUsesRemaining
		}
		remaining = tourist.AvailableOneTimeUses
		return translateError(tx.Create(otc).Error)
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *pgOneTimeCodeRepository) GetByCode(ctx context.Context, code string) (*model.OneTimeCode, error) {
	var otc model.OneTimeCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&otc).Error; err != nil {
		return nil, translateError(err)
	}
	return &otc, nil
}

func (r *pgOneTimeCodeRepository) Redeem(ctx context.Context, code string, fn RedeemFunc) (*model.OneTimeCode, error) {
	var otc model.OneTimeCode
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", code).
			First(&otc).Error; err != nil {
			return translateError(err)
		}
		if otc.IsUsed {
			return ErrAlreadyUsed
		}

		// Lock the owning tourist so concurrent redemptions see each other's discounts.
		var tourist model.IQCode
		if err := tx.Unscoped().Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", otc.TouristCode).
			First(&tourist).Error; err != nil {
			return translateError(err)
		}

		prior, err := sumDiscounts(tx, otc.TouristCode)
		if err != nil {
			return err
		}

		redemption, err := fn(&otc, prior)
		if err != nil {
			return err
		}
		otc.Apply(redemption)

		res := tx.Model(&model.OneTimeCode{}).
			Where("id = ? AND is_used = ?", otc.ID, false).
			Updates(map[string]interface{}{
				"is_used":             true,
				"partner_code":        otc.PartnerCode,
				"partner_name":        otc.PartnerName,
				"original_amount":     otc.OriginalAmount,
				"discount_percentage": otc.DiscountPercentage,
				"discount_amount":     otc.DiscountAmount,
				"offer_description":   otc.OfferDescription,
				"used_at":             otc.UsedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyUsed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &otc, nil
}

func (r *pgOneTimeCodeRepository) ListByTourist(ctx context.Context, tourist string) ([]model.OneTimeCode, error) {
	var codes []model.OneTimeCode
	err := r.db.WithContext(ctx).Where("tourist_code = ?", tourist).Order("created_at DESC").Find(&codes).Error
	return codes, err
}

func (r *pgOneTimeCodeRepository) ListByPartner(ctx context.Context, partner string) ([]model.OneTimeCode, error) {
	var codes []model.OneTimeCode
	err := r.db.WithContext(ctx).
		Where("partner_code = ? AND is_used = ?", partner, true).
		Order("used_at DESC").
		Find(&codes).Error
	return codes, err
}

func (r *pgOneTimeCodeRepository) SumDiscounts(ctx context.Context, tourist string) (decimal.Decimal, error) {
	return sumDiscounts(r.db.WithContext(ctx), tourist)
}

func sumDiscounts(db *gorm.DB, tourist string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Model(&model.OneTimeCode{}).
		Where("tourist_code = ? AND is_used = ?", tourist, true).
		Select("COALESCE(SUM(discount_amount), 0)").
		Row().Scan(&total)
	return total, err
}

func (r *pgOneTimeCodeRepository) FindRecentRedemption(ctx context.Context, tourist, partner string, since time.Time) (*model.OneTimeCode, error) {
	var otc model.OneTimeCode
	err := r.db.WithContext(ctx).
		Where("tourist_code = ? AND partner_code = ? AND is_used = ? AND used_at >= ?", tourist, partner, true, since).
		Order("used_at DESC").
		First(&otc).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &otc, nil
}
