package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"touristiq/iqhub/internal/model"
)

type pgFeedbackRepository struct {
	db *gorm.DB
}

func NewPGFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &pgFeedbackRepository{db: db}
}

func (r *pgFeedbackRepository) Create(ctx context.Context, fb *model.PartnerFeedback) error {
	return translateError(r.db.WithContext(ctx).Create(fb).Error)
}

func (r *pgFeedbackRepository) RecomputeRating(ctx context.Context, partner string, fn RatingFunc) (*model.PartnerRating, *model.PartnerRating, error) {
	var rating, previous *model.PartnerRating
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// make sure there is a row to lock
		seed := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.PartnerRating{PartnerCode: partner})
		if seed.Error != nil {
			return seed.Error
		}
		var current model.PartnerRating
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("partner_code = ?", partner).
			First(&current).Error
		if err != nil {
			return translateError(err)
		}
		if seed.RowsAffected == 0 {
			previous = &current
		}

		var positive, total int64
		err = tx.Model(&model.PartnerFeedback{}).
			Where("partner_code = ?", partner).
			Select("COUNT(*) FILTER (WHERE rating = ?), COUNT(*)", model.FeedbackPositive).
			Row().Scan(&positive, &total)
		if err != nil {
			return err
		}

		next := fn(int(positive), int(total))
		next.PartnerCode = partner
		next.UpdatedAt = time.Now()
		err = tx.Model(&model.PartnerRating{}).
			Where("partner_code = ?", partner).
			Updates(map[string]interface{}{
				"positive":      next.Positive,
				"total":         next.Total,
				"percentage":    next.Percentage,
				"warning_level": next.WarningLevel,
				"updated_at":    next.UpdatedAt,
			}).Error
		if err != nil {
			return err
		}
		rating = &next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rating, previous, nil
}

func (r *pgFeedbackRepository) GetRating(ctx context.Context, partner string) (*model.PartnerRating, error) {
	var rating model.PartnerRating
	if err := r.db.WithContext(ctx).Where("partner_code = ?", partner).First(&rating).Error; err != nil {
		return nil, translateError(err)
	}
	return &rating, nil
}

func (r *pgFeedbackRepository) ListRatings(ctx context.Context) ([]model.PartnerRating, error) {
	var ratings []model.PartnerRating
	err := r.db.WithContext(ctx).Order("percentage ASC").Find(&ratings).Error
	return ratings, err
}
