package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"touristiq/iqhub/internal/model"
)

type pgPartnerRepository struct {
	db *gorm.DB
}

func NewPGPartnerRepository(db *gorm.DB) PartnerRepository {
	return &pgPartnerRepository{db: db}
}

func (r *pgPartnerRepository) CreateOffer(ctx context.Context, offer *model.PartnerOffer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *pgPartnerRepository) ListOffersByPartner(ctx context.Context, partner string) ([]model.PartnerOffer, error) {
	var offers []model.PartnerOffer
	err := r.db.WithContext(ctx).Where("partner_code = ?", partner).Order("created_at DESC").Find(&offers).Error
	return offers, err
}

func (r *pgPartnerRepository) DeleteOffer(ctx context.Context, partner string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND partner_code = ?", id, partner).Delete(&model.PartnerOffer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgPartnerRepository) ListAvailableOffers(ctx context.Context, now time.Time) ([]model.PartnerOffer, error) {
	var offers []model.PartnerOffer
	err := r.db.WithContext(ctx).
		Joins("JOIN iq_codes ON iq_codes.code = partner_offers.partner_code").
		Where("iq_codes.deleted_at IS NULL AND iq_codes.is_excluded = ? AND iq_codes.is_active = ?", false, true).
		Where("partner_offers.is_active = ?", true).
		Where("(partner_offers.valid_until IS NULL OR partner_offers.valid_until > ?)", now).
		Order("partner_offers.created_at DESC").
		Find(&offers).Error
	return offers, err
}

func (r *pgPartnerRepository) SaveProfile(ctx context.Context, profile *model.PartnerProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "partner_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"business_name", "address", "phone", "opening_hours",
			"specialties", "certifications", "updated_at",
		}),
	}).Create(profile).Error
}

func (r *pgPartnerRepository) GetProfile(ctx context.Context, partner string) (*model.PartnerProfile, error) {
	var profile model.PartnerProfile
	if err := r.db.WithContext(ctx).Where("partner_code = ?", partner).First(&profile).Error; err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}
