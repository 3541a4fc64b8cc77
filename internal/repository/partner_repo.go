package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"touristiq/iqhub/internal/model"
)

type PartnerRepository interface {
	CreateOffer(ctx context.Context, offer *model.PartnerOffer) error
	ListOffersByPartner(ctx context.Context, partner string) ([]model.PartnerOffer, error)
	DeleteOffer(ctx context.Context, partner string, id uuid.UUID) error
	// ListAvailableOffers skips excluded or deleted partners and expired offers.
	ListAvailableOffers(ctx context.Context, now time.Time) ([]model.PartnerOffer, error)
	SaveProfile(ctx context.Context, profile *model.PartnerProfile) error
	GetProfile(ctx context.Context, partner string) (*model.PartnerProfile, error)
}
