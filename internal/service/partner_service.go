package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/repository"
)

type OfferRequest struct {
	Title              string
	Description        string
	DiscountPercentage int
	ValidUntil         *time.Time
}

type ProfileRequest struct {
	BusinessName   string
	Address        string
	Phone          string
	OpeningHours   model.OpeningHours
	Specialties    []string
	Certifications []string
}

// PartnerView is what a tourist sees of a partner.
type PartnerView struct {
	Profile *model.PartnerProfile `json:"profile"`
	Offers  []model.PartnerOffer  `json:"offers"`
	Rating  *model.PartnerRating  `json:"rating"`
}

type PartnerService interface {
	CreateOffer(ctx context.Context, partner string, req OfferRequest) (*model.PartnerOffer, error)
	ListOffers(ctx context.Context, partner string) ([]model.PartnerOffer, error)
	DeleteOffer(ctx context.Context, partner string, id uuid.UUID) error
	ListActiveOffers(ctx context.Context) ([]model.PartnerOffer, error)
	UpsertProfile(ctx context.Context, partner string, req ProfileRequest) (*model.PartnerProfile, error)
	GetProfile(ctx context.Context, partner string) (*model.PartnerProfile, error)
	View(ctx context.Context, partner string) (*PartnerView, error)
}

type partnerService struct {
	partnerRepo  repository.PartnerRepository
	codeRepo     repository.IQCodeRepository
	feedbackRepo repository.FeedbackRepository
	now          func() time.Time
}

func NewPartnerService(
	partnerRepo repository.PartnerRepository,
	codeRepo repository.IQCodeRepository,
	feedbackRepo repository.FeedbackRepository,
) PartnerService {
	return &partnerService{
		partnerRepo:  partnerRepo,
		codeRepo:     codeRepo,
		feedbackRepo: feedbackRepo,
		now:          time.Now,
	}
}

func (s *partnerService) CreateOffer(ctx context.Context, partner string, req OfferRequest) (*model.PartnerOffer, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("Il titolo dell'offerta è obbligatorio")
	}
	if req.DiscountPercentage < 1 || req.DiscountPercentage > 100 {
		return nil, invalid("La percentuale di sconto deve essere compresa tra 1 e 100")
	}
	if req.ValidUntil != nil && !req.ValidUntil.After(s.now()) {
		return nil, invalid("La data di scadenza deve essere futura")
	}
	offer := &model.PartnerOffer{
		PartnerCode:        partner,
		Title:              title,
		Description:        strings.TrimSpace(req.Description),
		DiscountPercentage: req.DiscountPercentage,
		ValidUntil:         req.ValidUntil,
		IsActive:           true,
	}
	if err := s.partnerRepo.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	return offer, nil
}

func (s *partnerService) ListOffers(ctx context.Context, partner string) ([]model.PartnerOffer, error) {
	return s.partnerRepo.ListOffersByPartner(ctx, partner)
}

func (s *partnerService) DeleteOffer(ctx context.Context, partner string, id uuid.UUID) error {
	return notFoundAs(s.partnerRepo.DeleteOffer(ctx, partner, id), ErrOfferNotFound)
}

func (s *partnerService) ListActiveOffers(ctx context.Context) ([]model.PartnerOffer, error) {
	return s.partnerRepo.ListAvailableOffers(ctx, s.now())
}

func (s *partnerService) UpsertProfile(ctx context.Context, partner string, req ProfileRequest) (*model.PartnerProfile, error) {
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return nil, invalid("Il nome dell'attività è obbligatorio")
	}
	if err := req.OpeningHours.Validate(); err != nil {
		return nil, invalid("Orari di apertura non validi: " + err.Error())
	}
	profile := &model.PartnerProfile{
		PartnerCode:    partner,
		BusinessName:   name,
		Address:        strings.TrimSpace(req.Address),
		Phone:          strings.TrimSpace(req.Phone),
		OpeningHours:   req.OpeningHours,
		Specialties:    cleanList(req.Specialties),
		Certifications: cleanList(req.Certifications),
	}
	if err := s.partnerRepo.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

func (s *partnerService) GetProfile(ctx context.Context, partner string) (*model.PartnerProfile, error) {
	profile, err := s.partnerRepo.GetProfile(ctx, partner)
	return profile, notFoundAs(err, ErrProfileNotFound)
}

func (s *partnerService) View(ctx context.Context, partner string) (*PartnerView, error) {
	code, err := s.codeRepo.GetByCode(ctx, partner)
	if err != nil {
		return nil, notFoundAs(err, ErrCodeNotFound)
	}
	if code.Role != model.RolePartner || code.IsExcluded || !code.IsActive {
		return nil, ErrCodeNotFound
	}
	view := &PartnerView{Offers: []model.PartnerOffer{}}
	if view.Profile, err = s.partnerRepo.GetProfile(ctx, partner); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	offers, err := s.partnerRepo.ListOffersByPartner(ctx, partner)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range offers {
		if offers[i].AvailableAt(now) {
			view.Offers = append(view.Offers, offers[i])
		}
	}
	if view.Rating, err = s.feedbackRepo.GetRating(ctx, partner); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return view, nil
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) model.StringSlice {
	out := make(model.StringSlice, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var _ PartnerService = (*partnerService)(nil)
