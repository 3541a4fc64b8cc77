package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/response"
)

type PartnerHandler struct {
	otc      service.OTCService
	partners service.PartnerService
	feedback service.FeedbackService
	logger   *zap.Logger
}

func NewPartnerHandler(otc service.OTCService, partners service.PartnerService, feedback service.FeedbackService, logger *zap.Logger) *PartnerHandler {
	return &PartnerHandler{otc: otc, partners: partners, feedback: feedback, logger: logger}
}

type ValidateCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateOneTimeCode is read-only: it never marks the code used.
func (h *PartnerHandler) ValidateOneTimeCode(c *gin.Context) {
	var req ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Codice monouso mancante")
		return
	}
	v, err := h.otc.Validate(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, v)
}

type ApplyDiscountRequest struct {
	Code               string          `json:"code" binding:"required"`
	OriginalAmount     decimal.Decimal `json:"originalAmount"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	OfferDescription   string          `json:"offerDescription"`
}

func (h *PartnerHandler) ApplyDiscount(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Richiesta non valida: codice, importo e percentuale sono obbligatori")
		return
	}
	res, err := h.otc.Redeem(c.Request.Context(), sess.IQCode, service.RedeemRequest{
		Code:               req.Code,
		OriginalAmount:     req.OriginalAmount,
		DiscountPercentage: req.DiscountPercentage,
		OfferDescription:   req.OfferDescription,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{
		"success":          true,
		"originalAmount":   money(res.OriginalAmount),
		"discountAmount":   money(res.AppliedDiscount),
		"finalAmount":      money(res.FinalAmount),
		"newTotalUsed":     money(res.NewTotalUsed),
		"remainingPlafond": money(res.RemainingPlafond),
		"clamped":          res.Clamped,
	})
}

func (h *PartnerHandler) Redemptions(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	codes, err := h.otc.ListRedemptions(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, toOneTimeCodeResponses(codes, true))
}

func (h *PartnerHandler) Rating(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	rating, err := h.feedback.Rating(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, rating)
}

type CreateOfferRequest struct {
	Title              string     `json:"title" binding:"required"`
	Description        string     `json:"description"`
	DiscountPercentage int        `json:"discountPercentage" binding:"required"`
	ValidUntil         *time.Time `json:"validUntil"`
}

func (h *PartnerHandler) CreateOffer(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Titolo e percentuale di sconto sono obbligatori")
		return
	}
	offer, err := h.partners.CreateOffer(c.Request.Context(), sess.IQCode, service.OfferRequest{
		Title:              req.Title,
		Description:        req.Description,
		DiscountPercentage: req.DiscountPercentage,
		ValidUntil:         req.ValidUntil,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, offer)
}

func (h *PartnerHandler) ListOffers(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	offers, err := h.partners.ListOffers(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if offers == nil {
		offers = []model.PartnerOffer{}
	}
	response.Success(c, offers)
}

func (h *PartnerHandler) DeleteOffer(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identificativo offerta non valido")
		return
	}
	if err := h.partners.DeleteOffer(c.Request.Context(), sess.IQCode, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

type ProfileRequest struct {
	BusinessName   string             `json:"businessName" binding:"required"`
	Address        string             `json:"address"`
	Phone          string             `json:"phone"`
	OpeningHours   model.OpeningHours `json:"openingHours"`
	Specialties    []string           `json:"specialties"`
	Certifications []string           `json:"certifications"`
}

func (h *PartnerHandler) UpsertProfile(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Il nome dell'attività è obbligatorio")
		return
	}
	profile, err := h.partners.UpsertProfile(c.Request.Context(), sess.IQCode, service.ProfileRequest{
		BusinessName:   req.BusinessName,
		Address:        req.Address,
		Phone:          req.Phone,
		OpeningHours:   req.OpeningHours,
		Specialties:    req.Specialties,
		Certifications: req.Certifications,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, profile)
}

func (h *PartnerHandler) GetProfile(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	profile, err := h.partners.GetProfile(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, profile)
}
