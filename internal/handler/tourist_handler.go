package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/response"
)

type TouristHandler struct {
	otc      service.OTCService
	feedback service.FeedbackService
	partners service.PartnerService
	logger   *zap.Logger
}

func NewTouristHandler(otc service.OTCService, feedback service.FeedbackService, partners service.PartnerService, logger *zap.Logger) *TouristHandler {
	return &TouristHandler{otc: otc, feedback: feedback, partners: partners, logger: logger}
}

// GenerateOneTimeCode spends one available use and returns a fresh TIQ-OTC code.
func (h *TouristHandler) GenerateOneTimeCode(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	issued, err := h.otc.Issue(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, issued)
}

func (h *TouristHandler) ListOneTimeCodes(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	codes, err := h.otc.ListForTourist(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, toOneTimeCodeResponses(codes, false))
}

func (h *TouristHandler) Plafond(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	summary, err := h.otc.Summary(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{
		"availableUses":     summary.AvailableUses,
		"totalDiscountUsed": money(summary.TotalDiscountUsed),
		"remainingPlafond":  money(summary.RemainingPlafond),
		"plafondLimit":      money(service.PlafondLimit),
	})
}

type FeedbackRequest struct {
	PartnerCode string `json:"partnerCode" binding:"required"`
	Feedback    string `json:"feedback" binding:"required"`
	OTCCode     string `json:"otcCode"`
}

func (h *TouristHandler) Feedback(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Indica partner e valutazione")
		return
	}
	_, err := h.feedback.Record(c.Request.Context(), sess.IQCode, service.FeedbackRequest{
		PartnerCode: req.PartnerCode,
		OTCCode:     req.OTCCode,
		Rating:      model.FeedbackRating(req.Feedback),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *TouristHandler) ListOffers(c *gin.Context) {
	offers, err := h.partners.ListActiveOffers(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if offers == nil {
		offers = []model.PartnerOffer{}
	}
	response.Success(c, offers)
}

func (h *TouristHandler) PartnerDetail(c *gin.Context) {
	view, err := h.partners.View(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, view)
}
