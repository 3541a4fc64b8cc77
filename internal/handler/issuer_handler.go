package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/response"
)

// IssuerHandler serves structures and partners, who hand out tourist codes.
type IssuerHandler struct {
	codes   service.CodeService
	credits service.CreditService
	logger  *zap.Logger
}

func NewIssuerHandler(codes service.CodeService, credits service.CreditService, logger *zap.Logger) *IssuerHandler {
	return &IssuerHandler{codes: codes, credits: credits, logger: logger}
}

type TouristCodeRequest struct {
	Location   string `json:"location" binding:"required"`
	AssignedTo string `json:"assignedTo"`
}

func (h *IssuerHandler) GenerateTouristCode(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	var req TouristCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Indica la località del turista")
		return
	}
	gen, err := h.codes.GenerateTouristCode(c.Request.Context(), sess.IQCode, req.Location, req.AssignedTo)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, generatedBody(gen))
}

func (h *IssuerHandler) GenerateTemporaryCode(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	gen, err := h.codes.GenerateTemporaryCode(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, generatedBody(gen))
}

func (h *IssuerHandler) Credits(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	summary, err := h.credits.Credits(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, summary)
}
