package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/response"
)

// RecoveryHandler exposes the Custode del Codice.
type RecoveryHandler struct {
	recovery service.RecoveryService
	logger   *zap.Logger
}

func NewRecoveryHandler(recovery service.RecoveryService, logger *zap.Logger) *RecoveryHandler {
	return &RecoveryHandler{recovery: recovery, logger: logger}
}

type CustodeRequest struct {
	SecretWord string `json:"secretWord" binding:"required"`
	BirthDate  string `json:"birthDate" binding:"required"`
}

func (h *RecoveryHandler) Activate(c *gin.Context) {
	h.store(c, h.recovery.Activate)
}

func (h *RecoveryHandler) Update(c *gin.Context) {
	h.store(c, h.recovery.Update)
}

func (h *RecoveryHandler) store(c *gin.Context, op func(ctx context.Context, iqCode, secretWord, birthDate string) error) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	var req CustodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Parola segreta e data di nascita sono obbligatorie")
		return
	}
	if err := op(c.Request.Context(), sess.IQCode, req.SecretWord, req.BirthDate); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *RecoveryHandler) Recover(c *gin.Context) {
	var req CustodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Parola segreta e data di nascita sono obbligatorie")
		return
	}
	code, err := h.recovery.Recover(c.Request.Context(), req.SecretWord, req.BirthDate)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"iqCode": code})
}

func (h *RecoveryHandler) Status(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	activated, err := h.recovery.Status(c.Request.Context(), sess.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"activated": activated})
}
