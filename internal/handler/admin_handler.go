package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/response"
)

type AdminHandler struct {
	codes    service.CodeService
	credits  service.CreditService
	feedback service.FeedbackService
	logger   *zap.Logger
}

func NewAdminHandler(codes service.CodeService, credits service.CreditService, feedback service.FeedbackService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{codes: codes, credits: credits, feedback: feedback, logger: logger}
}

type GenerateCodeRequest struct {
	CodeType   string `json:"codeType" binding:"required,oneof=emotional professional"`
	Role       string `json:"role"`
	Location   string `json:"location" binding:"required"`
	AssignedTo string `json:"assignedTo"`
}

// GenerateCode creates an emotional (charged to the admin) or professional code.
func (h *AdminHandler) GenerateCode(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	var req GenerateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Richiesta non valida: indica tipo di codice e località")
		return
	}

	gen, err := h.codes.GenerateByAdmin(c.Request.Context(), sess.IQCode, service.GenerateRequest{
		CodeType:   model.CodeType(req.CodeType),
		Role:       model.Role(req.Role),
		Location:   req.Location,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, generatedBody(gen))
}

func (h *AdminHandler) ListCodes(c *gin.Context) {
	codes, err := h.codes.List(c.Request.Context(), service.CodeListFilter{
		Role:           model.Role(c.Query("role")),
		Status:         model.CodeStatus(c.Query("status")),
		IncludeDeleted: c.Query("includeDeleted") == "true",
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if codes == nil {
		codes = []model.IQCode{}
	}
	response.Success(c, codes)
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AdminHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Stato mancante")
		return
	}
	if err := h.codes.SetStatus(c.Request.Context(), c.Param("code"), model.CodeStatus(req.Status)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *AdminHandler) DeleteCode(c *gin.Context) {
	if err := h.codes.SoftDelete(c.Request.Context(), c.Param("code")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *AdminHandler) RestoreCode(c *gin.Context) {
	if err := h.codes.Restore(c.Request.Context(), c.Param("code")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *AdminHandler) ListTrash(c *gin.Context) {
	codes, err := h.codes.ListTrash(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if codes == nil {
		codes = []model.IQCode{}
	}
	response.Success(c, codes)
}

func (h *AdminHandler) EmptyTrash(c *gin.Context) {
	n, err := h.codes.EmptyTrash(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"success": true, "deleted": n})
}

type AssignPackageRequest struct {
	RecipientCode string `json:"recipientCode" binding:"required"`
	PackageSize   int    `json:"packageSize" binding:"required"`
}

func (h *AdminHandler) AssignPackage(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	var req AssignPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Indica destinatario e dimensione del pacchetto")
		return
	}
	pkg, err := h.credits.AssignPackage(c.Request.Context(), sess.IQCode, req.RecipientCode, req.PackageSize)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, pkg)
}

func (h *AdminHandler) ListPackages(c *gin.Context) {
	pkgs, err := h.credits.ListPackages(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if pkgs == nil {
		pkgs = []model.CreditPackage{}
	}
	response.Success(c, pkgs)
}

func (h *AdminHandler) ListPartnerRatings(c *gin.Context) {
	ratings, err := h.feedback.ListRatings(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if ratings == nil {
		ratings = []model.PartnerRating{}
	}
	response.Success(c, ratings)
}

type ExclusionRequest struct {
	Excluded *bool `json:"excluded" binding:"required"`
}

func (h *AdminHandler) SetPartnerExclusion(c *gin.Context) {
	var req ExclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Indica se il partner è escluso")
		return
	}
	if err := h.codes.SetPartnerExcluded(c.Request.Context(), c.Param("code"), *req.Excluded); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, gin.H{"success": true, "excluded": *req.Excluded})
}

func generatedBody(gen *service.GeneratedCode) gin.H {
	body := gin.H{"code": gen.Code.Code, "iqCode": gen.Code}
	if gen.CreditsRemaining != nil {
		body["creditsRemaining"] = *gen.CreditsRemaining
	}
	return body
}
