package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/config"
	"touristiq/iqhub/internal/handler/middleware"
	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/ratelimit"
	"touristiq/iqhub/internal/service"
)

// Handlers groups everything SetupRouter mounts.
type Handlers struct {
	Auth     *AuthHandler
	Admin    *AdminHandler
	Issuer   *IssuerHandler
	Tourist  *TouristHandler
	Partner  *PartnerHandler
	Recovery *RecoveryHandler
}

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	sessions service.SessionService,
	limiter ratelimit.Limiter,
	h Handlers,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	throttle := middleware.RateLimit(limiter, logger)
	authenticated := middleware.SessionAuth(sessions, cfg.Session.CookieName, logger)
	holders := middleware.RequireRole(model.RoleTourist, model.RoleStructure, model.RolePartner)

	api := r.Group("/api")

	// Public routes
	api.POST("/auth/login", throttle, h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout)
	api.POST("/recover-iqcode", throttle, h.Recovery.Recover)

	// Any authenticated code
	api.GET("/auth/me", authenticated, h.Auth.Me)

	// Custode del Codice
	custode := api.Group("", authenticated, holders)
	{
		custode.POST("/activate-custode", h.Recovery.Activate)
		custode.POST("/update-custode", h.Recovery.Update)
		custode.GET("/custode-status", h.Recovery.Status)
	}

	tourist := api.Group("/tourist", authenticated, middleware.RequireRole(model.RoleTourist))
	{
		tourist.POST("/generate-one-time-code", h.Tourist.GenerateOneTimeCode)
		tourist.GET("/one-time-codes", h.Tourist.ListOneTimeCodes)
		tourist.GET("/plafond", h.Tourist.Plafond)
		tourist.GET("/offers", h.Tourist.ListOffers)
		tourist.GET("/partners/:code", h.Tourist.PartnerDetail)
	}
	api.POST("/feedback", authenticated, middleware.RequireRole(model.RoleTourist), h.Tourist.Feedback)

	partner := api.Group("/partner", authenticated, middleware.RequireRole(model.RolePartner))
	{
		partner.POST("/validate-one-time-code", throttle, h.Partner.ValidateOneTimeCode)
		partner.POST("/apply-discount", h.Partner.ApplyDiscount)
		partner.GET("/redemptions", h.Partner.Redemptions)
		partner.GET("/rating", h.Partner.Rating)
		partner.POST("/offers", h.Partner.CreateOffer)
		partner.GET("/offers", h.Partner.ListOffers)
		partner.DELETE("/offers/:id", h.Partner.DeleteOffer)
		partner.PUT("/profile", h.Partner.UpsertProfile)
		partner.GET("/profile", h.Partner.GetProfile)
		mountIssuer(partner, h.Issuer)
	}

	structure := api.Group("/structure", authenticated, middleware.RequireRole(model.RoleStructure))
	mountIssuer(structure, h.Issuer)

	admin := api.Group("/admin", authenticated, middleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/iqcodes", h.Admin.GenerateCode)
		admin.GET("/iqcodes", h.Admin.ListCodes)
		admin.PATCH("/iqcodes/:code/status", h.Admin.SetStatus)
		admin.DELETE("/iqcodes/:code", h.Admin.DeleteCode)
		admin.POST("/iqcodes/:code/restore", h.Admin.RestoreCode)
		admin.GET("/trash", h.Admin.ListTrash)
		admin.DELETE("/trash", h.Admin.EmptyTrash)
		admin.POST("/credit-packages", h.Admin.AssignPackage)
		admin.GET("/credit-packages", h.Admin.ListPackages)
		admin.GET("/partners/ratings", h.Admin.ListPartnerRatings)
		admin.POST("/partners/:code/exclusion", h.Admin.SetPartnerExclusion)
	}

	return r
}

func mountIssuer(g *gin.RouterGroup, h *IssuerHandler) {
	g.POST("/generate-tourist-code", h.GenerateTouristCode)
	g.POST("/generate-temporary-code", h.GenerateTemporaryCode)
	g.GET("/credits", h.Credits)
}
