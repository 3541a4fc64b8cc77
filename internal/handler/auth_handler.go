package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/config"
	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/response"
)

type AuthHandler struct {
	sessions service.SessionService
	cookie   config.SessionConfig
	logger   *zap.Logger
}

func NewAuthHandler(sessions service.SessionService, cookie config.SessionConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookie: cookie, logger: logger}
}

type LoginRequest struct {
	IQCode string `json:"iqCode" binding:"required"`
}

// Login exchanges an IQCode for a session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Inserisci un codice IQ")
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req.IQCode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.setCookie(c, sess.Token, int(h.cookie.TTL.Seconds()))
	response.Success(c, gin.H{
		"success": true,
		"iqCode":  sess.IQCode,
		"role":    sess.Role,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.CookieName); err == nil && token != "" {
		if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
			writeError(c, h.logger, err)
			return
		}
	}
	h.setCookie(c, "", -1)
	response.Success(c, gin.H{"success": true})
}

// Me returns the identity behind the current session.
func (h *AuthHandler) Me(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	response.Success(c, sess)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, value, maxAge, "/", h.cookie.CookieDomain, h.cookie.CookieSecure, true)
}
