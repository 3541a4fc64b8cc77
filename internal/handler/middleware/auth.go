package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"touristiq/iqhub/internal/model"
	"touristiq/iqhub/internal/service"
	"touristiq/iqhub/pkg/response"
)

const ContextKeySession = "session"

// SessionAuth resolves the session cookie into a *service.Session. The
// Authorization header is ignored.
func SessionAuth(sessions service.SessionService, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			response.Unauthorized(c, "Accesso richiesto")
			c.Abort()
			return
		}

		sess, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrSessionInvalid) {
				logger.Error("resolve session", zap.Error(err))
				response.InternalError(c, "Errore interno del server")
			} else {
				response.Unauthorized(c, "Sessione scaduta, effettua di nuovo l'accesso")
			}
			c.Abort()
			return
		}

		c.Set(ContextKeySession, sess)
		c.Next()
	}
}

// RequireRole is the only authorization gate. Must be used after SessionAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		v, exists := c.Get(ContextKeySession)
		sess, ok := v.(*service.Session)
		if !exists || !ok {
			response.Unauthorized(c, "Accesso richiesto")
			c.Abort()
			return
		}
		if _, permitted := allowed[sess.Role]; !permitted {
			response.Forbidden(c, "Accesso non consentito per questo ruolo")
			c.Abort()
			return
		}
		c.Next()
	}
}
