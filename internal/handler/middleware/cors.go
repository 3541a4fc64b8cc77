package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"touristiq/iqhub/internal/config"
)

// CORS allows the configured web origins. Credentials must stay enabled for
// the session cookie to travel on cross-origin requests.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		ExposeHeaders:    []string{"Retry-After"},
		MaxAge:           cfg.MaxAge,
	}
	if len(cc.AllowOrigins) == 0 {
		cc.AllowOrigins = []string{"http://localhost:5173"}
	}
	if len(cc.AllowMethods) == 0 {
		cc.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cc.AllowHeaders) == 0 {
		cc.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	}
	return cors.New(cc)
}
