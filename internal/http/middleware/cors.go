package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cars-api/internal/pagination"
)

// CORS allows read access from allowedOrigins ("*" for any) and exposes the
// pagination headers to browser clients.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", "Content-Type", "Authorization", HeaderRequestID},
		ExposeHeaders: []string{pagination.HeaderTotalCount, pagination.HeaderTotalPages, pagination.HeaderLink, HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	if len(allowedOrigins) == 0 || containsWildcard(allowedOrigins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
