package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cars-api/internal/common/logger"
	"cars-api/internal/repository"
)

const readinessTimeout = 3 * time.Second

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready pings every backing store; any failure turns the response into a 503.
func Ready(pingers map[string]repository.Pinger, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(pingers))
		for name, p := range pingers {
			if err := p.Ping(ctx); err != nil {
				log.WithError(err).Warn("readiness check failed", map[string]interface{}{"store": name})
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		c.JSON(status, gin.H{
			"status": state,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
