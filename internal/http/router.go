package api

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cars-api/internal/common/config"
	"cars-api/internal/common/logger"
	"cars-api/internal/http/handlers"
	"cars-api/internal/http/middleware"
	"cars-api/internal/repository"
)

// NewRouter mounts the car routes under cfg.Server.BasePath and the
// operational endpoints at the root.
func NewRouter(cfg *config.Config, cars *handlers.CarHandler, pingers map[string]repository.Pinger, log logger.Logger) *gin.Engine {
	trusted, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		log.Warn("ignoring invalid trusted proxies", map[string]interface{}{"error": err.Error()})
		trusted = nil
	}

	r := gin.New()
	r.Use(
		middleware.TrustedForwarding(trusted),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Metrics(),
		gin.Recovery(),
		middleware.CORS(cfg.Server.CORS.AllowedOrigins),
	)

	if err := r.SetTrustedProxies(proxyList(trusted)); err != nil {
		log.Warn("failed to set trusted proxies", map[string]interface{}{"error": err.Error()})
	}

	r.NoRoute(handlers.NoRoute)

	r.GET("/health", handlers.Health)
	r.GET("/ready", handlers.Ready(pingers, log))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(strings.TrimRight(cfg.Server.BasePath, "/"))
	{
		api.GET("/cars", cars.List)
		api.GET("/cars/:id", cars.Get)
		api.GET("/_search/cars", cars.Search)
	}

	return r
}

func proxyList(prefixes []netip.Prefix) []string {
	if len(prefixes) == 0 {
		return nil
	}
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, p.String())
	}
	return out
}
