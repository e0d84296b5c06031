package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hirevision-backend/internal/services/health"
	"hirevision-backend/internal/shared/config"
	"hirevision-backend/internal/shared/metrics"
	"hirevision-backend/internal/shared/server/middleware"
	"hirevision-backend/internal/shared/server/respond"
	"hirevision-backend/internal/shared/telemetry"
)

// RouteRegistrar attaches a domain's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps are the collaborators NewRouter wires together.
type RouterDeps struct {
	Config   config.Config
	Log      telemetry.Logger
	Health   *health.Service
	Handlers []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	log := telemetry.OrDefault(deps.Log)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Recovery(log),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.Health))

	scoped := api.Group("")
	scoped.Use(
		middleware.Identity(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Quota:   middleware.Quota{Rate: deps.Config.SubmitRatePerMinute / 60, Burst: deps.Config.SubmitBurst},
			Methods: []string{http.MethodPost},
		}),
	)
	registerMeRoutes(scoped)
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(scoped)
		}
	}

	return r
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		st := svc.Status(c.Request.Context())
		if !st.OK {
			respond.JSON(c, http.StatusServiceUnavailable, st)
			return
		}
		respond.OK(c, st)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
