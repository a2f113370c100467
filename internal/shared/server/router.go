package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"doctranslate-backend/internal/documents"
	"doctranslate-backend/internal/processing"
	"doctranslate-backend/internal/services/health"
	"doctranslate-backend/internal/shared/config"
	"doctranslate-backend/internal/shared/metrics"
	"doctranslate-backend/internal/shared/server/middleware"
	"doctranslate-backend/internal/shared/server/respond"
	"doctranslate-backend/internal/translate"
)

const processGroup = "PROCESS"

// ReadHeaderTimeout bounds how long the API server waits for request headers.
const ReadHeaderTimeout = 10 * time.Second

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	DocumentHandler *documents.Handler
	ProcessHandler  *processing.Handler
	Health          *health.Service
	TranslationLive bool
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil)
	}

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		status := healthSvc.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	api.GET("/config", func(c *gin.Context) {
		respond.OK(c, gin.H{
			"translationApiConfigured":   deps.TranslationLive,
			"summarizationApiConfigured": true,
		})
	})
	api.GET("/languages", func(c *gin.Context) {
		respond.OK(c, gin.H{"languages": languageViews()})
	})

	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.ProcessHandler != nil {
		deps.ProcessHandler.RegisterRoutes(api, middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				processGroup: {Rate: 2, Burst: 10},
			},
			DefaultGroup: processGroup,
			Limiter:      deps.RateLimiter,
		}))
	}

	return r
}

type languageView struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func languageViews() []languageView {
	langs := translate.Languages()
	views := make([]languageView, len(langs))
	for i, l := range langs {
		views[i] = languageView{Code: l.Code, Name: l.Name}
	}
	return views
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
