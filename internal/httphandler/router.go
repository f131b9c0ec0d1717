package httphandler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/roomieradar/roomieradar/internal/middleware"
	"github.com/roomieradar/roomieradar/internal/monitoring"
)

// RouterConfig collects what the router needs besides the handler.
type RouterConfig struct {
	ServiceName   string
	ClientURL     string
	Authenticator middleware.Authenticator
	RateLimiter   *middleware.RateLimiter
	Health        *monitoring.HealthChecker
	HTTPMetrics   *monitoring.HTTPMetrics
	Logging       *middleware.LoggingConfig
}

// NewRouter wires middleware and every route onto a new engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.GinMiddleware())
	}
	r.Use(
		middleware.LoggingMiddleware(cfg.Logging),
		middleware.CORS(cfg.ClientURL),
		middleware.ErrorHandler(),
	)

	if cfg.Health != nil {
		r.GET("/health", cfg.Health.HealthHandler())
		r.GET("/health/live", cfg.Health.LivenessHandler())
	}

	authed := []gin.HandlerFunc{middleware.RequireAuth(cfg.Authenticator)}
	if cfg.RateLimiter != nil {
		authed = append(authed, cfg.RateLimiter.Middleware())
	}

	account := r.Group("/auth")
	if cfg.RateLimiter != nil {
		account.Use(cfg.RateLimiter.Middleware())
	}
	account.POST("/signup", h.Signup)
	account.POST("/login", h.Login)
	account.POST("/logout", middleware.RequireAuth(cfg.Authenticator), h.Logout)

	api := r.Group("/api", authed...)
	{
		profile := api.Group("/profile")
		profile.GET("/me", h.GetMyProfile)
		profile.POST("/update", h.UpdateProfile)
		profile.GET("/preferences", h.GetPreferences)
		profile.POST("/preferences", h.SavePreferences)
		profile.GET("/matches", h.GetMatches)

		api.POST("/swipes", h.Swipe)
		api.GET("/swipes/matches", h.MutualMatches)

		api.GET("/chat/:otherId", h.ChatHistory)
	}

	r.GET("/ws/chat", QueryToken(), middleware.RequireAuth(cfg.Authenticator), h.ChatSocket)

	return r
}
