package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/config"
	"github.com/Emmakaranja1/Finance-Tracker/internal/transport/http/handlers"
	"github.com/Emmakaranja1/Finance-Tracker/internal/transport/http/middleware"
	"github.com/Emmakaranja1/Finance-Tracker/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	PasswordReset *usecase.PasswordResetService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config         *config.AppConfig
	Logger         *zap.Logger
	RateLimiter    *middleware.RateLimiter
	Services       ServiceSet
	Database       DatabaseChecker
	Cache          CacheChecker
	HTTPMetrics    *middleware.HTTPMetrics
	MetricsHandler http.Handler
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config == nil {
		deps.Config = &config.AppConfig{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	serviceName := deps.Config.App.Name
	if serviceName == "" {
		serviceName = "finance-tracker"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.HTTPMetrics.Handler())
	r.Use(middleware.CORS(deps.Config.HTTP.CORSAllowedOrigins))

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metricsHandler))

	authGroup := r.Group("/api/auth")

	if deps.Services.Registration != nil {
		handlers.NewRegistrationHandler(deps.Services.Registration, deps.Logger).RegisterRoutes(authGroup)
	}
	if deps.Services.Auth != nil {
		handlers.NewAuthHandler(deps.Services.Auth, deps.Logger).RegisterRoutes(authGroup, buildLoginMiddlewares(deps)...)
	}
	if deps.Services.PasswordReset != nil {
		handlers.NewPasswordHandler(deps.Services.PasswordReset, deps.Logger).RegisterRoutes(authGroup, buildOTPMiddlewares(deps)...)
	}

	return r
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.LoginWindow
	if window <= 0 {
		window = 5 * time.Minute
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:       "auth_login_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	})}
}

// buildOTPMiddlewares limits the reset endpoints per client IP and per submitted email.
// All three endpoints share the same buckets.
func buildOTPMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil {
		return nil
	}

	limit := deps.Config.RateLimit.OTPMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.OTPWindow
	if window <= 0 {
		window = 5 * time.Minute
	}
	message := fmt.Sprintf("Too many password reset requests, please try again after %d minutes.", int(window.Round(time.Minute).Minutes()))

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(
		middleware.RateLimitRule{
			Name:       "otp_ip",
			Limit:      limit,
			Window:     window,
			Identifier: middleware.ClientIPIdentifier(),
			Message:    message,
		},
		middleware.RateLimitRule{
			Name:       "otp_email",
			Limit:      limit,
			Window:     window,
			Identifier: middleware.JSONFieldIdentifier("email"),
			Message:    message,
		},
	)}
}
