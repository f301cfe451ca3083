package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/config"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/database"
	kafkainfra "github.com/Emmakaranja1/Finance-Tracker/internal/infra/kafka"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/mail"
	redisinfra "github.com/Emmakaranja1/Finance-Tracker/internal/infra/redis"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/security"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/telemetry"
	postgresrepo "github.com/Emmakaranja1/Finance-Tracker/internal/repository/postgres"
	redisrepo "github.com/Emmakaranja1/Finance-Tracker/internal/repository/redis"
	"github.com/Emmakaranja1/Finance-Tracker/internal/transport/http/middleware"
	"github.com/Emmakaranja1/Finance-Tracker/internal/transport/http/routes"
	"github.com/Emmakaranja1/Finance-Tracker/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (_ *Application, err error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	if cfg.Telemetry.TracingEnabled {
		a.tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	a.pool, err = database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if cfg.Postgres.AutoMigrate {
		if err = database.Migrate(ctx, a.pool, log); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	a.redis, err = redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		// Validate only lets this through in development.
		secret = uuid.NewString() + uuid.NewString()
		log.Warn("jwt.secret not set, using an ephemeral development secret")
	}
	tokens, err := security.NewSessionTokenManager(secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	if err != nil {
		return nil, fmt.Errorf("init session tokens: %w", err)
	}

	var (
		events port.EventPublisher
		sender mail.MessageSender
	)
	if len(cfg.Kafka.Brokers) > 0 {
		a.producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			return nil, fmt.Errorf("init kafka producer: %w", err)
		}
		events = kafkainfra.NewEventPublisher(a.producer, cfg.App, log)
		sender = a.producer
		log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		events = kafkainfra.NewStubPublisher(log)
	}

	notifier, err := mail.NewNotifier(cfg, sender, log)
	if err != nil {
		return nil, fmt.Errorf("init notifier: %w", err)
	}

	repos := postgresrepo.NewRepositories(a.pool)
	policy := security.DefaultPasswordPolicy(cfg.Password.MinLength, cfg.Password.MinStrengthScore)
	authMetrics := telemetry.NewAuthMetrics(prometheus.DefaultRegisterer)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Namespace: "finance"})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	window := max(cfg.RateLimit.OTPWindow, cfg.RateLimit.LoginWindow)
	if window <= 0 {
		window = 5 * time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(a.redis.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.KeyPrefix,
		TTL:       window * 2,
	})

	services := routes.ServiceSet{
		Auth: usecase.NewAuthService(repos.Users, hasher, tokens, log).
			WithMetrics(authMetrics),
		Registration: usecase.NewRegistrationService(repos.Users, repos.Onboarding, repos.Tx, hasher, policy, events, log).
			WithMetrics(authMetrics),
		PasswordReset: usecase.NewPasswordResetService(cfg, repos.Users, repos.PasswordResets, repos.Tx, hasher, policy, notifier, events, log).
			WithMetrics(authMetrics),
	}

	a.engine = routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: middleware.NewRateLimiter(rateLimitStore, log),
		Services:    services,
		Database:    a.pool,
		Cache:       a.redis,
		HTTPMetrics: httpMetrics,
	})

	return a, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer a.release()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.HTTP.ReadTimeout,
		WriteTimeout:      a.cfg.HTTP.WriteTimeout,
		IdleTimeout:       a.cfg.HTTP.IdleTimeout,
	}

	a.logger.Info("starting finance tracker API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		timeout := a.cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// release closes every opened dependency in reverse order of construction.
func (a *Application) release() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown tracer", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
