package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grupoquokka/diagnostico/internal/cache"
	"github.com/grupoquokka/diagnostico/internal/database"
	apperrors "github.com/grupoquokka/diagnostico/internal/errors"
	"github.com/grupoquokka/diagnostico/internal/monitoring"
	"github.com/grupoquokka/diagnostico/internal/quiz"
	"github.com/grupoquokka/diagnostico/internal/ratelimit"
	"github.com/grupoquokka/diagnostico/internal/relay"
	"github.com/grupoquokka/diagnostico/internal/resilience"
)

func main() {
	cfg := loadConfig()

	appLogger := monitoring.NewLogger(monitoring.ParseLevel(cfg.LogLevel))
	slog.SetDefault(appLogger.Logger)
	gin.SetMode(cfg.GinMode)

	if err := run(cfg, appLogger); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg Config, appLogger *monitoring.Logger) error {
	catalog := quiz.DefaultCatalog()
	if cfg.DiagnosticsFile != "" {
		loaded, err := quiz.LoadFile(cfg.DiagnosticsFile, catalog)
		if err != nil {
			return apperrors.NewConfigurationError("invalid DIAGNOSTICS_FILE", err)
		}
		catalog = loaded
		slog.Info("Diagnostics catalog loaded", "file", cfg.DiagnosticsFile, "count", len(catalog.List()))
	}

	var mailer relay.Mailer
	var mailClient *resilience.Client
	if cfg.Relay.APIKey != "" {
		if err := cfg.Relay.Validate(); err != nil {
			return apperrors.NewConfigurationError("invalid email configuration", err)
		}
		mailClient = resilience.NewClient(resilience.DefaultClientConfig(), resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
		}))
		mailer = relay.NewResendMailer(cfg.Relay.APIKey, cfg.ResendBaseURL, mailClient)
	} else {
		slog.Warn("RESEND_API_KEY not set, emails will only be logged")
		mailer = relay.LogMailer{Logger: appLogger.Logger}
	}

	health := map[string]func() interface{}{}
	if mailClient != nil {
		health["email_client"] = func() interface{} { return mailClient.GetStats() }
	}

	var leads *database.LeadService
	var recorder relay.Recorder
	if cfg.DataDir != "" {
		db, err := database.NewDB(filepath.Clean(cfg.DataDir))
		if err != nil {
			return apperrors.NewConfigurationError("failed to open lead ledger", err)
		}
		defer db.Close()
		leads = database.NewLeadService(database.NewRepository(db))
		recorder = leads
		health["ledger"] = func() interface{} { return db.GetPoolStats() }
	} else {
		slog.Info("DATA_DIR not set, lead ledger disabled")
	}

	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		slog.Warn("Continuing with in-memory rate limiting", "error", err)
	}
	defer redisClient.Close()

	limiter := ratelimit.NewLimiter(redisClient, ratelimit.Config{PerMinute: cfg.RateLimitPerMin})
	defer limiter.Stop()
	health["rate_limit"] = func() interface{} { return limiter.GetStats() }
	health["redis"] = redisHealth(redisClient)

	scores := cache.NewCache(10*time.Minute, 1000)
	defer scores.Stop()
	health["score_cache"] = func() interface{} { return scores.Stats() }

	metrics := monitoring.NewMetrics()
	r, err := setupRouter(deps{
		catalog: catalog,
		relay:   relay.NewService(cfg.Relay, mailer, recorder),
		leads:   leads,
		limiter: limiter,
		scores:  scores,
		metrics: metrics,
		logger:  appLogger,
		origins: cfg.AllowedOrigins,
		hsts:    cfg.EnableHSTS,
		health:  health,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.SystemLogger("startup", "listening on :"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if mailClient != nil {
		_ = mailClient.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	slog.Info("Server exited")
	return nil
}

// redisHealth pings Redis each time /health/details is served.
func redisHealth(client *ratelimit.RedisClient) func() interface{} {
	return func() interface{} {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Health(ctx)
	}
}
