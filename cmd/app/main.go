package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noobLue/fullstack5pw/internal/app"
	"github.com/noobLue/fullstack5pw/internal/infra/handler"
	"github.com/noobLue/fullstack5pw/internal/platform/config"
	"github.com/noobLue/fullstack5pw/internal/platform/logger"
	"github.com/noobLue/fullstack5pw/internal/platform/metrics"
	"github.com/noobLue/fullstack5pw/internal/platform/server"
	"github.com/noobLue/fullstack5pw/internal/platform/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sentryEnabled, err := telemetry.InitSentry(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	if sentryEnabled {
		defer telemetry.Flush(2 * time.Second)
		defer telemetry.Recover()
	}

	log := logger.New(logger.Config{
		Level:   logger.Level(cfg.App.LogLevel),
		Format:  logger.Format(cfg.App.LogFormat),
		Service: "bloglist-api",
	})
	if sentryEnabled {
		log = logger.WrapWithSentry(log)
	}
	logger.SetDefault(log)

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	var httpMetrics *metrics.HTTPMetrics
	var domainMetrics app.Metrics
	if cfg.App.EnableMetrics {
		httpMetrics = metrics.NewHTTPMetrics()
		domainMetrics = httpMetrics
	}

	services, err := app.NewServices(stores, cfg, domainMetrics, log)
	if err != nil {
		return err
	}

	router := handler.NewRouter(buildRouterConfig(cfg, stores, services, httpMetrics, log))

	srv := server.New(server.Config{
		Address:      cfg.Server.Address(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, router, log)

	log.Info("bloglist api starting",
		"address", srv.Address(),
		"storage", cfg.App.Storage,
		"session_store", cfg.App.SessionStore,
		"list_cache", stores.ListCache != nil,
		"testing_api", cfg.App.EnableTestingAPI,
	)
	return srv.Run(ctx)
}

func buildRouterConfig(cfg *config.Config, stores *app.Stores, services *app.Services, httpMetrics *metrics.HTTPMetrics, log *slog.Logger) handler.RouterConfig {
	middlewares := []func(http.Handler) http.Handler{
		server.Recoverer(log),
		server.RequestLogger(log),
		server.SecurityHeaders(),
		server.CORS(cfg.App.CORSAllowedOrigins),
	}

	var prometheusHandler http.Handler
	if httpMetrics != nil {
		middlewares = append(middlewares, httpMetrics.Middleware)
		prometheusHandler = httpMetrics.Handler()
	}

	var loginLimit func(http.Handler) http.Handler
	if cfg.App.LoginRateLimitEnabled && stores.Cache != nil {
		loginLimit = server.RateLimit(server.RateLimitConfig{
			Counter: stores.Cache,
			Limit:   cfg.App.LoginRateLimitMaxRequests,
			Window:  cfg.App.LoginRateLimitWindow,
			Logger:  log,
			Prefix:  app.LoginRateLimitPrefix,
		})
	}

	var testingHandler *handler.TestingHandler
	if cfg.App.EnableTestingAPI {
		if cfg.App.AdminToken == "" {
			log.Warn("testing API enabled without an admin token")
		}
		testingHandler = handler.NewTestingHandler(services.Admin, server.AdminTokenAuth(cfg.App.AdminToken, log), log)
	}

	checks := []handler.NamedChecker{}
	if stores.DB != nil {
		checks = append(checks, handler.NamedChecker{Name: "database", Checker: stores.DB})
	}
	if stores.Cache != nil {
		checks = append(checks, handler.NamedChecker{Name: "redis", Checker: stores.Cache})
	}

	return handler.RouterConfig{
		UserHandler: handler.NewUserHandler(services.Accounts, log),
		SessionHandler: handler.NewSessionHandler(services.Accounts, handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		}, loginLimit, log),
		BlogHandler:       handler.NewBlogHandler(services.Blogs, services.Ranking, log),
		TestingHandler:    testingHandler,
		HealthHandler:     handler.NewHealthHandler(checks...),
		Callers:           services.Accounts,
		SessionCookieName: cfg.Session.CookieName,
		APIBasePath:       cfg.App.APIBasePath,
		Middlewares:       middlewares,
		PrometheusHandler: prometheusHandler,
	}
}
