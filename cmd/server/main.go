package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/yukikurage/crm-api/internal/auth"
	"github.com/yukikurage/crm-api/internal/cache"
	"github.com/yukikurage/crm-api/internal/config"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/handlers"
	"github.com/yukikurage/crm-api/internal/logging"
	"github.com/yukikurage/crm-api/internal/metrics"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/services"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Options{ServiceName: "crm-api"})
		bootLogger.Fatal().Err(err).Msg("config.load_failed")
	}

	logger := logging.New(logging.Options{
		ServiceName: "crm-api",
		Level:       logging.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server.exit")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	gin.SetMode(cfg.App.GinMode)
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Connect(cfg.DB, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, sqlDB.Close())
	}()

	if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		return err
	}

	repos := repository.New(db)

	tokens, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return err
	}

	system := services.NewSystemService(repos, cfg.Seed)
	generated, err := system.Bootstrap(ctx, cfg.Bootstrap)
	if err != nil {
		return err
	}
	if generated != "" {
		logger.Warn().
			Str("username", cfg.Bootstrap.AdminUsername).
			Str("password", generated).
			Msg("bootstrap.admin_created: change this password after first login")
	}

	var redisClient *cache.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, cfg.DB.Name),
	)

	routerCfg := handlers.RouterConfig{
		Logger:         logger,
		SessionStore:   store,
		Resolver:       auth.NewResolver(repos.Users, tokens),
		LoginLimit:     middleware.NewLoginRateLimitPolicy(cfg.RateLimit),
		Metrics:        metrics.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		HealthCheck: func(ctx context.Context) error {
			checks := database.Ping(db)
			if redisClient != nil {
				checks = multierr.Append(checks, redisClient.Ping(ctx))
			}
			return checks
		},
	}
	if redisClient != nil {
		routerCfg.LoginCounter = redisClient
	}

	router := handlers.NewRouter(routerCfg, handlers.Services{
		Auth:      services.NewAuthService(repos, tokens),
		Users:     services.NewUserService(repos),
		Customers: services.NewCustomerService(repos),
		Products:  services.NewProductService(repos),
		Orders:    services.NewOrderService(repos),
		Stats:     services.NewStatsService(repos.Stats),
		System:    system,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server.start")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.App.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}

	if !cfg.Redis.Enabled {
		store := cookie.NewStore([]byte(cfg.Session.Secret))
		store.Options(options)
		return store, nil
	}

	store, err := redisStore.NewStore(
		cfg.Redis.PoolSize,
		"tcp",
		cfg.Redis.Addr,
		cfg.Redis.Password,
		[]byte(cfg.Session.Secret),
	)
	if err != nil {
		return nil, err
	}
	store.Options(options)
	return store, nil
}
