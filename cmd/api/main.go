package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/pixelpalette/backend/internal/accounts"
	"github.com/pixelpalette/backend/internal/ads"
	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/auth"
	"github.com/pixelpalette/backend/internal/config"
	"github.com/pixelpalette/backend/internal/database"
	"github.com/pixelpalette/backend/internal/entitlement"
	"github.com/pixelpalette/backend/internal/events"
	"github.com/pixelpalette/backend/internal/generation"
	"github.com/pixelpalette/backend/internal/ledger"
	mw "github.com/pixelpalette/backend/internal/middleware"
	iredis "github.com/pixelpalette/backend/internal/redis"
	"github.com/pixelpalette/backend/internal/server"
	"github.com/pixelpalette/backend/internal/session"
	"github.com/pixelpalette/backend/internal/speech"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := database.RunMigrations(cfg.DB.DSN(), path); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS
	eventsClient, err := events.NewClient(ctx, cfg.NATS)
	if err != nil {
		slog.Error("connecting to nats", "error", err)
		os.Exit(1)
	}
	defer eventsClient.Close()
	publisher := events.NewPublisher(eventsClient.JetStream())
	consumerMgr := events.NewConsumerManager(eventsClient.JetStream())

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)

	// Accounts and ledger
	ledgerRepo := ledger.NewRepository(pool)
	accountsRepo := accounts.NewRepository(pool)
	accountsSvc := accounts.NewService(accountsRepo, ledgerRepo, publisher)
	accountsHandler := accounts.NewHandler(accountsSvc, publisher)
	authHandler := auth.NewHandler(authSvc, accountsSvc, publisher, cfg.Credits)

	// Entitlement gate
	entitlementRepo := entitlement.NewRepository(pool, ledgerRepo)
	entitlementSvc, err := entitlement.NewService(entitlementRepo, cfg.Credits)
	if err != nil {
		slog.Error("creating entitlement service", "error", err)
		os.Exit(1)
	}
	entitlementHandler := entitlement.NewHandler(ledgerRepo)

	// Ads
	adProvider, err := ads.NewProvider(cfg.Ads)
	if err != nil {
		slog.Error("creating ads provider", "error", err)
		os.Exit(1)
	}
	adsSvc := ads.NewService(adProvider, entitlementSvc, publisher)
	adsHandler := ads.NewHandler(adsSvc)

	// Generation
	generationClient := generation.NewClient(cfg.Generation)
	generationSvc := generation.NewService(generationClient, accountsSvc,
		generation.NewFreeUseStore(redisClient), cfg.Credits, cfg.Ads)
	generationHandler := generation.NewHandler(generationSvc)

	// Speech
	speechHandler := speech.NewHandler(speech.NewService(speech.NewSimulatedEngine()))

	// Session manager consumes auth state and credit events in the
	// background and serves the credits status from its mirror.
	sessionMgr := session.NewManager(accountsSvc, entitlementSvc, consumerMgr)
	sessionHandler := session.NewHandler(sessionMgr, cfg.Credits)
	go func() {
		if err := sessionMgr.Start(ctx); err != nil {
			slog.Error("session manager stopped", "error", err)
		}
	}()

	// Rate limit auth endpoints: 10 requests per minute per IP.
	authLimiter := mw.NewRateLimiter(redisClient, "auth", 10, 60)

	router := api.NewRouter(pool, eventsClient, api.RouterConfig{
		CORSAllowedOrigins: corsOrigins(),
		AuthRateLimiter:    authLimiter.Middleware,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		Me:             accountsHandler.Me,
		UpdateUsername: accountsHandler.UpdateUsername,
		DeleteAccount:  accountsHandler.Delete,

		CreditsStatus:  sessionHandler.CreditsStatus,
		CreditsHistory: entitlementHandler.History,
		WatchAd:        adsHandler.Watch,

		Generate: generationHandler.Generate,

		SpeechVoices:     speechHandler.Voices,
		SpeechSynthesize: speechHandler.Synthesize,

		AuthMiddleware:         auth.Middleware(authSvc),
		OptionalAuthMiddleware: auth.OptionalMiddleware(authSvc),
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func corsOrigins() []string {
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		return strings.Split(v, ",")
	}
	return []string{"*"}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
