package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"corysite/internal/cache"
	"corysite/internal/config"
	"corysite/internal/db"
	"corysite/internal/email"
	"corysite/internal/handlers"
	"corysite/internal/jobs"
	"corysite/internal/leads"
	"corysite/internal/logger"
	"corysite/internal/markdown"
	"corysite/internal/metrics"
	"corysite/internal/server"
	"corysite/internal/webhook"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	log := logger.NewStructured(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	site, err := config.LoadSiteConfig(cfg.SiteConfigFile)
	if err != nil {
		log.WithError(err).Error("failed to load site config", logger.Fields{"path": cfg.SiteConfigFile})
		os.Exit(1)
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Error("failed to connect to database", nil)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.WithError(err).Error("failed to run migrations", nil)
		os.Exit(1)
	}
	log.Info("migrations completed", nil)

	if cfg.IsDev() {
		if err := database.SeedDevContent(ctx); err != nil {
			log.WithError(err).Warn("failed to seed development content", nil)
		}
	}

	probes := map[string]handlers.Pinger{"database": database}

	// Shared storage for sessions, the limiter and rendered articles.
	var sharedStorage fiber.Storage
	var renderStorage cache.Storage = cache.NewMemoryStorage()
	if cfg.RedisURL != "" {
		redisStorage := cache.NewRedisStorage(cfg.RedisURL)
		defer redisStorage.Close()
		sharedStorage = redisStorage
		renderStorage = redisStorage
		probes["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return redisStorage.Conn().Ping(ctx).Err()
		})
		log.Info("using redis storage", nil)
	}
	if cfg.RenderCacheTTL <= 0 {
		renderStorage = nil
	}

	metrics.Init(database, log)

	// Lead capture pipeline
	hooks := webhook.NewClient(cfg.WebhookTimeout, cfg.IsDev())
	leadService := leads.NewService(leads.NewDBStore(database), log, leads.Options{
		Notifier:   email.NewNotifier(cfg, log),
		Poster:     hooks,
		WebhookURL: cfg.LeadWebhookURL,
		Timeout:    cfg.WebhookTimeout,
	})

	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	if cfg.IsForwardingEnabled() {
		go jobs.NewLeadForwarder(leadService, cfg.ForwardInterval, log).Start(jobCtx)
	}

	renderCache := cache.NewRenderCache(renderStorage, markdown.New(markdown.Options{InlineCode: true}), cfg.RenderCacheTTL, log)

	srv := server.New(cfg, site, log, server.Options{Storage: sharedStorage})
	srv.RegisterRoutes(server.Deps{
		Content: database,
		Leads:   leadService,
		Render:  renderCache,
		Preview: markdown.New(markdown.Options{}),
		Cache:   renderCache,
		Views:   metrics.RecordContentView,
		Chat:    hooks,
		Probes:  probes,
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.WithError(err).Error("server error", nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server", nil)
	stopJobs()
	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Error("server forced to shutdown", nil)
	}
	leadService.Wait()
	metrics.Flush()
	log.Info("server exited", nil)
}
