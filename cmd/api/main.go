package main

import (
	"context"
	"log"
	"time"

	"packtrack/internal/core/cache"
	"packtrack/internal/core/config"
	"packtrack/internal/core/httpclient"
	"packtrack/internal/core/logger"
	"packtrack/internal/core/server"
	settingsadapter "packtrack/internal/features/settings/adapters"
	settingsdomain "packtrack/internal/features/settings/domain"
	settingshandler "packtrack/internal/features/settings/handler"
	settingsservice "packtrack/internal/features/settings/service"
	trackingadapter "packtrack/internal/features/tracking/adapters"
	trackinghandler "packtrack/internal/features/tracking/handler"
	"packtrack/internal/features/tracking/ports"
	trackingservice "packtrack/internal/features/tracking/service"
	urladapter "packtrack/internal/features/urls/adapters"
	urlhandler "packtrack/internal/features/urls/handler"
	urlservice "packtrack/internal/features/urls/service"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Initialize Redis Adapter and verify connectivity
	redisAdapter, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to create Redis adapter", zap.Error(err))
	}
	defer redisAdapter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisAdapter.Ping(ctx); err != nil {
		l.Fatal("Redis connection failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	// Initialize Carrier Providers
	client := httpclient.NewClient(time.Duration(cfg.Tracking.HTTPTimeoutSeconds) * time.Second)
	providers := []ports.CarrierProvider{
		trackingadapter.NewPostNLAdapter(cfg.Carriers.PostNLURL, client),
		trackingadapter.NewDHLAdapter(cfg.Carriers.DHLURL, client),
		trackingadapter.NewGLSAdapter(cfg.Carriers.GLSURL, client),
		trackingadapter.NewUPSAdapter(cfg.Carriers.UPSURL, client),
	}

	// Initialize Tracking Service
	resultCache := trackingadapter.NewRedisResultCache(redisAdapter)
	trackingSvc := trackingservice.NewTrackingService(
		providers,
		resultCache,
		time.Duration(cfg.Tracking.HTTPTimeoutSeconds)*time.Second,
		cfg.Tracking.MaxInFlight,
	)

	// Initialize URL Registry & Settings Services
	urlSvc := urlservice.NewURLService(urladapter.NewFileRepository(cfg.Tracking.URLsFile), resultCache)
	settingsSvc := settingsservice.NewSettingsService(
		settingsadapter.NewRedisSettingsRepository(redisAdapter),
		settingsdomain.Settings{
			Language:     "en",
			CacheSeconds: cfg.Tracking.CacheMaxAgeSeconds,
		},
	)

	// Initialize Handlers
	trackingHdl := trackinghandler.NewTrackingHandler(trackingSvc, urlSvc, settingsSvc)
	urlHdl := urlhandler.NewURLHandler(urlSvc)
	settingsHdl := settingshandler.NewSettingsHandler(settingsSvc)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/track", trackingHdl.GetReport)
	srv.App.Get("/urls", urlHdl.List)
	srv.App.Post("/urls", urlHdl.Add)
	srv.App.Delete("/urls", urlHdl.Remove)
	srv.App.Get("/settings", settingsHdl.Get)
	srv.App.Put("/settings", settingsHdl.Update)
	srv.App.Delete("/settings", settingsHdl.Reset)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
