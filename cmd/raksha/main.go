package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/raksha/internal/api/http"
	"github.com/spec-kit/raksha/internal/api/http/handlers"
	"github.com/spec-kit/raksha/internal/config"
	"github.com/spec-kit/raksha/internal/events"
	"github.com/spec-kit/raksha/internal/location"
	"github.com/spec-kit/raksha/internal/observability"
	"github.com/spec-kit/raksha/internal/persistence"
	"github.com/spec-kit/raksha/internal/platform"
	"github.com/spec-kit/raksha/internal/remote"
	"github.com/spec-kit/raksha/internal/repository"
	"github.com/spec-kit/raksha/internal/service"
	"github.com/spec-kit/raksha/internal/trigger"
	"github.com/spec-kit/raksha/internal/worker"
)

func main() {
	var (
		envFile  string
		logLevel string
		addr     string
	)
	pflag.StringVar(&envFile, "env-file", "", "extra .env file to load")
	pflag.StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
	pflag.StringVar(&addr, "addr", "", "override the control API listen address")
	pflag.Parse()

	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if addr == "" {
		addr = cfg.App.Addr()
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	clk := clock.New()

	store, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	backend := remote.NewClient(remote.Options{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.Timeout(),
		Logger:  logger,
		Metrics: metrics,
	})

	provider := location.NewProvider(location.ProviderDependencies{
		Source:      locationSource(cfg.Location, clk),
		Permissions: platform.AllowAllPermissions{},
		Clock:       clk,
		Logger:      logger,
	})

	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewNotificationService(dispatcher, notificationSink(cfg.Notification, clk, logger), logger).RegisterHandlers()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    repository.NewUserRepository(store),
		SessionRepo: repository.NewSessionRepository(store),
		Remote:      backend,
		Clock:       clk,
		Logger:      logger,
	})
	sosService := service.NewSOSService(ctx, service.SOSDependencies{
		Repo:       repository.NewSOSRepository(store),
		Remote:     backend,
		Location:   provider,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
		Metrics:    metrics,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		Repo:       repository.NewComplaintRepository(store),
		Remote:     backend,
		Location:   provider,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
		Metrics:    metrics,
	})

	if user, ok := authService.RestoreSession(ctx); ok {
		logger.Info("session restored", zap.String("user_id", user.UserID))
	}

	locationWorker := worker.NewLocationWorker(sosService, cfg.SOS.LocationUpdateInterval(), logger)
	locationWorker.Register(dispatcher)
	if err := locationWorker.StartIfActive(); err != nil {
		logger.Error("failed to resume location updates", zap.Error(err))
	}

	emergency := service.NewEmergencyTrigger(authService, sosService, cfg.Remote.Timeout()+5*time.Second, logger)
	detector := trigger.NewDetector(trigger.Config{
		Threshold: cfg.Trigger.Threshold,
		Window:    cfg.Trigger.Window(),
	}, clk, platform.NoopHaptics{}, logger)
	detector.StartListening(func() { go emergency.Fire() })

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, backend),
		Auth:       handlers.NewAuthHandler(authService),
		SOS:        handlers.NewSOSHandler(sosService),
		Complaints: handlers.NewComplaintsHandler(complaintService),
		Device:     handlers.NewDeviceHandler(detector, emergency),
		Sessions:   authService,
		Metrics:    metrics,
	})

	go func() {
		logger.Info("control api listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	detector.StopListening()
	locationWorker.Stop()
	provider.StopTracking()
	_ = app.Shutdown()
}

func locationSource(cfg config.LocationConfig, clk clock.Clock) location.LocationSource {
	if cfg.Source != config.LocationSourceFixed {
		return platform.UnavailableSource{}
	}
	src := &platform.FixedSource{
		Latitude:  cfg.FixedLatitude,
		Longitude: cfg.FixedLongitude,
		Interval:  cfg.Interval(),
		Clock:     clk,
	}
	if cfg.FixedAccuracy > 0 {
		accuracy := cfg.FixedAccuracy
		src.Accuracy = &accuracy
	}
	return src
}

func notificationSink(cfg config.NotificationConfig, clk clock.Clock, logger *zap.Logger) platform.NotificationSink {
	sink := platform.LogNotifier{Logger: logger}
	if cfg.WebhookURL == "" {
		return sink
	}
	return platform.MultiNotifier{sink, platform.NewWebhookNotifier(cfg.WebhookURL, 5*time.Second, clk)}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
