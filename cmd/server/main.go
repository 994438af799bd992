package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	leasingapp "github.com/estate/backend/internal/application/leasing"
	listingapp "github.com/estate/backend/internal/application/listing"
	notificationapp "github.com/estate/backend/internal/application/notification"
	verificationapp "github.com/estate/backend/internal/application/verification"
	"github.com/estate/backend/internal/domain/notification"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/cache"
	"github.com/estate/backend/internal/infrastructure/channels"
	"github.com/estate/backend/internal/infrastructure/config"
	"github.com/estate/backend/internal/infrastructure/event"
	"github.com/estate/backend/internal/infrastructure/logger"
	"github.com/estate/backend/internal/infrastructure/persistence"
	"github.com/estate/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting estate backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)
	periodRepo := persistence.NewGormRentPaymentPeriodRepository(db.DB)
	taskRepo := persistence.NewGormVerificationTaskRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Transaction scopes for multi-aggregate transitions
	leasingTxScope := persistence.NewGormLeasingTransactionScope(db.DB)
	verificationTxScope := persistence.NewGormVerificationTransactionScope(db.DB)

	// Property read cache (redis with in-memory fallback)
	propertyCache := cache.NewPropertyCache(cfg.Cache, cfg.Redis, log)

	// Channel adapters for notification delivery
	adapters := buildChannelAdapters(cfg, log)

	// Initialize application services
	propertyService := listingapp.NewPropertyService(propertyRepo, log)
	propertyService.SetCache(propertyCache)

	leaseService := leasingapp.NewLeaseService(leaseRepo, propertyRepo, leasingTxScope, log)
	leaseService.SetPropertyCache(propertyCache)
	verificationService := verificationapp.NewVerificationService(taskRepo, verificationTxScope, log)
	verificationService.SetPropertyCache(propertyCache)

	dispatchService := notificationapp.NewDispatchService(notificationRepo, adapters, notificationapp.DispatchOptions{
		MaxAttempts: cfg.Notification.MaxAttempts,
		BackoffBase: cfg.Notification.BackoffBase,
		Channels:    parseChannels(cfg.Notification.Channels, log),
	}, log)

	sweepService := leasingapp.NewSweepService(leasingTxScope, leaseRepo, periodRepo, leasingapp.SweepServiceOptions{
		BatchSize:            cfg.Sweep.BatchSize,
		ExpiryReminderWindow: cfg.Sweep.ExpiryReminderWindow,
	}, log)
	sweepService.SetNotifier(dispatchService)
	sweepService.SetPropertyCache(propertyCache)

	// Initialize event bus and handlers
	eventBus := event.NewBus(log)

	// Handlers create side effects (tasks, schedules, notifications), so a
	// redelivered event must not run them twice
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Property listed -> open a verification task
	propertyCreatedHandler := verificationapp.NewPropertyCreatedHandler(taskRepo, log)

	// Lease activated -> materialize the rent schedule
	scheduleHandler := leasingapp.NewScheduleHandler(leaseRepo, log)

	// Lease lifecycle transitions -> notify tenant and owner
	leaseNotificationHandler := notificationapp.NewLeaseNotificationHandler(dispatchService, log)

	// Verification completed -> notify the property owner
	taskCompletedHandler := notificationapp.NewTaskCompletedNotificationHandler(dispatchService, propertyRepo, log)

	wrappedHandlers := event.WrapHandlersWithIdempotency(
		[]shared.EventHandler{
			propertyCreatedHandler,
			scheduleHandler,
			leaseNotificationHandler,
			taskCompletedHandler,
		},
		idempotencyStore, log,
		event.WithIdempotencyMetrics(event.GlobalIdempotencyMetrics),
	)
	for _, h := range wrappedHandlers {
		eventBus.Subscribe(h)
	}

	log.Info("Event handlers registered",
		zap.Strings("property_created_events", propertyCreatedHandler.EventTypes()),
		zap.Strings("schedule_events", scheduleHandler.EventTypes()),
		zap.Strings("lease_notification_events", leaseNotificationHandler.EventTypes()),
		zap.Strings("task_completed_events", taskCompletedHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	propertyService.SetEventPublisher(eventBus)
	leaseService.SetEventPublisher(eventBus)
	verificationService.SetEventPublisher(eventBus)
	dispatchService.SetEventPublisher(eventBus)
	sweepService.SetEventPublisher(eventBus)

	// Initialize sweep scheduler (if enabled)
	if cfg.Sweep.Enabled {
		sweepExecutor := scheduler.NewSweepExecutor(sweepService, dispatchService, cfg.Sweep.BatchSize, log)
		sweepScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:           cfg.Sweep.Enabled,
			MaxConcurrentJobs: cfg.Sweep.Workers,
			JobTimeout:        cfg.Sweep.JobTimeout,
			RetryAttempts:     scheduler.DefaultSchedulerConfig().RetryAttempts,
			RetryDelay:        scheduler.DefaultSchedulerConfig().RetryDelay,
		}, sweepExecutor, log)
		if err := sweepScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep scheduler", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sweepScheduler.Stop(ctx); err != nil {
				log.Error("Error stopping sweep scheduler", zap.Error(err))
			}
		}()

		sweepTrigger := scheduler.NewSweepTrigger(scheduler.SweepTriggerConfig{
			Interval:   cfg.Sweep.Interval,
			RunOnStart: true,
		}, sweepScheduler, log)
		if err := sweepTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep trigger", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sweepTrigger.Stop(ctx); err != nil {
				log.Error("Error stopping sweep trigger", zap.Error(err))
			}
		}()

		log.Info("Sweep scheduler started",
			zap.Duration("interval", cfg.Sweep.Interval),
			zap.Int("workers", cfg.Sweep.Workers),
			zap.Int("batch_size", cfg.Sweep.BatchSize),
		)
	}

	log.Info("Estate backend started")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")
}

// buildChannelAdapters wires the in-app channel plus every gateway channel
// the configuration enables. A missing gateway URL downgrades to in-app only.
func buildChannelAdapters(cfg *config.Config, log *zap.Logger) []notification.ChannelAdapter {
	adapters := []notification.ChannelAdapter{channels.NewInAppAdapter(log)}

	if cfg.Notification.GatewayBaseURL == "" {
		log.Warn("No delivery gateway configured, only in-app notifications will be sent")
		return adapters
	}

	gatewayCfg := channels.GatewayConfig{
		BaseURL:        cfg.Notification.GatewayBaseURL,
		APIKey:         cfg.Notification.GatewayAPIKey,
		TimeoutSeconds: cfg.Notification.GatewayTimeoutSeconds,
	}

	email, err := channels.NewEmailAdapter(gatewayCfg)
	if err != nil {
		log.Warn("Email channel disabled", zap.Error(err))
	} else {
		adapters = append(adapters, email)
	}

	sms, err := channels.NewSMSAdapter(gatewayCfg)
	if err != nil {
		log.Warn("SMS channel disabled", zap.Error(err))
	} else {
		adapters = append(adapters, sms)
	}

	messenger, err := channels.NewMessengerAdapter(gatewayCfg)
	if err != nil {
		log.Warn("Messenger channel disabled", zap.Error(err))
	} else {
		adapters = append(adapters, messenger)
	}

	return adapters
}

// parseChannels maps the configured channel names to domain channels,
// dropping anything unknown
func parseChannels(names []string, log *zap.Logger) []notification.Channel {
	channelList := make([]notification.Channel, 0, len(names))
	for _, name := range names {
		ch := notification.Channel(name)
		if !ch.IsValid() {
			log.Warn("Ignoring unknown notification channel", zap.String("channel", name))
			continue
		}
		channelList = append(channelList, ch)
	}
	return channelList
}
