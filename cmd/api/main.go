package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"iris-api/config"
	"iris-api/middleware"
	"iris-api/monitor"
	"iris-api/mq"
	"iris-api/pubsub"
	"iris-api/repository"
	"iris-api/routes"
	"iris-api/scheduler"
	"iris-api/services"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, closeLogs := config.InitLogging(cfg)
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	probes := map[string]monitor.Probe{}

	// Storage
	var store repository.Store
	if cfg.DBDriver == "memory" {
		mem := repository.NewMemoryStore()
		if err := repository.SeedDefaults(ctx, mem); err != nil {
			logger.Fatal("seed memory store", zap.Error(err))
		}
		store = mem
		logger.Warn("running on the in-memory store, data is lost on restart")
	} else {
		db, err := config.InitDB(cfg, logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("database handle", zap.Error(err))
		}
		defer sqlDB.Close()
		probes["database"] = func(ctx context.Context) error { return sqlDB.PingContext(ctx) }
		store = repository.NewGormStore(db)
	}

	// Push channel
	var hub pubsub.Hub = pubsub.NewLocalBroadcaster()
	if cfg.RedisAddr != "" {
		client, err := config.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-process broadcaster", zap.Error(err))
		} else {
			defer client.Close()
			hub = pubsub.NewRedisBroadcaster(client, logger.Named("pubsub"))
			probes["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}

	// Domain events
	opts := services.Options{Logger: logger}
	if cfg.AMQPURL != "" {
		publisher, err := mq.NewPublisher(cfg.AMQPURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, domain events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			opts.Events = publisher
			probes["rabbitmq"] = func(context.Context) error {
				if !publisher.IsConnected() {
					return errors.New("connection closed")
				}
				return nil
			}
		}
	}

	// Notification fan-out
	pool, err := ants.NewPool(cfg.DispatchWorkers, ants.WithNonblocking(true))
	if err != nil {
		logger.Fatal("worker pool", zap.Error(err))
	}
	defer pool.Release()

	deps := services.NotificationDeps{Push: hub, Runner: pool, LinkBase: cfg.FrontendURL}
	if cfg.NotificationMailSend {
		mailer := config.NewMailer(cfg.SMTP)
		if mailer.Configured() {
			deps.Mailer = mailer
		} else {
			logger.Warn("NOTIFICATION_MAIL is set but SMTP is not configured")
		}
	}
	registry := services.NewRegistry(store, deps, opts)

	// Lifecycle scheduler
	sched, err := scheduler.NewManager(registry.Challenges, cfg.SchedulerInterval, logger.Named("scheduler"))
	if err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}
	if err := sched.RegisterJobs(); err != nil {
		logger.Fatal("scheduler jobs", zap.Error(err))
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Warn("scheduler shutdown", zap.Error(err))
		}
	}()

	tokens, err := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Fatal("auth", zap.Error(err))
	}

	// Set Gin mode
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = config.LogWriter
	gin.DefaultErrorWriter = config.LogWriter

	router := gin.New()
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	monitor.RegisterRoutes(router, monitor.Options{
		LogFile:  cfg.LogFile,
		LogToken: cfg.LogToken,
		Probes:   probes,
	})
	routes.SetupRoutes(router, routes.Deps{
		Services: registry,
		Tokens:   tokens,
		Users:    store,
		Hub:      hub,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
			zap.String("db_driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", zap.Error(err))
	}
}
