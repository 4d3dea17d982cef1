// Command server wires the dependency graph and runs the custodia HTTP API.
// Business logic lives in the internal service packages; main only assembles
// them according to the configuration.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"custodia/internal/access"
	accesshandler "custodia/internal/access/handler"
	"custodia/internal/audit"
	"custodia/internal/auth"
	authhandler "custodia/internal/auth/handler"
	"custodia/internal/catalog"
	"custodia/internal/directory"
	"custodia/internal/execbridge"
	"custodia/internal/files"
	jwttoken "custodia/internal/jwt_token"
	"custodia/internal/ledger"
	"custodia/internal/platform/config"
	"custodia/internal/platform/database"
	"custodia/internal/platform/httpserver"
	"custodia/internal/platform/logger"
	platformmetrics "custodia/internal/platform/metrics"
	"custodia/internal/platform/redis"
	"custodia/internal/ratelimit"
	"custodia/internal/reporting"
	reportinghandler "custodia/internal/reporting/handler"
	httptransport "custodia/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. An empty DSN keeps everything in process memory, which is how
	// the demo environment runs.
	var (
		accessStore    access.Store
		directoryStore directory.Store
		catalogStore   catalog.Store
		health         []func() error
	)
	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, database.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		accessStore = access.NewPostgresStore(db)
		directoryStore = directory.NewPostgresStore(db)
		catalogStore = catalog.NewPostgresStore(db)
		health = append(health, func() error { return db.PingContext(context.Background()) })
		log.Info("storage ready", "backend", "postgres")
	} else {
		accessStore = access.NewInMemoryStore()
		directoryStore = directory.NewInMemoryStore()
		catalogStore = catalog.NewInMemoryStore()
		log.Info("storage ready", "backend", "memory")
	}

	if os.Getenv("CUSTODIA_DEMO_SEED") == "true" {
		if err := seedDemoData(ctx, directoryStore, catalogStore, cfg.Files.Root, log); err != nil {
			return err
		}
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		health = append(health, func() error { return redisClient.Health(context.Background()) })
	}

	// Audit pipeline: publishers write into a buffered channel, a worker
	// drains it into the configured sink so slow sinks never block requests.
	var terminalSink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		terminalSink = kafkaSink
		log.Info("audit sink ready", "backend", "kafka", "topic", cfg.Kafka.AuditTopic)
	} else {
		terminalSink = audit.NewInMemoryStore(1024)
		log.Info("audit sink ready", "backend", "memory")
	}
	channelSink := audit.NewChannelSink(0)
	worker := audit.NewWorker(terminalSink, channelSink.Inbox())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err.Error())
		}
	}()
	auditPublisher := audit.NewPublisher(channelSink, log)

	// Ledger tools run as external subprocesses.
	runner := execbridge.NewLocal()
	ledgerMetrics := ledger.NewMetrics()
	syncer := ledger.NewSyncClient(runner, ledger.Tool{
		Bin:     cfg.Ledger.SyncBin,
		Script:  cfg.Ledger.SyncScript,
		Workdir: cfg.Ledger.Workdir,
		Timeout: cfg.Ledger.Timeout,
	}, log, ledgerMetrics)
	lister := ledger.NewListClient(runner, ledger.Tool{
		Bin:     cfg.Ledger.ListBin,
		Script:  cfg.Ledger.ListScript,
		Workdir: cfg.Ledger.Workdir,
		Timeout: cfg.Ledger.Timeout,
	}, log, ledgerMetrics)

	accessService := access.NewService(
		accessStore,
		directoryStore,
		catalogStore,
		syncer,
		lister,
		files.NewDiskLoader(cfg.Files.Root),
		auditPublisher,
		log,
		access.NewMetrics(),
	)

	reportingService := reporting.NewService(accessStore, log)

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	authService := auth.NewService(directoryStore, jwtService, cfg.JWT.TokenTTL, log)

	var limiterStore ratelimit.Store
	if redisClient != nil {
		limiterStore = ratelimit.NewRedisStore(redisClient.Client)
	} else {
		limiterStore = ratelimit.NewInMemoryStore()
	}
	limiter := ratelimit.NewMiddleware(limiterStore,
		ratelimit.Limit{Requests: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window},
		log,
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		TokenValidator: jwtService,
		AuthHandler:    authhandler.New(authService, log),
		AccessHandler:  accesshandler.New(accessService, log),
		ReportHandler:  reportinghandler.New(reportingService, log),
		RateLimit:      limiter,
		HTTPMetrics:    platformmetrics.New(),
		Health:         health,
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting custodia", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-workerDone
	return nil
}
