// main wires configuration, stores, services and the HTTP router, then runs
// the server and the audit relay until a shutdown signal arrives. Business
// logic lives in the internal service packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"olhopix/internal/auth/jwttoken"
	authservice "olhopix/internal/auth/service"
	"olhopix/internal/auth/store/lockout"
	"olhopix/internal/auth/store/user"
	"olhopix/internal/platform/config"
	"olhopix/internal/platform/httpserver"
	"olhopix/internal/platform/logger"
	"olhopix/internal/platform/metrics"
	platformredis "olhopix/internal/platform/redis"
	reportmetrics "olhopix/internal/report/metrics"
	reportservice "olhopix/internal/report/service"
	reportstore "olhopix/internal/report/store"
	httptransport "olhopix/internal/transport/http"
	"olhopix/pkg/platform/audit"
	auditmemory "olhopix/pkg/platform/audit/store/memory"
	auditpostgres "olhopix/pkg/platform/audit/store/postgres"
	"olhopix/pkg/platform/audit/publisher"
	"olhopix/pkg/platform/audit/relay"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres is optional: without DATABASE_URL everything runs on the
	// in-memory stores, which is enough for local development.
	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		log.Info("connected to postgres")
	}

	var (
		userStore   authservice.UserStore
		reportStore reportservice.Store
		auditStore  audit.Store
	)
	if db != nil {
		userStore = user.NewPostgres(db)
		reportStore = reportstore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
	} else {
		userStore = user.New()
		reportStore = reportstore.New()
		auditStore = auditmemory.NewInMemoryStore()
	}

	var lockoutStore authservice.LockoutStore = lockout.New()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		lockoutStore = lockout.NewRedis(redisClient)
		log.Info("connected to redis, lockout counters are shared")
	}

	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	serviceMetrics := metrics.New()
	reportMetrics := reportmetrics.New()

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, "olhopix", "olhopix")

	authSvc, err := authservice.New(userStore, jwtService,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditPublisher),
		authservice.WithMetrics(serviceMetrics),
		authservice.WithLockout(lockoutStore, cfg.Lockout),
		authservice.WithTokenTTL(cfg.Server.TokenTTL),
	)
	if err != nil {
		return err
	}

	reportSvc, err := reportservice.New(reportStore,
		reportservice.WithLogger(log),
		reportservice.WithAuditPublisher(auditPublisher),
		reportservice.WithMetrics(reportMetrics),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(authSvc, log),
		Reports:   httptransport.NewReportHandler(reportSvc, log, cfg.Server.MaxAttachmentBytes),
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Logger:    log,
		Metrics:   serviceMetrics,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting olhopix", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// The audit relay needs both the outbox table and Kafka brokers.
	if db != nil && len(cfg.Kafka.Brokers) > 0 {
		auditRelay, err := relay.New(db, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			return err
		}
		defer auditRelay.Close()

		g.Go(func() error {
			log.Info("starting audit relay", "topic", cfg.Kafka.AuditTopic)
			if err := auditRelay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
