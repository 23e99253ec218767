package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mhregistry/internal/platform/config"
	"mhregistry/internal/platform/httpserver"
	"mhregistry/internal/platform/logger"
	"mhregistry/internal/platform/metrics"
	"mhregistry/internal/platform/queue"
	platformredis "mhregistry/internal/platform/redis"
	"mhregistry/internal/registry/cache"
	"mhregistry/internal/registry/handler"
	"mhregistry/internal/registry/payment"
	"mhregistry/internal/registry/service"
	"mhregistry/internal/registry/store"
	"mhregistry/internal/token"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal packages.
func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	registryStore, cleanup, err := buildStore(cfg.Database, log)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		opts = append(opts, service.WithDocumentIDCache(cache.NewDocIDCache(redisClient)))
	}

	publisher, err := queue.NewKafka(cfg.Kafka, log)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
		opts = append(opts, service.WithPublisher(publisher, service.Topics{
			Report: cfg.Kafka.ReportTopic,
			Record: cfg.Kafka.RecordTopic,
		}))
	}

	if cfg.Payment.BaseURL != "" {
		payments := payment.NewHTTPClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, payment.WithLogger(log))
		opts = append(opts, service.WithPayments(payments))
	} else {
		log.Warn("payment service not configured, filings will not be charged")
	}

	registry, err := service.New(registryStore, opts...)
	if err != nil {
		return err
	}

	tokens := token.NewService(cfg.Auth.SigningKey, "mhregistry", "mhregistry")
	registryHandler := handler.New(registry, log, m, tokens)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	registryHandler.Register(router)

	srv := httpserver.New(cfg.Server, router)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting mhregistry", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// buildStore selects PostgreSQL when a DSN is configured and the in-memory
// store otherwise.
func buildStore(cfg config.DatabaseConfig, log *slog.Logger) (store.Store, func(), error) {
	if cfg.DSN == "" {
		log.Warn("no database configured, using in-memory store")
		return store.NewMemory(), func() {}, nil
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnLifetime)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store.NewPostgres(db), func() { _ = db.Close() }, nil
}
