package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	identityhandler "bitid/internal/identity/handler"
	"bitid/internal/identity/profileindex"
	identityservice "bitid/internal/identity/service"
	"bitid/internal/identity/store"
	"bitid/internal/issuer"
	issuerhandler "bitid/internal/issuer/handler"
	"bitid/internal/jwttoken"
	"bitid/internal/platform/config"
	"bitid/internal/platform/httpserver"
	"bitid/internal/platform/logger"
	"bitid/internal/platform/metrics"
	"bitid/internal/platform/middleware"
	platformredis "bitid/internal/platform/redis"
	"bitid/internal/verifier"
	verifierhandler "bitid/internal/verifier/handler"
	"bitid/internal/wallet"
	wallethandler "bitid/internal/wallet/handler"
	auditkafka "bitid/pkg/platform/audit/kafka"
	"bitid/pkg/platform/audit/publisher"
	auditmemory "bitid/pkg/platform/audit/store/memory"
)

// main wires the dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence medium for the identity directory.
	var identityStore store.Store
	switch cfg.Storage {
	case config.StoragePostgres:
		pg, err := store.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		identityStore = pg
	case config.StorageFile:
		identityStore = store.NewFileStore(cfg.DataDir)
	default:
		log.Error("unknown storage mode", "mode", string(cfg.Storage))
		os.Exit(1)
	}

	// Optional Redis-backed public profile index.
	rdb, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	var profiles *profileindex.Index
	if rdb != nil {
		defer rdb.Close()
		profiles = profileindex.New(rdb.Client)
	}

	// Audit trail: always recorded in memory, mirrored to Kafka when
	// brokers are configured.
	auditOpts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(256),
	}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := auditkafka.NewSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, publisher.WithSink(sink))
	}
	auditor := publisher.NewPublisher(auditmemory.NewInMemoryStore(), auditOpts...)
	defer auditor.Close()

	m := metrics.New()

	identity, err := identityservice.New(ctx, identityStore,
		identityservice.WithProfileIndex(profiles),
		identityservice.WithMetrics(m),
		identityservice.WithAuditPublisher(auditor),
		identityservice.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to load identity directory", "error", err)
		os.Exit(1)
	}
	if err := profiles.Rebuild(ctx, identity.Snapshot(ctx)); err != nil {
		log.Warn("profile index rebuild incomplete", "error", err)
	}

	connector, err := wallet.FromConfig(cfg)
	if err != nil {
		log.Error("failed to build wallet connector", "error", err)
		os.Exit(1)
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "bitid")

	issuing := issuer.New(identity, issuer.WithLogger(log))
	verifying := verifier.New(identity,
		verifier.WithProfileIndex(profiles),
		verifier.WithMetrics(m),
		verifier.WithAuditPublisher(auditor),
		verifier.WithLogger(log),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Latency(m))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)

	identityhandler.New(identity, tokens, tokens, log).Register(router)
	issuerhandler.New(issuing, tokens, log).Register(router)
	verifierhandler.New(verifying, log).Register(router)
	wallethandler.New(connector, log,
		wallethandler.WithMetrics(m),
		wallethandler.WithAuditPublisher(auditor),
	).Register(router)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			if err := rdb.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting bitid server",
			"addr", cfg.Addr,
			"storage", string(cfg.Storage),
			"wallet", string(cfg.Wallet),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
