// Command server runs the identity accounting core: the XP vault, DNA
// aggregator, streak oracle, and sovereign gateway behind one HTTP surface.
// main wires dependencies and owns the process lifecycle; business rules
// live in the internal services.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"helix/internal/audit"
	auditmem "helix/internal/audit/store/memory"
	auditpg "helix/internal/audit/store/postgres"
	"helix/internal/clock"
	"helix/internal/coordinator"
	"helix/internal/dna"
	dnacache "helix/internal/dna/cache"
	dnamem "helix/internal/dna/store/memory"
	dnapg "helix/internal/dna/store/postgres"
	"helix/internal/gateway"
	"helix/internal/platform/config"
	"helix/internal/platform/httpserver"
	"helix/internal/platform/logger"
	"helix/internal/platform/metrics"
	"helix/internal/platform/postgres"
	"helix/internal/platform/redis"
	"helix/internal/player"
	playermem "helix/internal/player/store/memory"
	playerpg "helix/internal/player/store/postgres"
	"helix/internal/signals"
	"helix/internal/streak"
	httptransport "helix/internal/transport/http"
	"helix/internal/vault"
	vaultmem "helix/internal/vault/store/memory"
	vaultpg "helix/internal/vault/store/postgres"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New(slog.LevelInfo).Error("invalid configuration", "error", err)
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk, err := clock.New(cfg.Timezone)
	if err != nil {
		log.Error("invalid reference timezone", "tz", cfg.Timezone, "error", err)
		return err
	}
	m := metrics.New()

	// Storage. Postgres when configured, in-memory otherwise.
	var (
		players    player.Store
		vaultStore vault.Store
		dnaStore   dna.SourceStore
		auditStore audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			return err
		}
		players = playerpg.New(db)
		vaultStore = vaultpg.New(db)
		dnaStore = dnapg.New(db)
		auditStore = auditpg.New(db)
		log.Info("storage ready", "backend", "postgres")
	} else {
		mem := playermem.New()
		players = mem
		vaultStore = vaultmem.New(mem)
		dnaStore = dnamem.New()
		auditStore = auditmem.New()
		log.Warn("storage ready", "backend", "memory")
	}

	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Outbound signal bus. Kafka when brokers are configured.
	var publisher signals.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = signals.NewKafka(ctx, cfg.KafkaBrokers,
			signals.WithLogger(log),
			signals.WithMetrics(m),
		)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			return err
		}
	} else {
		publisher = signals.NewMemory()
		log.Warn("signal bus running in-process; configure HELIX_KAFKA_BROKERS for delivery")
	}
	defer publisher.Close()

	xpVault, err := vault.New(vaultStore, players, clk,
		vault.WithLogger(log),
		vault.WithMetrics(m),
		vault.WithAlertNotifier(signals.NewAlertBridge(publisher, log)),
	)
	if err != nil {
		return err
	}
	oracle, err := streak.New(players, clk,
		streak.WithLogger(log),
		streak.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	dnaOpts := []dna.Option{dna.WithLogger(log), dna.WithMetrics(m)}
	if redisClient != nil {
		dnaOpts = append(dnaOpts, dna.WithCache(dnacache.NewRedis(redisClient)))
	}
	aggregator, err := dna.New(dnaStore, players, clk, dnaOpts...)
	if err != nil {
		return err
	}

	coord, err := coordinator.New(xpVault, oracle, aggregator, publisher,
		coordinator.WithLogger(log),
		coordinator.WithMetrics(m),
		coordinator.WithSyncSLA(cfg.SyncSLA),
	)
	if err != nil {
		return err
	}

	registry, err := gateway.LoadRegistry(cfg.SiloRegistryPath)
	if err != nil {
		log.Error("silo registry rejected", "path", cfg.SiloRegistryPath, "error", err)
		return err
	}

	// The handshake log is buffered so authorization never waits on storage.
	auditBuffer := audit.NewBuffer(auditStore, 1024)
	auditWorker := audit.NewWorker(auditStore, auditBuffer.Inbox())

	gw, err := gateway.New(registry, coord, audit.NewPublisher(auditBuffer), clk,
		gateway.WithLogger(log),
		gateway.WithMetrics(m),
		gateway.WithLockout(gateway.NewLockout(gateway.LockoutPolicy{
			Threshold: cfg.LockoutThreshold,
			Window:    cfg.LockoutWindow,
			Duration:  cfg.LockoutDuration,
		})),
	)
	if err != nil {
		return err
	}

	pool := coordinator.NewPool(cfg.Workers, log)

	handler := httptransport.NewHandler(coord, pool, xpVault, oracle, aggregator, gw,
		httptransport.WithLogger(log),
		httptransport.WithMetricsGatherer(prometheus.DefaultGatherer),
	)
	router := chi.NewRouter()
	handler.Register(router)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pool.Run(gctx)
	})
	g.Go(func() error {
		if err := auditWorker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("identity core listening", "addr", cfg.Addr, "tz", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		return err
	}
	log.Info("shutdown complete")
	return nil
}
