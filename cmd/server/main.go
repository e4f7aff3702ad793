// Package main runs the unified launchpad service:
// - HTTP API (launch, tokens, staking, admin, stats, WS event stream)
// - cron-driven automation cycles (fee claim + fan-out)
// - cron-driven graduation sweeps
// - Prometheus metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solana-launchpad/internal/api"
	"solana-launchpad/internal/automation"
	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/graduation"
	"solana-launchpad/internal/observability"
	"solana-launchpad/internal/provider"
	"solana-launchpad/internal/provider/stub"
	"solana-launchpad/internal/staking"
	"solana-launchpad/internal/stats"
	"solana-launchpad/internal/storage"
	chstore "solana-launchpad/internal/storage/clickhouse"
	"solana-launchpad/internal/storage/memory"
	"solana-launchpad/internal/storage/migrations"
	pgstore "solana-launchpad/internal/storage/postgres"
	"solana-launchpad/internal/stream"
)

// allStores holds all storage implementations.
type allStores struct {
	tokens     storage.TokenStore
	taxConfigs storage.TaxConfigStore
	stakers    storage.StakerStore
	jobs       storage.JobStore
	trades     storage.TradeEventStore
}

func main() {
	// Load .env if present; system env vars win.
	_ = godotenv.Load()

	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "API HTTP address")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ":9090"), "Prometheus metrics HTTP address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", envOr("USE_MEMORY", "") != "", "Use in-memory storage instead of PostgreSQL/ClickHouse")
	providerURL := flag.String("provider-url", os.Getenv("PROVIDER_URL"), "Launch provider base URL (stub provider when empty)")
	solUSD := flag.Float64("sol-usd", envFloatOr("SOL_USD_RATE", 150), "SOL/USD rate for market-cap checks")
	automationSpec := flag.String("automation-cron", envOr("AUTOMATION_CRON", "@every 6h"), "Cron spec for the automation cycle")
	graduationSpec := flag.String("graduation-cron", envOr("GRADUATION_CRON", "@every 5m"), "Cron spec for the graduation sweep")
	workerCount := flag.Int("worker-count", automation.DefaultWorkerCount, "Automation worker pool size")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level (trace..panic)")
	flag.Parse()

	setupLogging(*logLevel)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		log.Fatal().Msg("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		log.Fatal().Err(err).Msg("create stores")
	}
	defer cleanup()

	var launchProvider provider.LaunchProvider
	if *providerURL != "" {
		launchProvider = provider.NewHTTPClient(*providerURL)
	} else {
		log.Warn().Msg("no --provider-url given, using the stub launch provider")
		launchProvider = stub.New()
	}

	hub := stream.NewHub()
	defer hub.Close()

	scheduler, err := automation.New(automation.Options{
		TokenStore:     stores.tokens,
		TaxConfigStore: stores.taxConfigs,
		JobStore:       stores.jobs,
		Provider:       launchProvider,
		Events:         hub,
		WorkerCount:    *workerCount,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create scheduler")
	}
	defer scheduler.Close()

	rate := graduation.FixedRate(*solUSD)
	monitor := graduation.New(graduation.Options{
		TokenStore: stores.tokens,
		Provider:   launchProvider,
		Rate:       rate,
	})

	aggregator := stats.New(stats.Options{
		TokenStore:      stores.tokens,
		StakerStore:     stores.stakers,
		JobStore:        stores.jobs,
		TradeEventStore: stores.trades,
	})

	server := api.NewServer(api.Options{
		TokenStore:      stores.tokens,
		TaxConfigStore:  stores.taxConfigs,
		StakerStore:     stores.stakers,
		JobStore:        stores.jobs,
		TradeEventStore: stores.trades,
		Provider:        launchProvider,
		Scheduler:       scheduler,
		Monitor:         monitor,
		Aggregator:      aggregator,
		Hub:             hub,
		Rate:            rate,
		Staking:         staking.DefaultConfig(),
	})

	schedules, err := startSchedules(ctx, scheduler, monitor, hub, *automationSpec, *graduationSpec)
	if err != nil {
		log.Fatal().Err(err).Msg("start schedules")
	}
	defer func() { <-schedules.Stop().Done() }()

	apiServer := &http.Server{Addr: *httpAddr, Handler: server.Handler()}
	metricsServer := &http.Server{Addr: *metricsAddr, Handler: metricsMux()}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", *httpAddr).Msg("api server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		log.Info().Str("addr", *metricsAddr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api server shutdown")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server shutdown")
	}
	log.Info().Msg("shutdown complete")
}

// startSchedules registers the automation and graduation cron entries.
func startSchedules(ctx context.Context, scheduler *automation.Scheduler, monitor *graduation.Monitor, hub *stream.Hub, automationSpec, graduationSpec string) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(automationSpec, func() {
		start := time.Now()
		result, err := scheduler.RunCycle(ctx, domain.TriggerScheduled)
		if err != nil {
			log.Error().Err(err).Msg("automation cycle failed")
			return
		}
		observability.RecordCycle("automation", time.Since(start).Seconds())
		log.Info().
			Int("enqueued", result.Enqueued).
			Int("executed", result.Executed).
			Int("failed", result.Failed).
			Int("skipped", result.Skipped).
			Msg("scheduled automation cycle finished")
	}); err != nil {
		return nil, fmt.Errorf("automation cron spec %q: %w", automationSpec, err)
	}

	if _, err := c.AddFunc(graduationSpec, func() {
		start := time.Now()
		result, err := monitor.RunCycle(ctx)
		if err != nil {
			log.Error().Err(err).Msg("graduation cycle failed")
			return
		}
		observability.RecordCycle("graduation", time.Since(start).Seconds())
		for _, tokenID := range result.Graduated {
			observability.RecordTokenGraduated()
			hub.Publish(stream.EventTokenGraduated, map[string]string{"tokenId": tokenID})
		}
		log.Info().
			Int("checked", result.Checked).
			Int("graduated", len(result.Graduated)).
			Msg("scheduled graduation cycle finished")
	}); err != nil {
		return nil, fmt.Errorf("graduation cron spec %q: %w", graduationSpec, err)
	}

	c.Start()
	return c, nil
}

// createStores creates all required stores, running migrations first.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			tokens:     memory.NewTokenStore(),
			taxConfigs: memory.NewTaxConfigStore(),
			stakers:    memory.NewStakerStore(),
			jobs:       memory.NewJobStore(),
			trades:     memory.NewTradeEventStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		tokens:     pgstore.NewTokenStore(pool),
		taxConfigs: pgstore.NewTaxConfigStore(pool),
		stakers:    pgstore.NewStakerStore(pool),
		jobs:       pgstore.NewJobStore(pool),
		trades:     chstore.NewTradeEventStore(chConn),
	}
	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// metricsMux serves /metrics and a liveness probe.
func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return parsed
}
