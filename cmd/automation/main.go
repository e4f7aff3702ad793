// Package main runs one full automation cycle (fee claim + fan-out)
// followed by a graduation sweep, then exits. Intended for cron/ops use
// against the same database as the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solana-launchpad/internal/automation"
	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/graduation"
	"solana-launchpad/internal/provider"
	"solana-launchpad/internal/storage/migrations"
	pgstore "solana-launchpad/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	providerURL := flag.String("provider-url", os.Getenv("PROVIDER_URL"), "Launch provider base URL")
	solUSD := flag.Float64("sol-usd", envFloatOr("SOL_USD_RATE", 150), "SOL/USD rate for market-cap checks")
	skipGraduations := flag.Bool("skip-graduations", false, "Run only the automation cycle")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall run timeout")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if *postgresDSN == "" || *providerURL == "" {
		log.Fatal().Msg("--postgres-dsn and --provider-url are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("postgres migrations")
	}

	// ClickHouse is optional here; the cycle itself only touches
	// Postgres, but running the migrations keeps a fresh deployment's
	// analytics schema in step with the server's.
	if *clickhouseDSN != "" {
		chConn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("clickhouse migrations")
		}
		chConn.Close()
	}

	tokens := pgstore.NewTokenStore(pool)
	launchProvider := provider.NewHTTPClient(*providerURL)

	scheduler, err := automation.New(automation.Options{
		TokenStore:     tokens,
		TaxConfigStore: pgstore.NewTaxConfigStore(pool),
		JobStore:       pgstore.NewJobStore(pool),
		Provider:       launchProvider,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create scheduler")
	}
	defer scheduler.Close()

	cycle, err := scheduler.RunCycle(ctx, domain.TriggerScheduled)
	if err != nil {
		log.Fatal().Err(err).Msg("automation cycle failed")
	}
	printResult("automation", cycle)

	if !*skipGraduations {
		monitor := graduation.New(graduation.Options{
			TokenStore: tokens,
			Provider:   launchProvider,
			Rate:       graduation.FixedRate(*solUSD),
		})
		sweep, err := monitor.RunCycle(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("graduation sweep failed")
		}
		printResult("graduation", sweep)
	}

	if len(cycle.Errors) > 0 {
		os.Exit(1)
	}
}

// printResult writes a cycle summary to stdout as JSON.
func printResult(name string, result any) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Str("cycle", name).Msg("marshal cycle result")
		return
	}
	fmt.Printf("%s: %s\n", name, payload)
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
