// Package api exposes the launchpad over HTTP: token launch, read
// projections, admin automation controls, stats rollups and the
// WebSocket event stream. Every JSON response is wrapped in the
// {success, data|error, timestamp} envelope.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"solana-launchpad/internal/automation"
	"solana-launchpad/internal/graduation"
	"solana-launchpad/internal/observability"
	"solana-launchpad/internal/provider"
	"solana-launchpad/internal/staking"
	"solana-launchpad/internal/stats"
	"solana-launchpad/internal/storage"
	"solana-launchpad/internal/stream"
)

// defaultSolUSD is used when no rate source is configured.
const defaultSolUSD = 150

// Server is the HTTP surface over the launchpad engine.
type Server struct {
	tokens     storage.TokenStore
	taxConfigs storage.TaxConfigStore
	stakers    storage.StakerStore
	jobs       storage.JobStore
	trades     storage.TradeEventStore

	provider  provider.LaunchProvider
	scheduler *automation.Scheduler
	monitor   *graduation.Monitor
	stats     *stats.Aggregator
	hub       *stream.Hub

	rate    graduation.RateSource
	staking staking.Config
	now     func() int64

	mux *http.ServeMux
}

// Options for creating Server.
type Options struct {
	TokenStore      storage.TokenStore
	TaxConfigStore  storage.TaxConfigStore
	StakerStore     storage.StakerStore
	JobStore        storage.JobStore
	TradeEventStore storage.TradeEventStore

	Provider   provider.LaunchProvider
	Scheduler  *automation.Scheduler
	Monitor    *graduation.Monitor
	Aggregator *stats.Aggregator

	// Hub is optional; /ws/events is not registered without it.
	Hub *stream.Hub

	// Rate supplies the SOL/USD rate for market-cap views. Defaults to
	// a fixed rate of defaultSolUSD.
	Rate graduation.RateSource

	// Staking holds tier thresholds and the base platform fee.
	// Defaults to staking.DefaultConfig().
	Staking staking.Config

	// Now overrides the clock, for tests.
	Now func() int64
}

// NewServer creates a new Server and registers all routes.
func NewServer(opts Options) *Server {
	rate := opts.Rate
	if rate == nil {
		rate = graduation.FixedRate(defaultSolUSD)
	}
	cfg := opts.Staking
	if cfg == (staking.Config{}) {
		cfg = staking.DefaultConfig()
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	s := &Server{
		tokens:     opts.TokenStore,
		taxConfigs: opts.TaxConfigStore,
		stakers:    opts.StakerStore,
		jobs:       opts.JobStore,
		trades:     opts.TradeEventStore,
		provider:   opts.Provider,
		scheduler:  opts.Scheduler,
		monitor:    opts.Monitor,
		stats:      opts.Aggregator,
		hub:        opts.Hub,
		rate:       rate,
		staking:    cfg,
		now:        now,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.handle("POST /launch", s.handleLaunch)

	s.handle("GET /tokens", s.handleListTokens)
	s.handle("GET /tokens/{mint}", s.handleGetToken)
	s.handle("GET /tokens/{mint}/stats", s.handleTokenStats)
	s.handle("GET /tokens/{mint}/quote", s.handleTokenQuote)
	s.handle("POST /tokens/{mint}/trades", s.handleRecordTrade)

	s.handle("GET /staking/{wallet}", s.handleGetStaker)

	s.handle("POST /admin/automation/trigger", s.handleTrigger)
	s.handle("POST /admin/automation/run-all", s.handleRunAll)
	s.handle("POST /admin/graduations/check", s.handleGraduationsCheck)
	s.handle("GET /admin/jobs/pending", s.handleJobsPending)
	s.handle("GET /admin/jobs/failed", s.handleJobsFailed)
	s.handle("POST /admin/jobs/{id}/retry", s.handleRetryJob)
	s.handle("GET /admin/health", s.handleHealth)

	s.handle("GET /stats/platform", s.handleStatsPlatform)
	s.handle("GET /stats/creator/{wallet}", s.handleStatsCreator)
	s.handle("GET /stats/trending", s.handleStatsTrending)
	s.handle("GET /stats/new", s.handleStatsNew)
	s.handle("GET /stats/automation", s.handleStatsAutomation)

	// The hub hijacks the connection; it bypasses the status-recording
	// wrapper.
	if s.hub != nil {
		s.mux.Handle("GET /ws/events", s.hub)
	}
}

// handle registers a handler with request logging and metrics.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)

		elapsed := time.Since(start)
		observability.RecordHTTPRequest(pattern, r.Method, strconv.Itoa(sw.status), elapsed.Seconds())
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}

// statusWriter records the response status for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
