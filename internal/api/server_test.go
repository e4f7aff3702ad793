package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"solana-launchpad/internal/automation"
	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/graduation"
	"solana-launchpad/internal/provider/stub"
	"solana-launchpad/internal/staking"
	"solana-launchpad/internal/stats"
	"solana-launchpad/internal/storage/memory"
)

// Fixed clock for deterministic timestamps and trending windows.
const testNowMs = int64(1_700_000_000_000)

// Known 32-byte base58 addresses for request payloads.
const (
	testCreatorWallet = "11111111111111111111111111111111"
	testMintA         = "So11111111111111111111111111111111111111112"
	testMintB         = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	testCustomWallet  = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
)

type testEnv struct {
	tokens     *memory.TokenStore
	taxConfigs *memory.TaxConfigStore
	stakers    *memory.StakerStore
	jobs       *memory.JobStore
	trades     *memory.TradeEventStore
	provider   *stub.Provider
	scheduler  *automation.Scheduler
	server     *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tokens:     memory.NewTokenStore(),
		taxConfigs: memory.NewTaxConfigStore(),
		stakers:    memory.NewStakerStore(),
		jobs:       memory.NewJobStore(),
		trades:     memory.NewTradeEventStore(),
		provider:   stub.New(),
	}

	scheduler, err := automation.New(automation.Options{
		TokenStore:     env.tokens,
		TaxConfigStore: env.taxConfigs,
		JobStore:       env.jobs,
		Provider:       env.provider,
		WorkerCount:    4,
		Now:            func() int64 { return testNowMs },
	})
	require.NoError(t, err)
	t.Cleanup(scheduler.Close)
	env.scheduler = scheduler

	monitor := graduation.New(graduation.Options{
		TokenStore: env.tokens,
		Provider:   env.provider,
		Rate:       graduation.FixedRate(150),
	})

	aggregator := stats.New(stats.Options{
		TokenStore:      env.tokens,
		StakerStore:     env.stakers,
		JobStore:        env.jobs,
		TradeEventStore: env.trades,
	})

	env.server = NewServer(Options{
		TokenStore:      env.tokens,
		TaxConfigStore:  env.taxConfigs,
		StakerStore:     env.stakers,
		JobStore:        env.jobs,
		TradeEventStore: env.trades,
		Provider:        env.provider,
		Scheduler:       scheduler,
		Monitor:         monitor,
		Aggregator:      aggregator,
		Rate:            graduation.FixedRate(150),
		Staking:         staking.DefaultConfig(),
		Now:             func() int64 { return testNowMs },
	})
	return env
}

// addToken seeds a token directly into the store.
func (env *testEnv) addToken(t *testing.T, mint string, supply float64) *domain.Token {
	t.Helper()
	token := &domain.Token{
		TokenID:           "token-" + mint,
		Mint:              mint,
		Name:              "Test Token",
		Symbol:            "TST",
		Decimals:          9,
		TotalSupply:       1e9,
		CirculatingSupply: supply,
		Curve: domain.CurveParams{
			InitialPrice:           0.00001,
			CurveExponent:          2,
			VirtualSolReserve:      30,
			VirtualTokenReserve:    1e9,
			GraduationThresholdUSD: 69_000,
		},
		Status:        domain.TokenStatusActive,
		CreatorWallet: testCreatorWallet,
		CreatedAt:     testNowMs,
	}
	require.NoError(t, env.tokens.Insert(context.Background(), token))
	return token
}

// responseEnvelope mirrors the wire envelope with raw data for
// per-test decoding.
type responseEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Timestamp int64           `json:"timestamp"`
}

// doRequest runs one request through the server and decodes the envelope.
func (env *testEnv) doRequest(t *testing.T, method, path string, body any) (int, responseEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	var envlp responseEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envlp), "response body must be an envelope")
	require.NotZero(t, envlp.Timestamp)
	return rec.Code, envlp
}

// decodeData unmarshals the envelope data into dst.
func decodeData(t *testing.T, envlp responseEnvelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(envlp.Data, dst))
}

func TestServer_UnknownRouteIs404(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
