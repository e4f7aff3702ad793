// Package graduation flips tokens from curve-priced trading to external
// liquidity once their market cap crosses the graduation threshold.
package graduation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"solana-launchpad/internal/curve"
	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/provider"
	"solana-launchpad/internal/storage"
)

// RateSource supplies the current SOL/USD rate.
type RateSource func(ctx context.Context) (float64, error)

// FixedRate returns a RateSource that always yields rate.
func FixedRate(rate float64) RateSource {
	return func(context.Context) (float64, error) {
		return rate, nil
	}
}

// Monitor owns the ACTIVE → GRADUATED transition. The transition is
// compare-and-set on token status, so concurrent cycles graduate a token
// at most once, and migrate-liquidity is only issued by the cycle that
// won the CAS.
type Monitor struct {
	tokens   storage.TokenStore
	provider provider.LaunchProvider
	rate     RateSource
}

// Options for creating Monitor.
type Options struct {
	TokenStore storage.TokenStore
	Provider   provider.LaunchProvider
	Rate       RateSource
}

// New creates a new Monitor.
func New(opts Options) *Monitor {
	return &Monitor{
		tokens:   opts.TokenStore,
		provider: opts.Provider,
		rate:     opts.Rate,
	}
}

// CycleResult summarizes one graduation sweep.
type CycleResult struct {
	Checked   int      `json:"checked"`
	Graduated []string `json:"graduated"`
	Errors    []string `json:"errors"`
}

// RunCycle checks every ACTIVE token against its graduation threshold.
// A failed market-cap read skips the token until the next cycle; it is
// never treated as "not graduated". Returns an error only when the token
// list itself cannot be read.
func (m *Monitor) RunCycle(ctx context.Context) (*CycleResult, error) {
	solUSD, err := m.rate(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sol/usd rate: %w", err)
	}

	tokens, err := m.tokens.GetByStatus(ctx, domain.TokenStatusActive)
	if err != nil {
		return nil, fmt.Errorf("load active tokens: %w", err)
	}

	result := &CycleResult{}
	for _, token := range tokens {
		result.Checked++

		graduated, err := m.checkToken(ctx, token, solUSD)
		if err != nil {
			log.Warn().Err(err).Str("token_id", token.TokenID).Msg("graduation check skipped")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", token.TokenID, err))
			continue
		}
		if graduated {
			result.Graduated = append(result.Graduated, token.TokenID)
		}
	}

	return result, nil
}

// CheckToken runs a single graduation check by token ID.
func (m *Monitor) CheckToken(ctx context.Context, tokenID string) (bool, error) {
	solUSD, err := m.rate(ctx)
	if err != nil {
		return false, fmt.Errorf("read sol/usd rate: %w", err)
	}

	token, err := m.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return false, err
	}
	if token.Status != domain.TokenStatusActive {
		return false, nil
	}

	return m.checkToken(ctx, token, solUSD)
}

func (m *Monitor) checkToken(ctx context.Context, token *domain.Token, solUSD float64) (bool, error) {
	marketCapUSD, err := curve.MarketCapUSD(token.CirculatingSupply, token.TotalSupply, token.Curve, solUSD)
	if err != nil {
		return false, fmt.Errorf("compute market cap: %w", err)
	}

	if err := m.tokens.UpdateMarketSnapshot(ctx, token.TokenID, token.CirculatingSupply, token.VolumeSOL, marketCapUSD); err != nil {
		return false, fmt.Errorf("update market snapshot: %w", err)
	}

	if marketCapUSD < token.Curve.GraduationThresholdUSD {
		return false, nil
	}

	won, err := m.tokens.UpdateStatusIf(ctx, token.TokenID, domain.TokenStatusActive, domain.TokenStatusGraduated)
	if err != nil {
		return false, fmt.Errorf("graduate token: %w", err)
	}
	if !won {
		// Another cycle got there first; it also owns the migration.
		return false, nil
	}

	log.Info().
		Str("token_id", token.TokenID).
		Str("mint", token.Mint).
		Float64("market_cap_usd", marketCapUSD).
		Float64("threshold_usd", token.Curve.GraduationThresholdUSD).
		Msg("token graduated")

	// Fire-and-forget: the status flip stands even if migration fails.
	// A failed migration is logged for the operator; it does not reset
	// the token to ACTIVE.
	if err := m.provider.MigrateLiquidity(ctx, token.TokenID); err != nil {
		log.Error().Err(err).Str("token_id", token.TokenID).Msg("liquidity migration failed")
	}

	return true, nil
}
