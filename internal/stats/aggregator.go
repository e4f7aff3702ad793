// Package stats computes the read-only rollups behind the /stats
// endpoints. Everything here is recomputed on read; nothing is cached.
package stats

import (
	"context"
	"fmt"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// Default window and page size for the trending view.
const (
	DefaultTrendingWindowMs = 24 * 60 * 60 * 1000
	DefaultTrendingLimit    = 20
	DefaultNewestLimit      = 20
)

// Aggregator derives platform, creator and automation rollups from the
// stores.
type Aggregator struct {
	tokens  storage.TokenStore
	stakers storage.StakerStore
	jobs    storage.JobStore
	trades  storage.TradeEventStore
}

// Options for creating Aggregator.
type Options struct {
	TokenStore      storage.TokenStore
	StakerStore     storage.StakerStore
	JobStore        storage.JobStore
	TradeEventStore storage.TradeEventStore
}

// New creates a new Aggregator.
func New(opts Options) *Aggregator {
	return &Aggregator{
		tokens:  opts.TokenStore,
		stakers: opts.StakerStore,
		jobs:    opts.JobStore,
		trades:  opts.TradeEventStore,
	}
}

// Platform computes platform-wide totals.
func (a *Aggregator) Platform(ctx context.Context) (*domain.PlatformStats, error) {
	tokens, err := a.tokens.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}

	stats := &domain.PlatformStats{TotalTokens: len(tokens)}
	for _, t := range tokens {
		switch t.Status {
		case domain.TokenStatusActive:
			stats.ActiveTokens++
		case domain.TokenStatusGraduated:
			stats.GraduatedTokens++
		}
		stats.TotalVolumeSOL += t.VolumeSOL
	}

	stakers, err := a.stakers.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stakers: %w", err)
	}
	stats.TotalStakers = len(stakers)
	for _, s := range stakers {
		stats.TotalStaked += s.StakedAmount
	}

	return stats, nil
}

// Creator aggregates one creator wallet's tokens.
func (a *Aggregator) Creator(ctx context.Context, wallet string) (*domain.CreatorStats, error) {
	tokens, err := a.tokens.GetByCreator(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("load creator tokens: %w", err)
	}

	stats := &domain.CreatorStats{
		CreatorWallet:  wallet,
		TokensLaunched: len(tokens),
	}
	for _, t := range tokens {
		if t.Status == domain.TokenStatusGraduated {
			stats.TokensGraduated++
		}
		stats.TotalVolumeSOL += t.VolumeSOL
	}

	return stats, nil
}

// Automation summarizes the job log.
func (a *Aggregator) Automation(ctx context.Context) (*domain.AutomationStats, error) {
	counts, err := a.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	totals, err := a.jobs.SumAmounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum job amounts: %w", err)
	}

	return &domain.AutomationStats{
		PendingJobs:          counts[domain.JobStatusPending],
		RunningJobs:          counts[domain.JobStatusRunning],
		CompletedJobs:        counts[domain.JobStatusCompleted],
		FailedJobs:           counts[domain.JobStatusFailed],
		TotalClaimedLamports: totals.ClaimedLamports,
		TotalBurnedTokens:    totals.BurnedTokens,
		TotalLpTokensAdded:   totals.LpTokensAdded,
		TotalDividendsPaid:   totals.DividendsPaid,
	}, nil
}

// Trending ranks tokens by trade volume inside the window ending now.
func (a *Aggregator) Trending(ctx context.Context, nowMs int64, windowMs int64, limit int) ([]*domain.TrendingToken, error) {
	if windowMs <= 0 {
		windowMs = DefaultTrendingWindowMs
	}
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	trending, err := a.trades.TopByVolume(ctx, nowMs-windowMs, limit)
	if err != nil {
		return nil, fmt.Errorf("load trending tokens: %w", err)
	}
	return trending, nil
}

// Newest returns the most recently launched tokens.
func (a *Aggregator) Newest(ctx context.Context, limit int) ([]*domain.Token, error) {
	if limit <= 0 {
		limit = DefaultNewestLimit
	}
	tokens, err := a.tokens.GetNewest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load newest tokens: %w", err)
	}
	return tokens, nil
}
