package automation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/provider/stub"
	"solana-launchpad/internal/storage"
	"solana-launchpad/internal/storage/memory"
	"solana-launchpad/internal/stream"
)

type testEnv struct {
	tokens     *memory.TokenStore
	taxConfigs *memory.TaxConfigStore
	jobs       *memory.JobStore
	provider   *stub.Provider
	scheduler  *Scheduler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tokens:     memory.NewTokenStore(),
		taxConfigs: memory.NewTaxConfigStore(),
		jobs:       memory.NewJobStore(),
		provider:   stub.New(),
	}

	scheduler, err := New(Options{
		TokenStore:     env.tokens,
		TaxConfigStore: env.taxConfigs,
		JobStore:       env.jobs,
		Provider:       env.provider,
		WorkerCount:    4,
	})
	require.NoError(t, err)
	t.Cleanup(scheduler.Close)

	env.scheduler = scheduler
	return env
}

func (e *testEnv) addToken(t *testing.T, id string) {
	t.Helper()
	err := e.tokens.Insert(context.Background(), &domain.Token{
		TokenID:       id,
		Mint:          "Mint" + id,
		Name:          "Token " + id,
		Symbol:        "TKN",
		TotalSupply:   1_000_000_000,
		Status:        domain.TokenStatusActive,
		CreatorWallet: "Creator",
		CreatedAt:     1700000000000,
	})
	require.NoError(t, err)
}

func (e *testEnv) addTaxConfig(t *testing.T, tokenID string) {
	t.Helper()
	err := e.taxConfigs.Insert(context.Background(), &domain.TaxConfig{
		TokenID:          tokenID,
		BurnEnabled:      true,
		BurnPercent:      10,
		LpEnabled:        true,
		LpPercent:        5,
		DividendsEnabled: true,
		DividendsPercent: 2.5,
		CustomWallets: []domain.CustomWallet{
			{Address: "Team", Percent: 1, Label: "team"},
		},
	})
	require.NoError(t, err)
}

func jobsByType(t *testing.T, jobs *memory.JobStore, status domain.JobStatus) map[domain.JobType]*domain.AutomationJob {
	t.Helper()
	list, err := jobs.GetByStatus(context.Background(), status, 0)
	require.NoError(t, err)
	byType := make(map[domain.JobType]*domain.AutomationJob)
	for _, j := range list {
		byType[j.JobType] = j
	}
	return byType
}

func TestScheduler_ClaimFansOutChildren(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.addToken(t, "t1")
	env.addTaxConfig(t, "t1")
	env.provider.ClaimAmounts["t1"] = 1_000_000_000

	result, err := env.scheduler.RunCycle(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Enqueued)
	assert.Equal(t, 4, result.Executed) // CLAIM + BURN + ADD_LIQUIDITY + PAY_DIVIDENDS
	assert.Equal(t, 0, result.Failed)

	completed := jobsByType(t, env.jobs, domain.JobStatusCompleted)
	require.Len(t, completed, 4)

	claim := completed[domain.JobTypeClaim]
	require.NotNil(t, claim)
	assert.EqualValues(t, 1_000_000_000, claim.ClaimedLamports)
	assert.Nil(t, claim.ParentJobID)

	burn := completed[domain.JobTypeBurn]
	require.NotNil(t, burn)
	require.NotNil(t, burn.ParentJobID)
	assert.Equal(t, claim.ID, *burn.ParentJobID)
	assert.EqualValues(t, 100_000_000, burn.BurnedTokens) // 10% of claim

	lp := completed[domain.JobTypeAddLiquidity]
	require.NotNil(t, lp)
	assert.EqualValues(t, 50_000_000, lp.LpTokensAdded) // 5% of claim

	dividends := completed[domain.JobTypePayDividends]
	require.NotNil(t, dividends)
	// 2.5% dividends + 1% custom wallet ride the same distribution
	assert.EqualValues(t, 35_000_000, dividends.DividendsPaid)

	// Provider saw the right lamport amounts
	assert.EqualValues(t, 100_000_000, env.provider.Burns["t1"])
	assert.EqualValues(t, 50_000_000, env.provider.Liquidity["t1"])
	assert.EqualValues(t, 35_000_000, env.provider.Dividends["t1"])
}

func TestScheduler_ZeroClaimSkipsFanOut(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.addToken(t, "t1")
	env.addTaxConfig(t, "t1")
	// ClaimAmounts defaults to 0

	result, err := env.scheduler.RunCycle(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Executed)

	completed := jobsByType(t, env.jobs, domain.JobStatusCompleted)
	require.Len(t, completed, 1)
	assert.EqualValues(t, 0, completed[domain.JobTypeClaim].ClaimedLamports)
}

func TestScheduler_NoTaxConfigKeepsTreasury(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.addToken(t, "t1")
	env.provider.ClaimAmounts["t1"] = 500_000

	result, err := env.scheduler.RunCycle(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Executed)

	completed := jobsByType(t, env.jobs, domain.JobStatusCompleted)
	require.Len(t, completed, 1) // claim only, no children
	assert.EqualValues(t, 500_000, completed[domain.JobTypeClaim].ClaimedLamports)
}

func TestScheduler_DuplicateTriggerConflicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.addToken(t, "t1")

	_, err := env.scheduler.EnqueueClaim(ctx, "t1", domain.TriggerManual)
	require.NoError(t, err)

	// Second trigger while the first is PENDING
	_, err = env.scheduler.EnqueueClaim(ctx, "t1", domain.TriggerManual)
	assert.ErrorIs(t, err, storage.ErrJobConflict)

	pending, err := env.jobs.GetByStatus(ctx, domain.JobStatusPending, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestScheduler_CycleSkipsTokensWithWorkInFlight(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.addToken(t, "t1")
	env.addToken(t, "t2")

	_, err := env.scheduler.EnqueueClaim(ctx, "t1", domain.TriggerManual)
	require.NoError(t, err)

	result, err := env.scheduler.RunCycle(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Enqueued) // only t2
	assert.Equal(t, 1, result.Skipped)  // t1 already has a claim
	assert.Equal(t, 2, result.Executed) // both claims drain
}

func TestScheduler_ProviderFailureIsolatedPerToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.addToken(t, "t1")
	env.addToken(t, "t2")
	env.provider.FailWith("claimFees", errors.New("rpc timeout"))

	result, err := env.scheduler.RunCycle(ctx, domain.TriggerScheduled)
	require.NoError(t, err) // the cycle itself never aborts
	assert.Equal(t, 2, result.Failed)
	assert.Len(t, result.Errors, 2)

	failed, err := env.jobs.GetByStatus(ctx, domain.JobStatusFailed, 0)
	require.NoError(t, err)
	require.Len(t, failed, 2)
	for _, job := range failed {
		require.NotNil(t, job.ErrorMessage)
		assert.Contains(t, *job.ErrorMessage, "rpc timeout")
		assert.Equal(t, 1, job.RetryCount)
	}
}

func TestScheduler_RetrySemantics(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.addToken(t, "t1")
	env.provider.FailWith("claimFees", errors.New("rpc timeout"))

	_, err := env.scheduler.RunCycle(ctx, domain.TriggerScheduled)
	require.NoError(t, err)

	failed, err := env.jobs.GetByStatus(ctx, domain.JobStatusFailed, 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	failedID := failed[0].ID

	// Retry resets FAILED → PENDING with a cleared error
	job, err := env.scheduler.Retry(ctx, failedID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Nil(t, job.ErrorMessage)

	// Drain again with a working provider
	env.provider.FailWith("claimFees", nil)
	env.provider.ClaimAmounts["t1"] = 100
	result := &CycleResult{}
	require.NoError(t, env.scheduler.ExecutePending(ctx, result))

	recovered, err := env.jobs.GetByID(ctx, failedID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, recovered.Status)
	assert.EqualValues(t, 100, recovered.ClaimedLamports)

	// Retry of a COMPLETED job is a state conflict and leaves it unchanged
	_, err = env.scheduler.Retry(ctx, failedID)
	assert.ErrorIs(t, err, storage.ErrStateConflict)

	unchanged, _ := env.jobs.GetByID(ctx, failedID)
	assert.Equal(t, domain.JobStatusCompleted, unchanged.Status)

	_, err = env.scheduler.Retry(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScheduler_BannedTokenRejected(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.addToken(t, "t1")
	ok, err := env.tokens.UpdateStatusIf(ctx, "t1", domain.TokenStatusActive, domain.TokenStatusBanned)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.scheduler.EnqueueClaim(ctx, "t1", domain.TriggerManual)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestScheduler_ChildFailureLeavesSiblingsCompleted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.addToken(t, "t1")
	env.addTaxConfig(t, "t1")
	env.provider.ClaimAmounts["t1"] = 1_000_000_000
	env.provider.FailWith("burn", errors.New("burn tx failed"))

	result, err := env.scheduler.RunCycle(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Executed) // claim + 2 surviving children
	assert.Equal(t, 1, result.Failed)

	completed := jobsByType(t, env.jobs, domain.JobStatusCompleted)
	assert.NotNil(t, completed[domain.JobTypeClaim])
	assert.NotNil(t, completed[domain.JobTypeAddLiquidity])
	assert.NotNil(t, completed[domain.JobTypePayDividends])

	failedJobs := jobsByType(t, env.jobs, domain.JobStatusFailed)
	burn := failedJobs[domain.JobTypeBurn]
	require.NotNil(t, burn)
	require.NotNil(t, burn.ErrorMessage)
	assert.Contains(t, *burn.ErrorMessage, "burn tx failed")

	// The failed burn is independently retryable
	env.provider.FailWith("burn", nil)
	_, err = env.scheduler.Retry(ctx, burn.ID)
	require.NoError(t, err)

	drain := &CycleResult{}
	require.NoError(t, env.scheduler.ExecutePending(ctx, drain))

	recovered, _ := env.jobs.GetByID(ctx, burn.ID)
	assert.Equal(t, domain.JobStatusCompleted, recovered.Status)
	assert.EqualValues(t, 100_000_000, recovered.BurnedTokens)
}

// captureSink records published event types for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []string
}

func (c *captureSink) Publish(eventType string, _ interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, eventType)
}

func (c *captureSink) count(eventType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e == eventType {
			n++
		}
	}
	return n
}

func TestScheduler_PublishesJobOutcomes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sink := &captureSink{}
	env.scheduler.events = sink

	env.addToken(t, "t1")
	env.addTaxConfig(t, "t1")
	env.provider.ClaimAmounts["t1"] = 1_000_000_000
	env.provider.FailWith("burn", errors.New("burn tx failed"))

	_, err := env.scheduler.RunCycle(ctx, domain.TriggerScheduled)
	require.NoError(t, err)

	// CLAIM, ADD_LIQUIDITY and PAY_DIVIDENDS complete; the burn fails.
	assert.Equal(t, 3, sink.count(stream.EventJobCompleted))
	assert.Equal(t, 1, sink.count(stream.EventJobFailed))
}

func TestScheduler_ManualChildJobNeedsCompletedClaim(t *testing.T) {
	env := newTestEnv(t)
	env.addToken(t, "t1")
	ctx := context.Background()

	// No completed claim yet: nothing to derive the burn amount from
	_, err := env.scheduler.EnqueueJob(ctx, "t1", domain.JobTypeBurn, domain.TriggerManual)
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	// EnqueueJob with CLAIM behaves exactly like EnqueueClaim
	claim, err := env.scheduler.EnqueueJob(ctx, "t1", domain.JobTypeClaim, domain.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, domain.JobTypeClaim, claim.JobType)
	assert.Nil(t, claim.ParentJobID)
}

func TestScheduler_ManualBurnReusesLatestClaimSplit(t *testing.T) {
	env := newTestEnv(t)
	env.addToken(t, "t1")
	env.addTaxConfig(t, "t1")
	env.provider.ClaimAmounts["t1"] = 1_000_000_000
	ctx := context.Background()

	_, err := env.scheduler.EnqueueClaim(ctx, "t1", domain.TriggerScheduled)
	require.NoError(t, err)
	require.NoError(t, env.scheduler.ExecutePending(ctx, nil))

	job, err := env.scheduler.EnqueueJob(ctx, "t1", domain.JobTypeBurn, domain.TriggerManual)
	require.NoError(t, err)
	require.NotNil(t, job.ParentJobID)
	assert.Equal(t, domain.TriggerManual, job.TriggerType)

	require.NoError(t, env.scheduler.ExecutePending(ctx, nil))

	done, err := env.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, done.Status)
	// 10% of the 1e9 lamport claim, same share the fan-out child received
	assert.Equal(t, int64(100_000_000), done.BurnedTokens)
}
