package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

func newTestJob(id, tokenID string, jobType domain.JobType, scheduledFor int64) *domain.AutomationJob {
	return &domain.AutomationJob{
		ID:           id,
		TokenID:      tokenID,
		JobType:      jobType,
		Status:       domain.JobStatusPending,
		TriggerType:  domain.TriggerScheduled,
		ScheduledFor: scheduledFor,
	}
}

func TestJobStore_EnqueueAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewJobStore(pool)

	job := newTestJob("job-1", "tok-1", domain.JobTypeClaim, 1700000000000)
	job.ParentJobID = ptr("parent-0")
	require.NoError(t, store.Enqueue(ctx, job))

	got, err := store.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, got.Status)
	assert.Equal(t, domain.JobTypeClaim, got.JobType)
	assert.Equal(t, domain.TriggerScheduled, got.TriggerType)
	require.NotNil(t, got.ParentJobID)
	assert.Equal(t, "parent-0", *got.ParentJobID)
	assert.Nil(t, got.StartedAt)
	assert.Nil(t, got.CompletedAt)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobStore_EnqueueConflictOnActiveJob(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewJobStore(pool)

	require.NoError(t, store.Enqueue(ctx, newTestJob("job-1", "tok-1", domain.JobTypeClaim, 1000)))

	// Same (token, type) while PENDING hits the partial unique index
	err := store.Enqueue(ctx, newTestJob("job-2", "tok-1", domain.JobTypeClaim, 2000))
	assert.ErrorIs(t, err, storage.ErrJobConflict)

	// Different type and different token are both fine
	require.NoError(t, store.Enqueue(ctx, newTestJob("job-3", "tok-1", domain.JobTypeBurn, 2000)))
	require.NoError(t, store.Enqueue(ctx, newTestJob("job-4", "tok-2", domain.JobTypeClaim, 2000)))

	// Completing the first job frees the slot
	require.NoError(t, store.MarkRunning(ctx, "job-1", 1100))
	require.NoError(t, store.MarkCompleted(ctx, "job-1", 1200, domain.JobAmounts{ClaimedLamports: 42}))
	require.NoError(t, store.Enqueue(ctx, newTestJob("job-5", "tok-1", domain.JobTypeClaim, 3000)))
}

func TestJobStore_Lifecycle(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewJobStore(pool)

	require.NoError(t, store.Enqueue(ctx, newTestJob("job-1", "tok-1", domain.JobTypeClaim, 1000)))

	// RUNNING-only transitions rejected while PENDING
	assert.ErrorIs(t, store.MarkCompleted(ctx, "job-1", 1100, domain.JobAmounts{}), storage.ErrStateConflict)
	assert.ErrorIs(t, store.MarkFailed(ctx, "job-1", 1100, "boom"), storage.ErrStateConflict)

	require.NoError(t, store.MarkRunning(ctx, "job-1", 1100))
	assert.ErrorIs(t, store.MarkRunning(ctx, "job-1", 1200), storage.ErrStateConflict)

	require.NoError(t, store.MarkFailed(ctx, "job-1", 1300, "provider timeout"))

	job, err := store.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "provider timeout", *job.ErrorMessage)
	assert.Equal(t, 1, job.RetryCount)
	require.NotNil(t, job.StartedAt)
	assert.EqualValues(t, 1100, *job.StartedAt)
	require.NotNil(t, job.CompletedAt)
	assert.EqualValues(t, 1300, *job.CompletedAt)

	assert.ErrorIs(t, store.MarkRunning(ctx, "missing", 1), storage.ErrNotFound)
}

func TestJobStore_ResetForRetry(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewJobStore(pool)

	require.NoError(t, store.Enqueue(ctx, newTestJob("job-1", "tok-1", domain.JobTypeClaim, 1000)))
	require.NoError(t, store.MarkRunning(ctx, "job-1", 1100))
	require.NoError(t, store.MarkCompleted(ctx, "job-1", 1200, domain.JobAmounts{}))

	// COMPLETED jobs cannot be retried
	assert.ErrorIs(t, store.ResetForRetry(ctx, "job-1"), storage.ErrStateConflict)

	require.NoError(t, store.Enqueue(ctx, newTestJob("job-2", "tok-2", domain.JobTypeClaim, 1000)))
	require.NoError(t, store.MarkRunning(ctx, "job-2", 1100))
	require.NoError(t, store.MarkFailed(ctx, "job-2", 1200, "boom"))

	require.NoError(t, store.ResetForRetry(ctx, "job-2"))

	job, err := store.GetByID(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Nil(t, job.ErrorMessage)
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)
	assert.Equal(t, 1, job.RetryCount)
}

func TestJobStore_Aggregates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewJobStore(pool)

	require.NoError(t, store.Enqueue(ctx, newTestJob("job-1", "tok-1", domain.JobTypeClaim, 1000)))
	require.NoError(t, store.Enqueue(ctx, newTestJob("job-2", "tok-2", domain.JobTypeClaim, 3000)))
	require.NoError(t, store.Enqueue(ctx, newTestJob("job-3", "tok-3", domain.JobTypeClaim, 2000)))

	require.NoError(t, store.MarkRunning(ctx, "job-1", 1100))
	require.NoError(t, store.MarkCompleted(ctx, "job-1", 1200,
		domain.JobAmounts{ClaimedLamports: 100, BurnedTokens: 10, LpTokensAdded: 5, DividendsPaid: 3}))

	pending, err := store.GetByStatus(ctx, domain.JobStatusPending, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "job-2", pending[0].ID) // most recently scheduled first

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.JobStatusPending])
	assert.Equal(t, 1, counts[domain.JobStatusCompleted])

	totals, err := store.SumAmounts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 100, totals.ClaimedLamports)
	assert.EqualValues(t, 10, totals.BurnedTokens)
	assert.EqualValues(t, 5, totals.LpTokensAdded)
	assert.EqualValues(t, 3, totals.DividendsPaid)
}
