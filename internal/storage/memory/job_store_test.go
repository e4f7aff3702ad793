package memory

import (
	"context"
	"errors"
	"testing"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

func testJob(id, tokenID string, jobType domain.JobType, scheduledFor int64) *domain.AutomationJob {
	return &domain.AutomationJob{
		ID:           id,
		TokenID:      tokenID,
		JobType:      jobType,
		Status:       domain.JobStatusPending,
		TriggerType:  domain.TriggerScheduled,
		ScheduledFor: scheduledFor,
	}
}

func TestJobStore_EnqueueConflict(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	if err := store.Enqueue(ctx, testJob("j1", "t1", domain.JobTypeClaim, 1000)); err != nil {
		t.Fatalf("First enqueue failed: %v", err)
	}

	// Second CLAIM for the same token while the first is PENDING
	err := store.Enqueue(ctx, testJob("j2", "t1", domain.JobTypeClaim, 2000))
	if !errors.Is(err, storage.ErrJobConflict) {
		t.Errorf("Expected ErrJobConflict, got %v", err)
	}

	// A different job type for the same token is fine
	if err := store.Enqueue(ctx, testJob("j3", "t1", domain.JobTypeBurn, 2000)); err != nil {
		t.Errorf("Enqueue of different type failed: %v", err)
	}

	// Same type for a different token is fine
	if err := store.Enqueue(ctx, testJob("j4", "t2", domain.JobTypeClaim, 2000)); err != nil {
		t.Errorf("Enqueue for different token failed: %v", err)
	}
}

func TestJobStore_ConflictClearsAfterTerminal(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	if err := store.Enqueue(ctx, testJob("j1", "t1", domain.JobTypeClaim, 1000)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := store.MarkRunning(ctx, "j1", 1100); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}

	// Still conflicts while RUNNING
	if err := store.Enqueue(ctx, testJob("j2", "t1", domain.JobTypeClaim, 2000)); !errors.Is(err, storage.ErrJobConflict) {
		t.Errorf("Expected ErrJobConflict while running, got %v", err)
	}

	if err := store.MarkCompleted(ctx, "j1", 1200, domain.JobAmounts{ClaimedLamports: 500}); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	// Terminal job no longer blocks
	if err := store.Enqueue(ctx, testJob("j2", "t1", domain.JobTypeClaim, 2000)); err != nil {
		t.Errorf("Enqueue after completion failed: %v", err)
	}
}

func TestJobStore_Transitions(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	if err := store.Enqueue(ctx, testJob("j1", "t1", domain.JobTypeClaim, 1000)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// Cannot complete or fail a PENDING job
	if err := store.MarkCompleted(ctx, "j1", 1100, domain.JobAmounts{}); !errors.Is(err, storage.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict, got %v", err)
	}
	if err := store.MarkFailed(ctx, "j1", 1100, "boom"); !errors.Is(err, storage.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict, got %v", err)
	}

	if err := store.MarkRunning(ctx, "j1", 1100); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	// Cannot start a RUNNING job again
	if err := store.MarkRunning(ctx, "j1", 1200); !errors.Is(err, storage.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict, got %v", err)
	}

	if err := store.MarkFailed(ctx, "j1", 1300, "provider timeout"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	job, _ := store.GetByID(ctx, "j1")
	if job.Status != domain.JobStatusFailed {
		t.Errorf("Status mismatch: got %s", job.Status)
	}
	if job.ErrorMessage == nil || *job.ErrorMessage != "provider timeout" {
		t.Errorf("ErrorMessage mismatch: %v", job.ErrorMessage)
	}
	if job.RetryCount != 1 {
		t.Errorf("RetryCount mismatch: got %d, want 1", job.RetryCount)
	}
}

func TestJobStore_ResetForRetry(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	if err := store.Enqueue(ctx, testJob("j1", "t1", domain.JobTypeClaim, 1000)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := store.MarkRunning(ctx, "j1", 1100); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	if err := store.MarkCompleted(ctx, "j1", 1200, domain.JobAmounts{}); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	// Retrying a COMPLETED job is a state conflict and leaves it unchanged
	if err := store.ResetForRetry(ctx, "j1"); !errors.Is(err, storage.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict, got %v", err)
	}
	job, _ := store.GetByID(ctx, "j1")
	if job.Status != domain.JobStatusCompleted {
		t.Errorf("Completed job was mutated: %s", job.Status)
	}

	// A FAILED job resets to PENDING with a cleared error
	if err := store.Enqueue(ctx, testJob("j2", "t2", domain.JobTypeClaim, 1000)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	store.MarkRunning(ctx, "j2", 1100)
	store.MarkFailed(ctx, "j2", 1200, "boom")

	if err := store.ResetForRetry(ctx, "j2"); err != nil {
		t.Fatalf("ResetForRetry failed: %v", err)
	}
	job, _ = store.GetByID(ctx, "j2")
	if job.Status != domain.JobStatusPending {
		t.Errorf("Status mismatch: got %s, want PENDING", job.Status)
	}
	if job.ErrorMessage != nil {
		t.Errorf("ErrorMessage not cleared: %v", *job.ErrorMessage)
	}
	if job.RetryCount != 1 {
		t.Errorf("RetryCount should survive retry reset, got %d", job.RetryCount)
	}
}

func TestJobStore_GetByStatusOrderAndLimit(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	for i, scheduled := range []int64{1000, 3000, 2000} {
		job := testJob(string(rune('a'+i)), "t"+string(rune('1'+i)), domain.JobTypeClaim, scheduled)
		if err := store.Enqueue(ctx, job); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	result, err := store.GetByStatus(ctx, domain.JobStatusPending, 2)
	if err != nil {
		t.Fatalf("GetByStatus failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(result))
	}
	if result[0].ScheduledFor != 3000 || result[1].ScheduledFor != 2000 {
		t.Errorf("Wrong order: %d, %d", result[0].ScheduledFor, result[1].ScheduledFor)
	}
}

func TestJobStore_Aggregates(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	store.Enqueue(ctx, testJob("j1", "t1", domain.JobTypeClaim, 1000))
	store.Enqueue(ctx, testJob("j2", "t2", domain.JobTypeClaim, 1000))
	store.MarkRunning(ctx, "j1", 1100)
	store.MarkCompleted(ctx, "j1", 1200, domain.JobAmounts{ClaimedLamports: 100, BurnedTokens: 10})

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[domain.JobStatusPending] != 1 || counts[domain.JobStatusCompleted] != 1 {
		t.Errorf("Counts mismatch: %v", counts)
	}

	totals, err := store.SumAmounts(ctx)
	if err != nil {
		t.Fatalf("SumAmounts failed: %v", err)
	}
	if totals.ClaimedLamports != 100 || totals.BurnedTokens != 10 {
		t.Errorf("Totals mismatch: %+v", totals)
	}
}
