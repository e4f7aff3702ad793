package memory

import (
	"context"
	"sort"
	"sync"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// JobStore is an in-memory implementation of storage.JobStore.
// The single mutex makes check-and-enqueue atomic, mirroring the partial
// unique index used by the PostgreSQL implementation.
type JobStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AutomationJob // keyed by job id
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		data: make(map[string]*domain.AutomationJob),
	}
}

// Enqueue inserts a PENDING job unless a PENDING or RUNNING job already
// exists for the same (token_id, job_type). Returns ErrJobConflict then.
func (s *JobStore) Enqueue(_ context.Context, job *domain.AutomationJob) error {
	if job == nil || job.ID == "" || job.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[job.ID]; exists {
		return storage.ErrDuplicateKey
	}
	for _, existing := range s.data {
		if existing.TokenID == job.TokenID && existing.JobType == job.JobType && !existing.Status.Terminal() {
			return storage.ErrJobConflict
		}
	}

	jobCopy := *job
	jobCopy.Status = domain.JobStatusPending
	s.data[job.ID] = &jobCopy
	return nil
}

// GetByID retrieves a job. Returns ErrNotFound if not exists.
func (s *JobStore) GetByID(_ context.Context, id string) (*domain.AutomationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	jobCopy := *job
	return &jobCopy, nil
}

// GetByStatus retrieves up to limit jobs with the given status, most
// recently scheduled first. limit <= 0 means no limit.
func (s *JobStore) GetByStatus(_ context.Context, status domain.JobStatus, limit int) ([]*domain.AutomationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AutomationJob
	for _, job := range s.data {
		if job.Status == status {
			jobCopy := *job
			result = append(result, &jobCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ScheduledFor != result[j].ScheduledFor {
			return result[i].ScheduledFor > result[j].ScheduledFor
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// MarkRunning transitions PENDING → RUNNING.
func (s *JobStore) MarkRunning(_ context.Context, id string, startedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	if job.Status != domain.JobStatusPending {
		return storage.ErrStateConflict
	}

	job.Status = domain.JobStatusRunning
	job.StartedAt = &startedAt
	return nil
}

// MarkCompleted transitions RUNNING → COMPLETED and records amounts.
func (s *JobStore) MarkCompleted(_ context.Context, id string, completedAt int64, amounts domain.JobAmounts) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	if job.Status != domain.JobStatusRunning {
		return storage.ErrStateConflict
	}

	job.Status = domain.JobStatusCompleted
	job.CompletedAt = &completedAt
	job.JobAmounts = amounts
	return nil
}

// MarkFailed transitions RUNNING → FAILED, records the error message and
// increments retry_count.
func (s *JobStore) MarkFailed(_ context.Context, id string, completedAt int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	if job.Status != domain.JobStatusRunning {
		return storage.ErrStateConflict
	}

	job.Status = domain.JobStatusFailed
	job.CompletedAt = &completedAt
	job.ErrorMessage = &errMsg
	job.RetryCount++
	return nil
}

// ResetForRetry transitions FAILED → PENDING and clears the error message.
func (s *JobStore) ResetForRetry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	if job.Status != domain.JobStatusFailed {
		return storage.ErrStateConflict
	}

	job.Status = domain.JobStatusPending
	job.ErrorMessage = nil
	job.StartedAt = nil
	job.CompletedAt = nil
	return nil
}

// CountByStatus returns job counts keyed by status.
func (s *JobStore) CountByStatus(_ context.Context) (map[domain.JobStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.JobStatus]int)
	for _, job := range s.data {
		counts[job.Status]++
	}
	return counts, nil
}

// SumAmounts returns totals of the recorded result amounts across all
// COMPLETED jobs.
func (s *JobStore) SumAmounts(_ context.Context) (domain.JobAmounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals domain.JobAmounts
	for _, job := range s.data {
		if job.Status != domain.JobStatusCompleted {
			continue
		}
		totals.ClaimedLamports += job.ClaimedLamports
		totals.BurnedTokens += job.BurnedTokens
		totals.LpTokensAdded += job.LpTokensAdded
		totals.DividendsPaid += job.DividendsPaid
	}
	return totals, nil
}

// Verify interface compliance at compile time.
var _ storage.JobStore = (*JobStore)(nil)
