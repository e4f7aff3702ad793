// Package automation runs the fee pipeline: claim accumulated fees per
// token, then burn / add liquidity / pay dividends according to the
// token's validated tax split. Job state is persisted through the
// JobStore, which is the single source of truth for in-flight work.
package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/observability"
	"solana-launchpad/internal/provider"
	"solana-launchpad/internal/storage"
	"solana-launchpad/internal/stream"
	"solana-launchpad/internal/tax"
)

// EventSink receives job lifecycle notifications. *stream.Hub satisfies
// it; a nil sink disables publishing.
type EventSink interface {
	Publish(eventType string, data interface{})
}

// DefaultWorkerCount bounds concurrent job execution per cycle.
const DefaultWorkerCount = 8

// Scheduler owns the AutomationJob lifecycle. Enqueues are serialized
// per (token, jobType) by the JobStore's conflict check; execution runs
// on a bounded worker pool with per-token failure isolation.
type Scheduler struct {
	tokens     storage.TokenStore
	taxConfigs storage.TaxConfigStore
	jobs       storage.JobStore
	provider   provider.LaunchProvider
	events     EventSink
	pool       *ants.Pool
	now        func() int64
}

// Options for creating Scheduler.
type Options struct {
	TokenStore     storage.TokenStore
	TaxConfigStore storage.TaxConfigStore
	JobStore       storage.JobStore
	Provider       provider.LaunchProvider

	// Events receives JOB_COMPLETED/JOB_FAILED notifications. Optional.
	Events EventSink

	// WorkerCount bounds concurrent job execution. Defaults to
	// DefaultWorkerCount.
	WorkerCount int

	// Now overrides the clock, for tests. Defaults to wall time in ms.
	Now func() int64
}

// New creates a new Scheduler.
func New(opts Options) (*Scheduler, error) {
	workers := opts.WorkerCount
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Scheduler{
		tokens:     opts.TokenStore,
		taxConfigs: opts.TaxConfigStore,
		jobs:       opts.JobStore,
		provider:   opts.Provider,
		events:     opts.Events,
		pool:       pool,
		now:        now,
	}, nil
}

// Close releases the worker pool.
func (s *Scheduler) Close() {
	s.pool.Release()
}

// EnqueueClaim enqueues a CLAIM job for the token. Returns
// storage.ErrJobConflict if a CLAIM is already PENDING or RUNNING for it.
func (s *Scheduler) EnqueueClaim(ctx context.Context, tokenID string, trigger domain.TriggerType) (*domain.AutomationJob, error) {
	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token.Status == domain.TokenStatusBanned {
		return nil, fmt.Errorf("%w: token %s is banned", storage.ErrInvalidInput, tokenID)
	}

	job := &domain.AutomationJob{
		ID:           uuid.NewString(),
		TokenID:      tokenID,
		JobType:      domain.JobTypeClaim,
		Status:       domain.JobStatusPending,
		TriggerType:  trigger,
		ScheduledFor: s.now(),
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// EnqueueJob enqueues a manually requested job of any type. A CLAIM
// stands alone; other types attach to the token's most recent COMPLETED
// claim so their lamport share can be derived at execution time, and are
// rejected when no such claim exists.
func (s *Scheduler) EnqueueJob(ctx context.Context, tokenID string, jobType domain.JobType, trigger domain.TriggerType) (*domain.AutomationJob, error) {
	if jobType == domain.JobTypeClaim {
		return s.EnqueueClaim(ctx, tokenID, trigger)
	}

	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token.Status == domain.TokenStatusBanned {
		return nil, fmt.Errorf("%w: token %s is banned", storage.ErrInvalidInput, tokenID)
	}

	parent, err := s.latestCompletedClaim(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	job := &domain.AutomationJob{
		ID:           uuid.NewString(),
		TokenID:      tokenID,
		JobType:      jobType,
		Status:       domain.JobStatusPending,
		TriggerType:  trigger,
		ParentJobID:  &parent.ID,
		ScheduledFor: s.now(),
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// latestCompletedClaim finds the token's most recently scheduled
// COMPLETED CLAIM job.
func (s *Scheduler) latestCompletedClaim(ctx context.Context, tokenID string) (*domain.AutomationJob, error) {
	completed, err := s.jobs.GetByStatus(ctx, domain.JobStatusCompleted, 0)
	if err != nil {
		return nil, fmt.Errorf("load completed jobs: %w", err)
	}
	for _, j := range completed {
		if j.TokenID == tokenID && j.JobType == domain.JobTypeClaim {
			return j, nil
		}
	}
	return nil, fmt.Errorf("%w: no completed claim to derive amounts for token %s", storage.ErrInvalidInput, tokenID)
}

// CycleResult summarizes one automation sweep.
type CycleResult struct {
	Enqueued int      `json:"enqueued"`
	Executed int      `json:"executed"`
	Failed   int      `json:"failed"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// RunCycle enqueues a CLAIM for every ACTIVE token, then drains the
// PENDING queue on the worker pool. One token's failure never aborts
// the cycle.
func (s *Scheduler) RunCycle(ctx context.Context, trigger domain.TriggerType) (*CycleResult, error) {
	tokens, err := s.tokens.GetByStatus(ctx, domain.TokenStatusActive)
	if err != nil {
		return nil, fmt.Errorf("load active tokens: %w", err)
	}

	result := &CycleResult{}
	for _, token := range tokens {
		_, err := s.EnqueueClaim(ctx, token.TokenID, trigger)
		switch {
		case err == nil:
			result.Enqueued++
		case errors.Is(err, storage.ErrJobConflict):
			// Work already in flight for this token
			result.Skipped++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: enqueue: %v", token.TokenID, err))
		}
	}

	if err := s.ExecutePending(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

// ExecutePending runs every PENDING job on the worker pool and waits for
// completion. Fan-out children enqueued by CLAIM jobs during this drain
// are picked up by draining repeatedly until the queue is empty.
func (s *Scheduler) ExecutePending(ctx context.Context, result *CycleResult) error {
	if result == nil {
		result = &CycleResult{}
	}
	for {
		pending, err := s.jobs.GetByStatus(ctx, domain.JobStatusPending, 0)
		if err != nil {
			return fmt.Errorf("load pending jobs: %w", err)
		}
		if len(pending) == 0 {
			return nil
		}

		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		for _, job := range pending {
			job := job
			wg.Add(1)
			err := s.pool.Submit(func() {
				defer wg.Done()
				execErr := s.Execute(ctx, job)

				mu.Lock()
				defer mu.Unlock()
				if execErr != nil {
					result.Failed++
					result.Errors = append(result.Errors, fmt.Sprintf("%s [%s]: %v", job.TokenID, job.JobType, execErr))
				} else {
					result.Executed++
				}
			})
			if err != nil {
				wg.Done()
				return fmt.Errorf("submit job to pool: %w", err)
			}
		}
		wg.Wait()
	}
}

// Execute runs a single job to a terminal state. Provider failures are
// persisted on the job as FAILED with the error message; the returned
// error mirrors what was persisted.
func (s *Scheduler) Execute(ctx context.Context, job *domain.AutomationJob) error {
	if err := s.jobs.MarkRunning(ctx, job.ID, s.now()); err != nil {
		// Someone else picked it up, or it was retried away
		return err
	}

	amounts, execErr := s.runJob(ctx, job)
	if execErr != nil {
		log.Warn().Err(execErr).
			Str("job_id", job.ID).
			Str("token_id", job.TokenID).
			Str("job_type", string(job.JobType)).
			Msg("automation job failed")
		if markErr := s.jobs.MarkFailed(ctx, job.ID, s.now(), execErr.Error()); markErr != nil {
			return fmt.Errorf("mark job failed: %w (original: %v)", markErr, execErr)
		}
		observability.RecordJobFailed(string(job.JobType))
		s.publish(stream.EventJobFailed, map[string]interface{}{
			"jobId":   job.ID,
			"tokenId": job.TokenID,
			"jobType": string(job.JobType),
			"error":   execErr.Error(),
		})
		return execErr
	}

	if err := s.jobs.MarkCompleted(ctx, job.ID, s.now(), amounts); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	observability.RecordJobCompleted(string(job.JobType), amounts.ClaimedLamports)
	s.publish(stream.EventJobCompleted, map[string]interface{}{
		"jobId":           job.ID,
		"tokenId":         job.TokenID,
		"jobType":         string(job.JobType),
		"claimedLamports": amounts.ClaimedLamports,
	})

	log.Info().
		Str("job_id", job.ID).
		Str("token_id", job.TokenID).
		Str("job_type", string(job.JobType)).
		Int64("claimed_lamports", amounts.ClaimedLamports).
		Msg("automation job completed")
	return nil
}

func (s *Scheduler) publish(eventType string, data interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventType, data)
}

// runJob dispatches on job type and returns the result amounts.
func (s *Scheduler) runJob(ctx context.Context, job *domain.AutomationJob) (domain.JobAmounts, error) {
	switch job.JobType {
	case domain.JobTypeClaim:
		return s.runClaim(ctx, job)
	case domain.JobTypeBurn:
		return s.runChild(ctx, job, func(lamports int64) (domain.JobAmounts, error) {
			burned, err := s.provider.Burn(ctx, job.TokenID, lamports)
			return domain.JobAmounts{BurnedTokens: burned}, err
		})
	case domain.JobTypeAddLiquidity:
		return s.runChild(ctx, job, func(lamports int64) (domain.JobAmounts, error) {
			lp, err := s.provider.AddLiquidity(ctx, job.TokenID, lamports)
			return domain.JobAmounts{LpTokensAdded: lp}, err
		})
	case domain.JobTypePayDividends:
		return s.runChild(ctx, job, func(lamports int64) (domain.JobAmounts, error) {
			paid, err := s.provider.PayDividends(ctx, job.TokenID, lamports)
			return domain.JobAmounts{DividendsPaid: paid}, err
		})
	default:
		return domain.JobAmounts{}, fmt.Errorf("%w: unknown job type %q", storage.ErrInvalidInput, job.JobType)
	}
}

// runClaim claims fees and fans out one child job per nonzero split
// category. Children reference the claim via ParentJobID and derive
// their amounts from the persisted claim result, so each is
// independently retryable.
func (s *Scheduler) runClaim(ctx context.Context, job *domain.AutomationJob) (domain.JobAmounts, error) {
	claimed, err := s.provider.ClaimFees(ctx, job.TokenID)
	if err != nil {
		return domain.JobAmounts{}, err
	}

	amounts := domain.JobAmounts{ClaimedLamports: claimed}
	if claimed == 0 {
		return amounts, nil
	}

	split, err := s.splitForToken(ctx, job.TokenID, claimed)
	if err != nil {
		return domain.JobAmounts{}, err
	}

	for _, child := range childJobTypes(split) {
		childJob := &domain.AutomationJob{
			ID:           uuid.NewString(),
			TokenID:      job.TokenID,
			JobType:      child,
			Status:       domain.JobStatusPending,
			TriggerType:  job.TriggerType,
			ParentJobID:  &job.ID,
			ScheduledFor: s.now(),
		}
		if err := s.jobs.Enqueue(ctx, childJob); err != nil {
			if errors.Is(err, storage.ErrJobConflict) {
				log.Warn().
					Str("token_id", job.TokenID).
					Str("job_type", string(child)).
					Msg("fan-out child skipped, job already in flight")
				continue
			}
			return domain.JobAmounts{}, fmt.Errorf("enqueue %s child: %w", child, err)
		}
	}

	return amounts, nil
}

// runChild resolves the child's lamport share from its parent CLAIM job
// and invokes the provider operation.
func (s *Scheduler) runChild(ctx context.Context, job *domain.AutomationJob, op func(int64) (domain.JobAmounts, error)) (domain.JobAmounts, error) {
	lamports, err := s.childShare(ctx, job)
	if err != nil {
		return domain.JobAmounts{}, err
	}
	if lamports == 0 {
		return domain.JobAmounts{}, nil
	}
	return op(lamports)
}

// childShare recomputes the split of the parent claim and returns this
// job type's lamport share.
func (s *Scheduler) childShare(ctx context.Context, job *domain.AutomationJob) (int64, error) {
	if job.ParentJobID == nil {
		return 0, fmt.Errorf("%w: %s job has no parent claim", storage.ErrInvalidInput, job.JobType)
	}
	parent, err := s.jobs.GetByID(ctx, *job.ParentJobID)
	if err != nil {
		return 0, fmt.Errorf("load parent claim: %w", err)
	}

	split, err := s.splitForToken(ctx, job.TokenID, parent.ClaimedLamports)
	if err != nil {
		return 0, err
	}

	switch job.JobType {
	case domain.JobTypeBurn:
		return split.BurnLamports, nil
	case domain.JobTypeAddLiquidity:
		return split.LpLamports, nil
	case domain.JobTypePayDividends:
		// Custom wallet payouts ride the dividend distribution.
		total := split.DividendsLamports
		for _, p := range split.CustomPayouts {
			total += p.Lamports
		}
		return total, nil
	default:
		return 0, fmt.Errorf("%w: %s is not a fan-out job type", storage.ErrInvalidInput, job.JobType)
	}
}

// splitForToken loads the token's tax config and splits the claimed
// amount. A token without a config keeps everything in treasury.
func (s *Scheduler) splitForToken(ctx context.Context, tokenID string, claimed int64) (*tax.SplitResult, error) {
	cfg, err := s.taxConfigs.GetByTokenID(ctx, tokenID)
	if errors.Is(err, storage.ErrNotFound) {
		return &tax.SplitResult{TreasuryLamports: claimed}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tax config: %w", err)
	}
	return tax.Split(claimed, *cfg)
}

// childJobTypes returns the fan-out job types with a nonzero share.
func childJobTypes(split *tax.SplitResult) []domain.JobType {
	var types []domain.JobType
	if split.BurnLamports > 0 {
		types = append(types, domain.JobTypeBurn)
	}
	if split.LpLamports > 0 {
		types = append(types, domain.JobTypeAddLiquidity)
	}
	dividends := split.DividendsLamports
	for _, p := range split.CustomPayouts {
		dividends += p.Lamports
	}
	if dividends > 0 {
		types = append(types, domain.JobTypePayDividends)
	}
	return types
}

// Retry resets a FAILED job to PENDING. Returns storage.ErrStateConflict
// for jobs in any other state and storage.ErrNotFound for unknown IDs.
func (s *Scheduler) Retry(ctx context.Context, jobID string) (*domain.AutomationJob, error) {
	if err := s.jobs.ResetForRetry(ctx, jobID); err != nil {
		return nil, err
	}
	return s.jobs.GetByID(ctx, jobID)
}
