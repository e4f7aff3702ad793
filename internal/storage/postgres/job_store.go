package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// JobStore implements storage.JobStore using PostgreSQL.
//
// The at-most-one non-terminal job per (token_id, job_type) invariant is
// enforced by a partial unique index, so Enqueue stays atomic under
// concurrent writers without an explicit transaction.
type JobStore struct {
	pool *Pool
}

// NewJobStore creates a new JobStore.
func NewJobStore(pool *Pool) *JobStore {
	return &JobStore{pool: pool}
}

// Compile-time interface check.
var _ storage.JobStore = (*JobStore)(nil)

const jobColumns = `
	id, token_id, job_type, status, trigger_type, parent_job_id,
	retry_count, error_message, scheduled_for, started_at, completed_at,
	claimed_lamports, burned_tokens, lp_tokens_added, dividends_paid
`

// Enqueue inserts a PENDING job unless a PENDING or RUNNING job already
// exists for the same (token_id, job_type). Returns ErrJobConflict in
// that case.
func (s *JobStore) Enqueue(ctx context.Context, job *domain.AutomationJob) error {
	query := `
		INSERT INTO automation_jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.pool.Exec(ctx, query,
		job.ID,
		job.TokenID,
		string(job.JobType),
		string(domain.JobStatusPending),
		string(job.TriggerType),
		job.ParentJobID,
		job.RetryCount,
		job.ErrorMessage,
		job.ScheduledFor,
		job.StartedAt,
		job.CompletedAt,
		job.ClaimedLamports,
		job.BurnedTokens,
		job.LpTokensAdded,
		job.DividendsPaid,
	)
	if err != nil {
		if isActiveJobConflict(err) {
			return storage.ErrJobConflict
		}
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

// GetByID retrieves a job. Returns ErrNotFound if not exists.
func (s *JobStore) GetByID(ctx context.Context, id string) (*domain.AutomationJob, error) {
	query := `SELECT ` + jobColumns + ` FROM automation_jobs WHERE id = $1`

	job, err := scanJob(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get job by id: %w", err)
	}
	return job, nil
}

// GetByStatus retrieves up to limit jobs with the given status, most
// recently scheduled first. limit <= 0 means no limit.
func (s *JobStore) GetByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]*domain.AutomationJob, error) {
	query := `SELECT ` + jobColumns + ` FROM automation_jobs WHERE status = $1 ORDER BY scheduled_for DESC, id ASC`
	args := []any{string(status)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get jobs by status: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.AutomationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job rows: %w", err)
	}

	return jobs, nil
}

// MarkRunning transitions PENDING → RUNNING. Returns ErrStateConflict
// if the job is not PENDING.
func (s *JobStore) MarkRunning(ctx context.Context, id string, startedAt int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE automation_jobs SET status = $1, started_at = $2 WHERE id = $3 AND status = $4`,
		string(domain.JobStatusRunning), startedAt, id, string(domain.JobStatusPending),
	)
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	return s.transitionResult(ctx, tag.RowsAffected(), id)
}

// MarkCompleted transitions RUNNING → COMPLETED and records amounts.
// Returns ErrStateConflict if the job is not RUNNING.
func (s *JobStore) MarkCompleted(ctx context.Context, id string, completedAt int64, amounts domain.JobAmounts) error {
	query := `
		UPDATE automation_jobs
		SET status = $1, completed_at = $2, error_message = NULL,
		    claimed_lamports = $3, burned_tokens = $4, lp_tokens_added = $5, dividends_paid = $6
		WHERE id = $7 AND status = $8
	`

	tag, err := s.pool.Exec(ctx, query,
		string(domain.JobStatusCompleted), completedAt,
		amounts.ClaimedLamports, amounts.BurnedTokens, amounts.LpTokensAdded, amounts.DividendsPaid,
		id, string(domain.JobStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	return s.transitionResult(ctx, tag.RowsAffected(), id)
}

// MarkFailed transitions RUNNING → FAILED, records the error message and
// increments retry_count. Returns ErrStateConflict if the job is not RUNNING.
func (s *JobStore) MarkFailed(ctx context.Context, id string, completedAt int64, errMsg string) error {
	query := `
		UPDATE automation_jobs
		SET status = $1, completed_at = $2, error_message = $3, retry_count = retry_count + 1
		WHERE id = $4 AND status = $5
	`

	tag, err := s.pool.Exec(ctx, query,
		string(domain.JobStatusFailed), completedAt, errMsg,
		id, string(domain.JobStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return s.transitionResult(ctx, tag.RowsAffected(), id)
}

// ResetForRetry transitions FAILED → PENDING and clears the error message.
// Returns ErrStateConflict if the job is not FAILED.
func (s *JobStore) ResetForRetry(ctx context.Context, id string) error {
	query := `
		UPDATE automation_jobs
		SET status = $1, error_message = NULL, started_at = NULL, completed_at = NULL
		WHERE id = $2 AND status = $3
	`

	tag, err := s.pool.Exec(ctx, query,
		string(domain.JobStatusPending), id, string(domain.JobStatusFailed),
	)
	if err != nil {
		return fmt.Errorf("reset job for retry: %w", err)
	}
	return s.transitionResult(ctx, tag.RowsAffected(), id)
}

// CountByStatus returns job counts keyed by status.
func (s *JobStore) CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM automation_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.JobStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan job count row: %w", err)
		}
		counts[domain.JobStatus(status)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job count rows: %w", err)
	}

	return counts, nil
}

// SumAmounts returns totals of the recorded result amounts across all
// COMPLETED jobs.
func (s *JobStore) SumAmounts(ctx context.Context) (domain.JobAmounts, error) {
	query := `
		SELECT COALESCE(SUM(claimed_lamports), 0),
		       COALESCE(SUM(burned_tokens), 0),
		       COALESCE(SUM(lp_tokens_added), 0),
		       COALESCE(SUM(dividends_paid), 0)
		FROM automation_jobs
		WHERE status = $1
	`

	var totals domain.JobAmounts
	err := s.pool.QueryRow(ctx, query, string(domain.JobStatusCompleted)).Scan(
		&totals.ClaimedLamports,
		&totals.BurnedTokens,
		&totals.LpTokensAdded,
		&totals.DividendsPaid,
	)
	if err != nil {
		return domain.JobAmounts{}, fmt.Errorf("sum job amounts: %w", err)
	}
	return totals, nil
}

// transitionResult maps a zero-row guarded UPDATE to ErrNotFound or
// ErrStateConflict.
func (s *JobStore) transitionResult(ctx context.Context, rowsAffected int64, id string) error {
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM automation_jobs WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check job exists: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrStateConflict
}

// scanJob scans a single row into an AutomationJob.
func scanJob(row pgx.Row) (*domain.AutomationJob, error) {
	var job domain.AutomationJob
	var jobType, status, trigger string

	err := row.Scan(
		&job.ID,
		&job.TokenID,
		&jobType,
		&status,
		&trigger,
		&job.ParentJobID,
		&job.RetryCount,
		&job.ErrorMessage,
		&job.ScheduledFor,
		&job.StartedAt,
		&job.CompletedAt,
		&job.ClaimedLamports,
		&job.BurnedTokens,
		&job.LpTokensAdded,
		&job.DividendsPaid,
	)
	if err != nil {
		return nil, err
	}

	job.JobType = domain.JobType(jobType)
	job.Status = domain.JobStatus(status)
	job.TriggerType = domain.TriggerType(trigger)
	return &job, nil
}
