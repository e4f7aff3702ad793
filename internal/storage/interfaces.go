package storage

import (
	"context"

	"solana-launchpad/internal/domain"
)

// TokenStore provides access to tokens storage.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if token_id or mint exists.
	Insert(ctx context.Context, t *domain.Token) error

	// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tokenID string) (*domain.Token, error)

	// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.Token, error)

	// GetByStatus retrieves all tokens with the given status, newest first.
	GetByStatus(ctx context.Context, status domain.TokenStatus) ([]*domain.Token, error)

	// GetByCreator retrieves all tokens launched by a creator wallet, newest first.
	GetByCreator(ctx context.Context, wallet string) ([]*domain.Token, error)

	// GetAll retrieves all tokens, newest first.
	GetAll(ctx context.Context) ([]*domain.Token, error)

	// GetNewest retrieves the most recently launched tokens, newest first.
	GetNewest(ctx context.Context, limit int) ([]*domain.Token, error)

	// UpdateStatusIf atomically sets status to "to" only if the current
	// status equals "from". Returns true if the row was updated.
	UpdateStatusIf(ctx context.Context, tokenID string, from, to domain.TokenStatus) (bool, error)

	// UpdateMarketSnapshot updates the circulating supply, accumulated
	// volume and market-cap snapshot of a token.
	UpdateMarketSnapshot(ctx context.Context, tokenID string, circulatingSupply, volumeSOL, marketCapUSD float64) error
}

// TaxConfigStore provides access to tax_configs storage (1:1 with tokens).
type TaxConfigStore interface {
	// Insert adds a tax config. Returns ErrDuplicateKey if token_id exists.
	Insert(ctx context.Context, cfg *domain.TaxConfig) error

	// GetByTokenID retrieves the config for a token. Returns ErrNotFound if not exists.
	GetByTokenID(ctx context.Context, tokenID string) (*domain.TaxConfig, error)
}

// StakerStore provides access to stakers storage.
type StakerStore interface {
	// Insert adds a new staker. Returns ErrDuplicateKey if wallet exists.
	Insert(ctx context.Context, s *domain.Staker) error

	// GetByWallet retrieves a staker. Returns ErrNotFound if not exists.
	GetByWallet(ctx context.Context, wallet string) (*domain.Staker, error)

	// Update overwrites an existing staker. Returns ErrNotFound if not exists.
	Update(ctx context.Context, s *domain.Staker) error

	// GetAll retrieves all stakers.
	GetAll(ctx context.Context) ([]*domain.Staker, error)
}

// JobStore provides access to the automation_jobs log. The job log is the
// single source of truth for in-flight work; Enqueue must be atomic with
// respect to the non-terminal-job check.
type JobStore interface {
	// Enqueue inserts a PENDING job unless a PENDING or RUNNING job
	// already exists for the same (token_id, job_type). Returns
	// ErrJobConflict in that case.
	Enqueue(ctx context.Context, job *domain.AutomationJob) error

	// GetByID retrieves a job. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.AutomationJob, error)

	// GetByStatus retrieves up to limit jobs with the given status,
	// most recently scheduled first. limit <= 0 means no limit.
	GetByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]*domain.AutomationJob, error)

	// MarkRunning transitions PENDING → RUNNING. Returns ErrStateConflict
	// if the job is not PENDING.
	MarkRunning(ctx context.Context, id string, startedAt int64) error

	// MarkCompleted transitions RUNNING → COMPLETED and records amounts.
	// Returns ErrStateConflict if the job is not RUNNING.
	MarkCompleted(ctx context.Context, id string, completedAt int64, amounts domain.JobAmounts) error

	// MarkFailed transitions RUNNING → FAILED, records the error message
	// and increments retry_count. Returns ErrStateConflict if the job is
	// not RUNNING.
	MarkFailed(ctx context.Context, id string, completedAt int64, errMsg string) error

	// ResetForRetry transitions FAILED → PENDING and clears the error
	// message. Returns ErrStateConflict if the job is not FAILED.
	ResetForRetry(ctx context.Context, id string) error

	// CountByStatus returns job counts keyed by status.
	CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error)

	// SumAmounts returns totals of the recorded result amounts across
	// all COMPLETED jobs.
	SumAmounts(ctx context.Context) (domain.JobAmounts, error)
}

// TradeEventStore provides access to the append-only trade_events
// analytics storage.
type TradeEventStore interface {
	// Insert adds a single trade event.
	Insert(ctx context.Context, e *domain.TradeEvent) error

	// InsertBulk adds multiple trade events.
	InsertBulk(ctx context.Context, events []*domain.TradeEvent) error

	// GetByTokenID retrieves all events for a token, ordered by timestamp ASC.
	GetByTokenID(ctx context.Context, tokenID string) ([]*domain.TradeEvent, error)

	// VolumeSince returns the total SOL volume for a token since the
	// given timestamp (ms).
	VolumeSince(ctx context.Context, tokenID string, since int64) (float64, error)

	// TopByVolume returns tokens ranked by SOL volume since the given
	// timestamp (ms), highest first.
	TopByVolume(ctx context.Context, since int64, limit int) ([]*domain.TrendingToken, error)
}
