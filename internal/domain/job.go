package domain

// JobType identifies the unit of automation work.
type JobType string

const (
	JobTypeClaim        JobType = "CLAIM"
	JobTypeBurn         JobType = "BURN"
	JobTypeAddLiquidity JobType = "ADD_LIQUIDITY"
	JobTypePayDividends JobType = "PAY_DIVIDENDS"
)

// ValidJobType reports whether s names a known job type.
func ValidJobType(s string) bool {
	switch JobType(s) {
	case JobTypeClaim, JobTypeBurn, JobTypeAddLiquidity, JobTypePayDividends:
		return true
	default:
		return false
	}
}

// JobStatus is the lifecycle state of an automation job.
// PENDING → RUNNING → {COMPLETED | FAILED}. FAILED returns to PENDING
// only through an explicit retry, never automatically.
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// Terminal reports whether the status is a terminal state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// TriggerType records how a job was enqueued.
type TriggerType string

const (
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerManual    TriggerType = "MANUAL"
)

// JobAmounts are the result amounts recorded when a job completes.
type JobAmounts struct {
	ClaimedLamports int64
	BurnedTokens    int64
	LpTokensAdded   int64
	DividendsPaid   int64
}

// AutomationJob is a persisted unit of scheduled fee-automation work.
// Corresponds to the automation_jobs table. The job record is the single
// source of truth for "is work already in flight for this token+jobType".
type AutomationJob struct {
	ID           string // UUID
	TokenID      string
	JobType      JobType
	Status       JobStatus
	TriggerType  TriggerType
	ParentJobID  *string // set on fan-out children of a CLAIM job
	RetryCount   int
	ErrorMessage *string

	ScheduledFor int64  // Unix timestamp in milliseconds
	StartedAt    *int64 // nil until RUNNING
	CompletedAt  *int64 // nil until terminal

	JobAmounts // recorded on completion
}
