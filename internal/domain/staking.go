package domain

// Staker is a wallet's staking position in the platform token.
// Corresponds to the stakers table. PendingRewards accrues continuously
// and resets to zero on claim; Tier is derived from the weighted stake.
type Staker struct {
	Wallet           string // PRIMARY KEY
	StakedAmount     float64
	LockDurationDays int
	LockEndTime      int64 // Unix timestamp in milliseconds
	PendingRewards   float64
	Tier             string // derived, see internal/staking
	CreatedAt        int64
	UpdatedAt        int64
}
