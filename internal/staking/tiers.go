// Package staking classifies stakers into platform tiers and computes
// lock-weighted stakes, fee discounts and reward projections. Everything
// here is pure; the staking ledger itself is owned by the caller.
package staking

import (
	"errors"
	"fmt"
)

// Tier is a staker's platform tier.
type Tier string

const (
	TierNone    Tier = "NONE"
	TierHolder  Tier = "HOLDER"
	TierPremium Tier = "PREMIUM"
	TierVIP     Tier = "VIP"
)

// Lock duration bounds in days.
const (
	MinLockDays = 7
	MaxLockDays = 365
)

// Lock errors.
var (
	ErrLockTooShort = errors.New("lock duration below minimum")
	ErrLockTooLong  = errors.New("lock duration above maximum")
)

// lockTier maps a lock duration to its stake multiplier. The table is a
// monotonically increasing step function; an unrecognized duration falls
// back to the nearest lower tier, never upward.
type lockTier struct {
	Days       int
	Multiplier float64
}

// lockTiers must stay sorted by Days ascending.
var lockTiers = []lockTier{
	{7, 1.0},
	{14, 1.1},
	{30, 1.25},
	{60, 1.5},
	{90, 1.75},
	{180, 2.25},
	{365, 3.0},
}

// Config holds the tier thresholds and fee/reward parameters.
// Thresholds are in whole platform tokens.
type Config struct {
	HolderThreshold  float64
	PremiumThreshold float64
	VIPThreshold     float64
	BaseFeeBps       int     // platform fee before discounts
	DailyRewardRate  float64 // rewards per weighted token per day
}

// DefaultConfig returns the platform defaults.
func DefaultConfig() Config {
	return Config{
		HolderThreshold:  1_000,
		PremiumThreshold: 10_000,
		VIPThreshold:     100_000,
		BaseFeeBps:       500,
		DailyRewardRate:  0.0005,
	}
}

// Classify maps a (raw or weighted) stake amount to a tier via the
// ordered thresholds.
func (c Config) Classify(amount float64) Tier {
	switch {
	case amount >= c.VIPThreshold:
		return TierVIP
	case amount >= c.PremiumThreshold:
		return TierPremium
	case amount >= c.HolderThreshold:
		return TierHolder
	default:
		return TierNone
	}
}

// LockMultiplier returns the stake multiplier for a lock duration,
// falling back to the nearest lower defined tier.
func LockMultiplier(lockDays int) float64 {
	mult := lockTiers[0].Multiplier
	for _, lt := range lockTiers {
		if lockDays >= lt.Days {
			mult = lt.Multiplier
		}
	}
	return mult
}

// WeightedStake scales a staked amount by its lock-duration multiplier.
// Longer locks can promote a smaller raw balance into a higher tier.
func WeightedStake(amount float64, lockDays int) float64 {
	return amount * LockMultiplier(lockDays)
}

// TierForStake classifies from the weighted stake, not the raw amount.
func (c Config) TierForStake(amount float64, lockDays int) Tier {
	return c.Classify(WeightedStake(amount, lockDays))
}

// ValidateLockDuration enforces the 7–365 day lock window.
func ValidateLockDuration(lockDays int) error {
	if lockDays < MinLockDays {
		return fmt.Errorf("%w: %d days, minimum %d", ErrLockTooShort, lockDays, MinLockDays)
	}
	if lockDays > MaxLockDays {
		return fmt.Errorf("%w: %d days, maximum %d", ErrLockTooLong, lockDays, MaxLockDays)
	}
	return nil
}
