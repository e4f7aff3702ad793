// Package tax validates token fee-split configurations against platform
// limits and splits claimed fee amounts according to them.
package tax

import (
	"errors"
	"fmt"

	"solana-launchpad/internal/domain"
)

// Platform limits for tax configurations.
const (
	MaxCategoryPercent     = 10.0 // each of burn / lp / dividends
	MaxCustomWalletPercent = 5.0  // each custom wallet
	MaxCustomWallets       = 5
	MaxTotalPercent        = 25.0 // aggregate across all categories
)

// ErrInvalidConfig is the sentinel wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid tax config")

// Normalize returns a copy of cfg with the percent of every disabled
// category forced to zero, so a nonzero percent cannot be smuggled past a
// disabled flag. Validation always runs on the normalized form.
func Normalize(cfg domain.TaxConfig) domain.TaxConfig {
	out := cfg
	if !out.BurnEnabled {
		out.BurnPercent = 0
	}
	if !out.LpEnabled {
		out.LpPercent = 0
	}
	if !out.DividendsEnabled {
		out.DividendsPercent = 0
	}
	return out
}

// TotalTax returns the aggregate percentage across all categories and
// custom wallets of the (already normalized) config.
func TotalTax(cfg domain.TaxConfig) float64 {
	total := cfg.BurnPercent + cfg.LpPercent + cfg.DividendsPercent
	for _, w := range cfg.CustomWallets {
		total += w.Percent
	}
	return total
}

// Validate applies the platform invariants in order: per-category cap,
// per-custom-wallet cap, custom-wallet count cap, aggregate cap. The first
// violated rule's message is returned. Callers should Normalize first.
func Validate(cfg domain.TaxConfig) error {
	if cfg.BurnPercent < 0 || cfg.LpPercent < 0 || cfg.DividendsPercent < 0 {
		return fmt.Errorf("%w: tax percentages must not be negative", ErrInvalidConfig)
	}
	if cfg.BurnPercent > MaxCategoryPercent {
		return fmt.Errorf("%w: burn tax exceeds %.0f%%", ErrInvalidConfig, MaxCategoryPercent)
	}
	if cfg.LpPercent > MaxCategoryPercent {
		return fmt.Errorf("%w: lp tax exceeds %.0f%%", ErrInvalidConfig, MaxCategoryPercent)
	}
	if cfg.DividendsPercent > MaxCategoryPercent {
		return fmt.Errorf("%w: dividends tax exceeds %.0f%%", ErrInvalidConfig, MaxCategoryPercent)
	}

	for _, w := range cfg.CustomWallets {
		if w.Percent < 0 {
			return fmt.Errorf("%w: custom wallet %s has a negative percent", ErrInvalidConfig, w.Address)
		}
		if w.Percent > MaxCustomWalletPercent {
			return fmt.Errorf("%w: custom wallet %s exceeds %.0f%%", ErrInvalidConfig, w.Address, MaxCustomWalletPercent)
		}
	}

	if len(cfg.CustomWallets) > MaxCustomWallets {
		return fmt.Errorf("%w: at most %d custom wallets allowed", ErrInvalidConfig, MaxCustomWallets)
	}

	if TotalTax(cfg) > MaxTotalPercent {
		return fmt.Errorf("%w: total tax exceeds %.0f%%", ErrInvalidConfig, MaxTotalPercent)
	}

	return nil
}
