package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"solana-launchpad/internal/domain"
)

// WalletPayout is one custom wallet's share of a claimed fee amount.
type WalletPayout struct {
	Address  string
	Label    string
	Lamports int64
}

// SplitResult is a claimed fee amount divided per the tax configuration.
// Lamport shares are floored; the rounding remainder stays in Treasury
// together with the untaxed portion.
type SplitResult struct {
	BurnLamports      int64
	LpLamports        int64
	DividendsLamports int64
	CustomPayouts     []WalletPayout
	TreasuryLamports  int64
}

// Split divides claimedLamports according to the normalized, validated
// config. Decimal arithmetic keeps the split exact at lamport granularity.
func Split(claimedLamports int64, cfg domain.TaxConfig) (*SplitResult, error) {
	if claimedLamports < 0 {
		return nil, fmt.Errorf("%w: claimed amount must not be negative", ErrInvalidConfig)
	}
	norm := Normalize(cfg)
	if err := Validate(norm); err != nil {
		return nil, err
	}

	claimed := decimal.NewFromInt(claimedLamports)

	res := &SplitResult{
		BurnLamports:      share(claimed, norm.BurnPercent),
		LpLamports:        share(claimed, norm.LpPercent),
		DividendsLamports: share(claimed, norm.DividendsPercent),
	}

	distributed := res.BurnLamports + res.LpLamports + res.DividendsLamports
	for _, w := range norm.CustomWallets {
		payout := WalletPayout{
			Address:  w.Address,
			Label:    w.Label,
			Lamports: share(claimed, w.Percent),
		}
		res.CustomPayouts = append(res.CustomPayouts, payout)
		distributed += payout.Lamports
	}

	res.TreasuryLamports = claimedLamports - distributed
	return res, nil
}

// share computes amount * percent / 100, floored to whole lamports.
func share(amount decimal.Decimal, percent float64) int64 {
	if percent == 0 {
		return 0
	}
	return amount.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)).Floor().IntPart()
}
