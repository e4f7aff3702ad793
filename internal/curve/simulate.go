package curve

import (
	"fmt"

	"solana-launchpad/internal/domain"
)

// Quote is the result of simulating a hypothetical trade against the curve.
type Quote struct {
	Side               domain.TradeSide `json:"side"`
	ExecutionPrice     float64          `json:"executionPrice"`     // average fill price, SOL per token
	TokensOut          float64          `json:"tokensOut"`          // BUY only
	SolOut             float64          `json:"solOut"`             // SELL only
	PlatformFee        float64          `json:"platformFee"`        // SOL
	PriceImpactPercent float64          `json:"priceImpactPercent"` // absolute magnitude
}

// Simulate computes execution price, fee and price impact for a hypothetical
// trade without mutating any state.
//
// For BUY, amount is SOL in: the fee is deducted first, the remainder is
// converted through the curve integral. For SELL, amount is tokens in:
// tokens convert to gross SOL first, then the fee is deducted.
func Simulate(side domain.TradeSide, amount, supply, totalSupply float64, p domain.CurveParams, feeBps int) (*Quote, error) {
	spot, err := Price(supply, totalSupply, p)
	if err != nil {
		return nil, err
	}
	if !isFinite(amount) || amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be > 0", ErrInvalidAmount)
	}
	if feeBps < 0 || feeBps > 10000 {
		return nil, fmt.Errorf("%w: fee bps %d outside [0, 10000]", ErrInvalidAmount, feeBps)
	}

	switch side {
	case domain.TradeSideBuy:
		return simulateBuy(amount, supply, totalSupply, p, feeBps, spot)
	case domain.TradeSideSell:
		return simulateSell(amount, supply, p, feeBps, spot)
	default:
		return nil, fmt.Errorf("%w: unknown trade side %q", ErrInvalidAmount, side)
	}
}

func simulateBuy(solIn, supply, totalSupply float64, p domain.CurveParams, feeBps int, spot float64) (*Quote, error) {
	fee := solIn * float64(feeBps) / 10000
	net := solIn - fee

	newSupply := supplyAfterSol(supply, net, p)
	if newSupply > totalSupply {
		return nil, fmt.Errorf("%w: buy of %v SOL exceeds remaining curve supply", ErrInsufficientLiquidity, solIn)
	}

	tokensOut := newSupply - supply
	// Round-off in the supply inversion can leave nothing to fill when
	// the net amount is tiny, or zero at a 100% fee. Reject instead of
	// quoting negative tokens or a NaN price.
	if tokensOut <= 0 {
		return nil, fmt.Errorf("%w: %v SOL is too small to fill after fees", ErrInvalidAmount, solIn)
	}
	exec := net / tokensOut
	impact := (exec - spot) / spot * 100

	return &Quote{
		Side:               domain.TradeSideBuy,
		ExecutionPrice:     exec,
		TokensOut:          tokensOut,
		PlatformFee:        fee,
		PriceImpactPercent: impact,
	}, nil
}

func simulateSell(tokensIn, supply float64, p domain.CurveParams, feeBps int, spot float64) (*Quote, error) {
	newSupply := supply - tokensIn
	if newSupply < 0 {
		return nil, fmt.Errorf("%w: sell of %v tokens exceeds circulating supply", ErrInsufficientLiquidity, tokensIn)
	}

	gross := costBetween(newSupply, supply, p)
	fee := gross * float64(feeBps) / 10000
	exec := gross / tokensIn

	// Price falls on a sell; impact is reported as a magnitude.
	impact := (spot - exec) / spot * 100
	if impact < 0 {
		impact = -impact
	}

	return &Quote{
		Side:               domain.TradeSideSell,
		ExecutionPrice:     exec,
		SolOut:             gross - fee,
		PlatformFee:        fee,
		PriceImpactPercent: impact,
	}, nil
}
