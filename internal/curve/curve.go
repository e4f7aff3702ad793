// Package curve implements the deterministic bonding-curve pricing model
// and the trade simulator built on top of it.
//
// Chosen closed form (power law with a virtual-reserve offset):
//
//	v        = virtualTokenReserve + virtualSolReserve/initialPrice
//	price(s) = initialPrice * ((s + v) / v)^curveExponent
//
// price(0) equals initialPrice exactly, price is strictly increasing on
// [0, totalSupply), a higher exponent steepens the curve, and both virtual
// reserves enlarge the constant offset v, flattening the early curve.
package curve

import (
	"errors"
	"fmt"
	"math"

	"solana-launchpad/internal/domain"
)

// Pricing errors.
var (
	// ErrInvalidCurveParams is returned for out-of-contract curve parameters
	// or a supply outside [0, totalSupply).
	ErrInvalidCurveParams = errors.New("invalid curve parameters")

	// ErrInvalidAmount is returned for a non-positive trade amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientLiquidity is returned when a trade would push supply
	// beyond totalSupply or below zero. No partial fill is performed.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
)

// ValidateParams checks curve parameters against the pricing contract.
func ValidateParams(p domain.CurveParams) error {
	if !isFinite(p.InitialPrice) || p.InitialPrice <= 0 {
		return fmt.Errorf("%w: initial price must be > 0", ErrInvalidCurveParams)
	}
	if !isFinite(p.CurveExponent) || p.CurveExponent <= 0 {
		return fmt.Errorf("%w: curve exponent must be > 0", ErrInvalidCurveParams)
	}
	if !isFinite(p.VirtualSolReserve) || p.VirtualSolReserve < 0 {
		return fmt.Errorf("%w: virtual sol reserve must be >= 0", ErrInvalidCurveParams)
	}
	if !isFinite(p.VirtualTokenReserve) || p.VirtualTokenReserve < 0 {
		return fmt.Errorf("%w: virtual token reserve must be >= 0", ErrInvalidCurveParams)
	}
	if virtualOffset(p) <= 0 {
		return fmt.Errorf("%w: virtual reserves must not both be zero", ErrInvalidCurveParams)
	}
	return nil
}

// Price returns the spot price (SOL per token) at the given circulating supply.
// Supply must lie in [0, totalSupply).
func Price(supply, totalSupply float64, p domain.CurveParams) (float64, error) {
	if err := ValidateParams(p); err != nil {
		return 0, err
	}
	if !isFinite(supply) || supply < 0 || supply >= totalSupply {
		return 0, fmt.Errorf("%w: supply %v outside [0, %v)", ErrInvalidCurveParams, supply, totalSupply)
	}
	return priceAt(supply, p), nil
}

// MarketCap returns price(supply) * supply in SOL terms.
func MarketCap(supply, totalSupply float64, p domain.CurveParams) (float64, error) {
	price, err := Price(supply, totalSupply, p)
	if err != nil {
		return 0, err
	}
	return price * supply, nil
}

// MarketCapUSD converts MarketCap through an externally supplied SOL/USD rate.
func MarketCapUSD(supply, totalSupply float64, p domain.CurveParams, solUSD float64) (float64, error) {
	mc, err := MarketCap(supply, totalSupply, p)
	if err != nil {
		return 0, err
	}
	if !isFinite(solUSD) || solUSD <= 0 {
		return 0, fmt.Errorf("%w: sol/usd rate must be > 0", ErrInvalidCurveParams)
	}
	return mc * solUSD, nil
}

// virtualOffset is the constant supply offset v derived from both reserves.
func virtualOffset(p domain.CurveParams) float64 {
	return p.VirtualTokenReserve + p.VirtualSolReserve/p.InitialPrice
}

// priceAt evaluates the curve without re-validating parameters.
func priceAt(supply float64, p domain.CurveParams) float64 {
	v := virtualOffset(p)
	return p.InitialPrice * math.Pow((supply+v)/v, p.CurveExponent)
}

// costBetween integrates price over [s0, s1] (s0 <= s1), returning the SOL
// required to move supply from s0 to s1.
func costBetween(s0, s1 float64, p domain.CurveParams) float64 {
	v := virtualOffset(p)
	e1 := p.CurveExponent + 1
	r0 := (s0 + v) / v
	r1 := (s1 + v) / v
	return p.InitialPrice * v / e1 * (math.Pow(r1, e1) - math.Pow(r0, e1))
}

// supplyAfterSol inverts the integral: the supply reached by spending
// solIn SOL starting from s0.
func supplyAfterSol(s0, solIn float64, p domain.CurveParams) float64 {
	v := virtualOffset(p)
	e1 := p.CurveExponent + 1
	r0 := (s0 + v) / v
	r1 := math.Pow(math.Pow(r0, e1)+solIn*e1/(p.InitialPrice*v), 1/e1)
	return r1*v - v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
