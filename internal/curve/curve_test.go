package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-launchpad/internal/domain"
)

func testParams() domain.CurveParams {
	return domain.CurveParams{
		InitialPrice:           0.00001,
		CurveExponent:          2,
		VirtualSolReserve:      30,
		VirtualTokenReserve:    1e9,
		GraduationThresholdUSD: 69000,
	}
}

const testTotalSupply = 1e9

func TestPrice_AtZeroSupply(t *testing.T) {
	price, err := Price(0, testTotalSupply, testParams())
	require.NoError(t, err)
	assert.Equal(t, testParams().InitialPrice, price)
}

func TestPrice_StrictlyIncreasing(t *testing.T) {
	p := testParams()

	prev := 0.0
	for s := 0.0; s < testTotalSupply; s += testTotalSupply / 200 {
		price, err := Price(s, testTotalSupply, p)
		require.NoError(t, err)
		require.Greater(t, price, prev, "price must strictly increase at supply %v", s)
		require.False(t, math.IsNaN(price) || math.IsInf(price, 0))
		prev = price
	}
}

func TestPrice_ExponentSteepensCurve(t *testing.T) {
	flat := testParams()
	flat.CurveExponent = 1
	steep := testParams()
	steep.CurveExponent = 3

	s := testTotalSupply / 2
	pFlat, err := Price(s, testTotalSupply, flat)
	require.NoError(t, err)
	pSteep, err := Price(s, testTotalSupply, steep)
	require.NoError(t, err)

	assert.Greater(t, pSteep, pFlat)
}

func TestPrice_VirtualReservesDampen(t *testing.T) {
	small := testParams()
	small.VirtualTokenReserve = 1e8
	large := testParams()
	large.VirtualTokenReserve = 1e10

	s := testTotalSupply / 10
	pSmall, err := Price(s, testTotalSupply, small)
	require.NoError(t, err)
	pLarge, err := Price(s, testTotalSupply, large)
	require.NoError(t, err)

	// A larger virtual reserve flattens the early curve.
	assert.Less(t, pLarge, pSmall)
}

func TestPrice_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CurveParams)
		supply float64
	}{
		{"zero exponent", func(p *domain.CurveParams) { p.CurveExponent = 0 }, 0},
		{"negative exponent", func(p *domain.CurveParams) { p.CurveExponent = -1 }, 0},
		{"negative sol reserve", func(p *domain.CurveParams) { p.VirtualSolReserve = -1 }, 0},
		{"negative token reserve", func(p *domain.CurveParams) { p.VirtualTokenReserve = -1 }, 0},
		{"zero initial price", func(p *domain.CurveParams) { p.InitialPrice = 0 }, 0},
		{"both reserves zero", func(p *domain.CurveParams) { p.VirtualSolReserve = 0; p.VirtualTokenReserve = 0 }, 0},
		{"negative supply", func(p *domain.CurveParams) {}, -1},
		{"supply at total", func(p *domain.CurveParams) {}, testTotalSupply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			_, err := Price(tt.supply, testTotalSupply, p)
			assert.ErrorIs(t, err, ErrInvalidCurveParams)
		})
	}
}

func TestMarketCap_EqualsPriceTimesSupply(t *testing.T) {
	p := testParams()

	for _, s := range []float64{0, 1e6, 1e8, 5e8, testTotalSupply - 1} {
		price, err := Price(s, testTotalSupply, p)
		require.NoError(t, err)
		mc, err := MarketCap(s, testTotalSupply, p)
		require.NoError(t, err)
		if s == 0 {
			assert.Zero(t, mc)
		} else {
			assert.InEpsilon(t, price*s, mc, 1e-12, "supply %v", s)
		}
	}
}

func TestMarketCapUSD(t *testing.T) {
	p := testParams()

	mc, err := MarketCap(5e8, testTotalSupply, p)
	require.NoError(t, err)
	mcUSD, err := MarketCapUSD(5e8, testTotalSupply, p, 150)
	require.NoError(t, err)
	assert.InEpsilon(t, mc*150, mcUSD, 1e-12)

	_, err = MarketCapUSD(5e8, testTotalSupply, p, 0)
	assert.ErrorIs(t, err, ErrInvalidCurveParams)
}

func TestCostBetween_MatchesInverse(t *testing.T) {
	p := testParams()

	s0 := 2e8
	sol := 5.0
	s1 := supplyAfterSol(s0, sol, p)
	require.Greater(t, s1, s0)

	// Integrating back over the same interval must return the SOL spent.
	assert.InEpsilon(t, sol, costBetween(s0, s1, p), 1e-9)
}
