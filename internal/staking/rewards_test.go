package staking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFeeSchedule(t *testing.T) {
	assert.Equal(t, 500, TierNone.PlatformFeeBps())
	assert.Equal(t, 400, TierHolder.PlatformFeeBps())
	assert.Equal(t, 200, TierPremium.PlatformFeeBps())
	assert.Equal(t, 0, TierVIP.PlatformFeeBps())
}

func TestEffectiveFee(t *testing.T) {
	base := 5.0 // percent

	assert.Equal(t, 5.0, EffectiveFee(base, TierNone))
	assert.InEpsilon(t, 4.0, EffectiveFee(base, TierHolder), 1e-12)
	assert.InEpsilon(t, 2.0, EffectiveFee(base, TierPremium), 1e-12)
	assert.Zero(t, EffectiveFee(base, TierVIP))

	// Bps form matches the discount schedule from the fee table.
	assert.Equal(t, 400, EffectiveFeeBps(500, TierHolder))
	assert.Equal(t, 200, EffectiveFeeBps(500, TierPremium))
	assert.Equal(t, 0, EffectiveFeeBps(500, TierVIP))
}

func TestProjectedRewards_LinearScaling(t *testing.T) {
	proj := ProjectedRewards(10_000, 0.001, TierNone)

	assert.InEpsilon(t, 10.0, proj.Daily, 1e-12)
	assert.InEpsilon(t, 70.0, proj.Weekly, 1e-12)
	assert.InEpsilon(t, 300.0, proj.Monthly, 1e-12)
	assert.InEpsilon(t, 3650.0, proj.Yearly, 1e-12)
}

func TestProjectedRewards_TierBoost(t *testing.T) {
	base := ProjectedRewards(10_000, 0.001, TierNone)
	vip := ProjectedRewards(10_000, 0.001, TierVIP)

	assert.InEpsilon(t, base.Daily*1.5, vip.Daily, 1e-12)
	assert.InEpsilon(t, base.Yearly*1.5, vip.Yearly, 1e-12)
}

func TestAccruedRewards(t *testing.T) {
	const dayMs = 24 * 60 * 60 * 1000

	// One full day equals the daily projection
	assert.InEpsilon(t, 10.0, AccruedRewards(10_000, 0.001, TierNone, dayMs), 1e-12)

	// Half a day accrues half
	assert.InEpsilon(t, 5.0, AccruedRewards(10_000, 0.001, TierNone, dayMs/2), 1e-12)

	// Tier multiplier applies
	assert.InEpsilon(t, 15.0, AccruedRewards(10_000, 0.001, TierVIP, dayMs), 1e-12)

	// Clock skew never produces negative accrual
	assert.Zero(t, AccruedRewards(10_000, 0.001, TierNone, -dayMs))
	assert.Zero(t, AccruedRewards(10_000, 0.001, TierNone, 0))
}
