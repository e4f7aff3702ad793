package staking

// Tier platform fees in basis points: 5% / 4% / 2% / 0%.
func (t Tier) PlatformFeeBps() int {
	switch t {
	case TierHolder:
		return 400
	case TierPremium:
		return 200
	case TierVIP:
		return 0
	default:
		return 500
	}
}

// DiscountPercent is the trading-fee discount granted by the tier.
func (t Tier) DiscountPercent() float64 {
	switch t {
	case TierHolder:
		return 20
	case TierPremium:
		return 60
	case TierVIP:
		return 100
	default:
		return 0
	}
}

// RewardMultiplier scales reward accrual by tier.
func (t Tier) RewardMultiplier() float64 {
	switch t {
	case TierHolder:
		return 1.1
	case TierPremium:
		return 1.25
	case TierVIP:
		return 1.5
	default:
		return 1.0
	}
}

// EffectiveFee applies the tier discount to a base fee:
// baseFee * (1 - discount/100).
func EffectiveFee(baseFee float64, tier Tier) float64 {
	return baseFee * (1 - tier.DiscountPercent()/100)
}

// EffectiveFeeBps applies the tier discount to a base fee in basis points,
// rounding down to whole bps.
func EffectiveFeeBps(baseFeeBps int, tier Tier) int {
	return int(EffectiveFee(float64(baseFeeBps), tier))
}

// RewardProjection estimates reward accrual over standard horizons.
// These are display estimates, not ledger entries.
type RewardProjection struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// ProjectedRewards scales linearly from a daily base rate over the
// weighted stake, boosted by the tier multiplier.
func ProjectedRewards(weightedStake, dailyRate float64, tier Tier) RewardProjection {
	daily := weightedStake * dailyRate * tier.RewardMultiplier()
	return RewardProjection{
		Daily:   daily,
		Weekly:  daily * 7,
		Monthly: daily * 30,
		Yearly:  daily * 365,
	}
}

const msPerDay = 24 * 60 * 60 * 1000

// AccruedRewards returns the rewards earned over elapsedMs at the daily
// rate, for continuous accrual between ledger writes. Negative elapsed
// time accrues nothing.
func AccruedRewards(weightedStake, dailyRate float64, tier Tier, elapsedMs int64) float64 {
	if elapsedMs <= 0 {
		return 0
	}
	days := float64(elapsedMs) / msPerDay
	return weightedStake * dailyRate * tier.RewardMultiplier() * days
}
