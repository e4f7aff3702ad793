package api

import (
	"net/http"

	"solana-launchpad/internal/staking"
)

// stakerView is the tier/discount/projection projection of a staking
// position.
type stakerView struct {
	Wallet           string                   `json:"wallet"`
	StakedAmount     float64                  `json:"stakedAmount"`
	LockDurationDays int                      `json:"lockDurationDays"`
	LockEndTime      int64                    `json:"lockEndTime"`
	PendingRewards   float64                  `json:"pendingRewards"`
	WeightedStake    float64                  `json:"weightedStake"`
	Tier             string                   `json:"tier"`
	DiscountPercent  float64                  `json:"discountPercent"`
	EffectiveFeeBps  int                      `json:"effectiveFeeBps"`
	Projection       staking.RewardProjection `json:"projection"`
}

// handleGetStaker returns a wallet's staking position with its derived
// tier, fee discount and reward projection.
func (s *Server) handleGetStaker(w http.ResponseWriter, r *http.Request) {
	staker, err := s.stakers.GetByWallet(r.Context(), r.PathValue("wallet"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	weighted := staking.WeightedStake(staker.StakedAmount, staker.LockDurationDays)
	tier := s.staking.Classify(weighted)

	s.respond(w, stakerView{
		Wallet:           staker.Wallet,
		StakedAmount:     staker.StakedAmount,
		LockDurationDays: staker.LockDurationDays,
		LockEndTime:      staker.LockEndTime,
		PendingRewards:   staker.PendingRewards,
		WeightedStake:    weighted,
		Tier:             string(tier),
		DiscountPercent:  tier.DiscountPercent(),
		EffectiveFeeBps:  staking.EffectiveFeeBps(s.staking.BaseFeeBps, tier),
		Projection:       staking.ProjectedRewards(weighted, s.staking.DailyRewardRate, tier),
	})
}
