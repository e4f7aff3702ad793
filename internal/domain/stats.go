package domain

// PlatformStats is a read-only rollup over tokens, stakers and jobs.
type PlatformStats struct {
	TotalTokens     int     `json:"totalTokens"`
	ActiveTokens    int     `json:"activeTokens"`
	GraduatedTokens int     `json:"graduatedTokens"`
	TotalVolumeSOL  float64 `json:"totalVolumeSol"`
	TotalStakers    int     `json:"totalStakers"`
	TotalStaked     float64 `json:"totalStaked"`
}

// CreatorStats aggregates a single creator wallet's tokens.
type CreatorStats struct {
	CreatorWallet   string  `json:"creatorWallet"`
	TokensLaunched  int     `json:"tokensLaunched"`
	TokensGraduated int     `json:"tokensGraduated"`
	TotalVolumeSOL  float64 `json:"totalVolumeSol"`
}

// AutomationStats summarizes the automation job log.
type AutomationStats struct {
	PendingJobs          int   `json:"pendingJobs"`
	RunningJobs          int   `json:"runningJobs"`
	CompletedJobs        int   `json:"completedJobs"`
	FailedJobs           int   `json:"failedJobs"`
	TotalClaimedLamports int64 `json:"totalClaimedLamports"`
	TotalBurnedTokens    int64 `json:"totalBurnedTokens"`
	TotalLpTokensAdded   int64 `json:"totalLpTokensAdded"`
	TotalDividendsPaid   int64 `json:"totalDividendsPaid"`
}

// TrendingToken is one row of the volume-ranked trending view.
type TrendingToken struct {
	TokenID      string  `json:"tokenId"`
	Mint         string  `json:"mint"`
	VolumeSOL    float64 `json:"volumeSol"`
	TradeCount   int64   `json:"tradeCount"`
	LastTradedAt int64   `json:"lastTradedAt"`
}
