package api

import (
	"solana-launchpad/internal/domain"
)

// curveView is the JSON projection of a token's curve parameters.
type curveView struct {
	InitialPrice           float64 `json:"initialPrice"`
	CurveExponent          float64 `json:"curveExponent"`
	VirtualSolReserve      float64 `json:"virtualSolReserve"`
	VirtualTokenReserve    float64 `json:"virtualTokenReserve"`
	GraduationThresholdUSD float64 `json:"graduationThresholdUsd"`
}

// tokenView is the JSON projection of a token.
type tokenView struct {
	TokenID           string    `json:"tokenId"`
	Mint              string    `json:"mint"`
	Name              string    `json:"name"`
	Symbol            string    `json:"symbol"`
	Decimals          int       `json:"decimals"`
	TotalSupply       float64   `json:"totalSupply"`
	CirculatingSupply float64   `json:"circulatingSupply"`
	Curve             curveView `json:"curve"`
	Status            string    `json:"status"`
	CreatorWallet     string    `json:"creatorWallet"`
	VolumeSOL         float64   `json:"volumeSol"`
	MarketCapUSD      float64   `json:"marketCapUsd"`
	CreatedAt         int64     `json:"createdAt"`
}

func toTokenView(t *domain.Token) tokenView {
	return tokenView{
		TokenID:           t.TokenID,
		Mint:              t.Mint,
		Name:              t.Name,
		Symbol:            t.Symbol,
		Decimals:          t.Decimals,
		TotalSupply:       t.TotalSupply,
		CirculatingSupply: t.CirculatingSupply,
		Curve: curveView{
			InitialPrice:           t.Curve.InitialPrice,
			CurveExponent:          t.Curve.CurveExponent,
			VirtualSolReserve:      t.Curve.VirtualSolReserve,
			VirtualTokenReserve:    t.Curve.VirtualTokenReserve,
			GraduationThresholdUSD: t.Curve.GraduationThresholdUSD,
		},
		Status:        string(t.Status),
		CreatorWallet: t.CreatorWallet,
		VolumeSOL:     t.VolumeSOL,
		MarketCapUSD:  t.MarketCapUSD,
		CreatedAt:     t.CreatedAt,
	}
}

func toTokenViews(tokens []*domain.Token) []tokenView {
	views := make([]tokenView, 0, len(tokens))
	for _, t := range tokens {
		views = append(views, toTokenView(t))
	}
	return views
}

// jobView is the JSON projection of an automation job.
type jobView struct {
	ID           string  `json:"id"`
	TokenID      string  `json:"tokenId"`
	JobType      string  `json:"jobType"`
	Status       string  `json:"status"`
	TriggerType  string  `json:"triggerType"`
	ParentJobID  *string `json:"parentJobId,omitempty"`
	RetryCount   int     `json:"retryCount"`
	ErrorMessage *string `json:"errorMessage,omitempty"`

	ScheduledFor int64  `json:"scheduledFor"`
	StartedAt    *int64 `json:"startedAt,omitempty"`
	CompletedAt  *int64 `json:"completedAt,omitempty"`

	ClaimedLamports int64 `json:"claimedLamports"`
	BurnedTokens    int64 `json:"burnedTokens"`
	LpTokensAdded   int64 `json:"lpTokensAdded"`
	DividendsPaid   int64 `json:"dividendsPaid"`
}

func toJobView(j *domain.AutomationJob) jobView {
	return jobView{
		ID:              j.ID,
		TokenID:         j.TokenID,
		JobType:         string(j.JobType),
		Status:          string(j.Status),
		TriggerType:     string(j.TriggerType),
		ParentJobID:     j.ParentJobID,
		RetryCount:      j.RetryCount,
		ErrorMessage:    j.ErrorMessage,
		ScheduledFor:    j.ScheduledFor,
		StartedAt:       j.StartedAt,
		CompletedAt:     j.CompletedAt,
		ClaimedLamports: j.ClaimedLamports,
		BurnedTokens:    j.BurnedTokens,
		LpTokensAdded:   j.LpTokensAdded,
		DividendsPaid:   j.DividendsPaid,
	}
}

func toJobViews(jobs []*domain.AutomationJob) []jobView {
	views := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, toJobView(j))
	}
	return views
}
