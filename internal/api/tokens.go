package api

import (
	"fmt"
	"net/http"
	"strconv"

	"solana-launchpad/internal/curve"
	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/staking"
	"solana-launchpad/internal/stats"
	"solana-launchpad/internal/storage"
)

// handleListTokens returns all tokens, newest first, optionally filtered
// by ?status=.
func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	var (
		tokens []*domain.Token
		err    error
	)
	switch status := r.URL.Query().Get("status"); status {
	case "":
		tokens, err = s.tokens.GetAll(r.Context())
	case string(domain.TokenStatusActive), string(domain.TokenStatusGraduated), string(domain.TokenStatusBanned):
		tokens, err = s.tokens.GetByStatus(r.Context(), domain.TokenStatus(status))
	default:
		s.respondError(w, fmt.Errorf("%w: unknown status %q", storage.ErrInvalidInput, status))
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, toTokenViews(tokens))
}

// handleGetToken returns a single token by mint address.
func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.tokens.GetByMint(r.Context(), r.PathValue("mint"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, toTokenView(token))
}

// tokenStatsView is the derived pricing projection of a token.
type tokenStatsView struct {
	Token                     tokenView `json:"token"`
	PriceSOL                  float64   `json:"priceSol"`
	MarketCapSOL              float64   `json:"marketCapSol"`
	MarketCapUSD              float64   `json:"marketCapUsd"`
	GraduationProgressPercent float64   `json:"graduationProgressPercent"`
	Volume24hSOL              float64   `json:"volume24hSol"`
}

// handleTokenStats returns the token together with its current curve
// price, market cap, graduation progress and 24h volume.
func (s *Server) handleTokenStats(w http.ResponseWriter, r *http.Request) {
	token, err := s.tokens.GetByMint(r.Context(), r.PathValue("mint"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	price, err := curve.Price(token.CirculatingSupply, token.TotalSupply, token.Curve)
	if err != nil {
		s.respondError(w, err)
		return
	}
	marketCapSOL := price * token.CirculatingSupply

	solUSD, err := s.rate(r.Context())
	if err != nil {
		s.respondError(w, fmt.Errorf("read sol/usd rate: %w", err))
		return
	}
	marketCapUSD := marketCapSOL * solUSD

	progress := 0.0
	if token.Curve.GraduationThresholdUSD > 0 {
		progress = marketCapUSD / token.Curve.GraduationThresholdUSD * 100
		if progress > 100 {
			progress = 100
		}
	}

	volume24h, err := s.trades.VolumeSince(r.Context(), token.TokenID, s.now()-stats.DefaultTrendingWindowMs)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respond(w, tokenStatsView{
		Token:                     toTokenView(token),
		PriceSOL:                  price,
		MarketCapSOL:              marketCapSOL,
		MarketCapUSD:              marketCapUSD,
		GraduationProgressPercent: progress,
		Volume24hSOL:              volume24h,
	})
}

// quoteView wraps a simulated trade with the fee rate that produced it.
type quoteView struct {
	Quote  *curve.Quote `json:"quote"`
	FeeBps int          `json:"feeBps"`
	Tier   string       `json:"tier"`
}

// handleTokenQuote simulates a hypothetical trade against the token's
// curve. Query: side=BUY|SELL, amount, and an optional wallet whose
// staking tier discounts the platform fee.
func (s *Server) handleTokenQuote(w http.ResponseWriter, r *http.Request) {
	token, err := s.tokens.GetByMint(r.Context(), r.PathValue("mint"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if token.Status != domain.TokenStatusActive {
		s.respondError(w, fmt.Errorf("%w: token %s no longer trades on the curve", storage.ErrStateConflict, token.Mint))
		return
	}

	q := r.URL.Query()
	side := domain.TradeSide(q.Get("side"))
	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil {
		s.respondError(w, fmt.Errorf("%w: amount must be a number", storage.ErrInvalidInput))
		return
	}

	tier := staking.TierNone
	if wallet := q.Get("wallet"); wallet != "" {
		staker, err := s.stakers.GetByWallet(r.Context(), wallet)
		switch {
		case err == nil:
			tier = s.staking.TierForStake(staker.StakedAmount, staker.LockDurationDays)
		case !isNotFound(err):
			s.respondError(w, err)
			return
		}
	}
	feeBps := staking.EffectiveFeeBps(s.staking.BaseFeeBps, tier)

	quote, err := curve.Simulate(side, amount, token.CirculatingSupply, token.TotalSupply, token.Curve, feeBps)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respond(w, quoteView{Quote: quote, FeeBps: feeBps, Tier: string(tier)})
}
