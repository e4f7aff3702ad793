package api

import (
	"fmt"
	"math"
	"net/http"

	"solana-launchpad/internal/curve"
	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/observability"
	"solana-launchpad/internal/storage"
	"solana-launchpad/internal/stream"
)

// tradeRequest is the POST /tokens/{mint}/trades body: an executed curve
// trade reported by the trading frontend or chain indexer.
type tradeRequest struct {
	Side        string  `json:"side"`
	SolAmount   float64 `json:"solAmount"`
	TokenAmount float64 `json:"tokenAmount"`
	Price       float64 `json:"price,omitempty"` // defaults to solAmount/tokenAmount
	FeeSOL      float64 `json:"feeSol,omitempty"`
	Wallet      string  `json:"wallet,omitempty"`
	Timestamp   int64   `json:"timestamp,omitempty"` // defaults to server time
}

// tradeView is the recorded event on the wire.
type tradeView struct {
	TokenID     string  `json:"tokenId"`
	Mint        string  `json:"mint"`
	Side        string  `json:"side"`
	SolAmount   float64 `json:"solAmount"`
	TokenAmount float64 `json:"tokenAmount"`
	Price       float64 `json:"price"`
	FeeSOL      float64 `json:"feeSol"`
	Wallet      string  `json:"wallet,omitempty"`
	Timestamp   int64   `json:"timestamp"`
}

// tradeResponse pairs the recorded event with the refreshed token
// snapshot.
type tradeResponse struct {
	Trade tradeView `json:"trade"`
	Token tokenView `json:"token"`
}

// handleRecordTrade records an executed trade: the event is appended to
// analytics storage and the token's circulating supply, volume and
// market-cap snapshot advance with it. Graduation checks read the
// snapshot, so recorded trades are what move a token toward graduation.
func (s *Server) handleRecordTrade(w http.ResponseWriter, r *http.Request) {
	token, err := s.tokens.GetByMint(r.Context(), r.PathValue("mint"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if token.Status != domain.TokenStatusActive {
		s.respondError(w, fmt.Errorf("%w: token %s no longer trades on the curve", storage.ErrStateConflict, token.Mint))
		return
	}

	var req tradeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	newSupply, err := validateTrade(&req, token)
	if err != nil {
		s.respondError(w, err)
		return
	}

	price := req.Price
	if price == 0 {
		price = req.SolAmount / req.TokenAmount
	}
	timestamp := req.Timestamp
	if timestamp == 0 {
		timestamp = s.now()
	}

	event := &domain.TradeEvent{
		TokenID:     token.TokenID,
		Mint:        token.Mint,
		Side:        domain.TradeSide(req.Side),
		SolAmount:   req.SolAmount,
		TokenAmount: req.TokenAmount,
		Price:       price,
		FeeSOL:      req.FeeSOL,
		Wallet:      req.Wallet,
		Timestamp:   timestamp,
	}
	if err := s.trades.Insert(r.Context(), event); err != nil {
		s.respondError(w, err)
		return
	}

	spot, err := curve.Price(newSupply, token.TotalSupply, token.Curve)
	if err != nil {
		s.respondError(w, err)
		return
	}
	solUSD, err := s.rate(r.Context())
	if err != nil {
		s.respondError(w, fmt.Errorf("read sol/usd rate: %w", err))
		return
	}

	token.CirculatingSupply = newSupply
	token.VolumeSOL += req.SolAmount
	token.MarketCapUSD = spot * newSupply * solUSD
	if err := s.tokens.UpdateMarketSnapshot(r.Context(), token.TokenID, token.CirculatingSupply, token.VolumeSOL, token.MarketCapUSD); err != nil {
		s.respondError(w, err)
		return
	}

	view := tradeView{
		TokenID:     event.TokenID,
		Mint:        event.Mint,
		Side:        string(event.Side),
		SolAmount:   event.SolAmount,
		TokenAmount: event.TokenAmount,
		Price:       event.Price,
		FeeSOL:      event.FeeSOL,
		Wallet:      event.Wallet,
		Timestamp:   event.Timestamp,
	}
	observability.RecordTrade(string(event.Side), event.SolAmount)
	if s.hub != nil {
		s.hub.Publish(stream.EventTradeExecuted, view)
	}

	s.respondStatus(w, http.StatusCreated, tradeResponse{
		Trade: view,
		Token: toTokenView(token),
	})
}

// validateTrade checks the reported amounts against the token and
// returns the circulating supply after the trade.
func validateTrade(req *tradeRequest, token *domain.Token) (float64, error) {
	if req.SolAmount <= 0 || math.IsInf(req.SolAmount, 0) {
		return 0, fmt.Errorf("%w: solAmount must be > 0", storage.ErrInvalidInput)
	}
	if req.TokenAmount <= 0 || math.IsInf(req.TokenAmount, 0) {
		return 0, fmt.Errorf("%w: tokenAmount must be > 0", storage.ErrInvalidInput)
	}
	if req.FeeSOL < 0 {
		return 0, fmt.Errorf("%w: feeSol must be >= 0", storage.ErrInvalidInput)
	}

	switch domain.TradeSide(req.Side) {
	case domain.TradeSideBuy:
		newSupply := token.CirculatingSupply + req.TokenAmount
		if newSupply >= token.TotalSupply {
			return 0, fmt.Errorf("%w: buy of %v tokens exceeds remaining curve supply", storage.ErrInvalidInput, req.TokenAmount)
		}
		return newSupply, nil
	case domain.TradeSideSell:
		newSupply := token.CirculatingSupply - req.TokenAmount
		if newSupply < 0 {
			return 0, fmt.Errorf("%w: sell of %v tokens exceeds circulating supply", storage.ErrInvalidInput, req.TokenAmount)
		}
		return newSupply, nil
	default:
		return 0, fmt.Errorf("%w: unknown trade side %q", storage.ErrInvalidInput, req.Side)
	}
}
