package api

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"solana-launchpad/internal/curve"
	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/idhash"
	"solana-launchpad/internal/observability"
	"solana-launchpad/internal/provider"
	"solana-launchpad/internal/solana"
	"solana-launchpad/internal/storage"
	"solana-launchpad/internal/stream"
	"solana-launchpad/internal/tax"
)

// Default curve parameters applied when a launch omits them.
var defaultCurveParams = domain.CurveParams{
	InitialPrice:           0.00001,
	CurveExponent:          2,
	VirtualSolReserve:      30,
	VirtualTokenReserve:    1e9,
	GraduationThresholdUSD: 69_000,
}

// taxConfigRequest carries the fee split in basis points, the on-the-wire
// encoding. Converted to whole percents before validation.
type taxConfigRequest struct {
	BurnEnabled      bool                  `json:"burnEnabled"`
	BurnBps          int                   `json:"burnBps"`
	LpEnabled        bool                  `json:"lpEnabled"`
	LpBps            int                   `json:"lpBps"`
	DividendsEnabled bool                  `json:"dividendsEnabled"`
	DividendsBps     int                   `json:"dividendsBps"`
	CustomWallets    []customWalletRequest `json:"customWallets,omitempty"`
}

type customWalletRequest struct {
	Address string `json:"address"`
	Bps     int    `json:"bps"`
	Label   string `json:"label,omitempty"`
}

func (r taxConfigRequest) toDomain(tokenID string) domain.TaxConfig {
	cfg := domain.TaxConfig{
		TokenID:          tokenID,
		BurnEnabled:      r.BurnEnabled,
		BurnPercent:      float64(r.BurnBps) / 100,
		LpEnabled:        r.LpEnabled,
		LpPercent:        float64(r.LpBps) / 100,
		DividendsEnabled: r.DividendsEnabled,
		DividendsPercent: float64(r.DividendsBps) / 100,
	}
	for _, w := range r.CustomWallets {
		cfg.CustomWallets = append(cfg.CustomWallets, domain.CustomWallet{
			Address: w.Address,
			Percent: float64(w.Bps) / 100,
			Label:   w.Label,
		})
	}
	return cfg
}

// launchRequest is the POST /launch body.
type launchRequest struct {
	Name          string            `json:"name"`
	Symbol        string            `json:"symbol"`
	Decimals      int               `json:"decimals"`
	TotalSupply   float64           `json:"totalSupply"`
	CreatorWallet string            `json:"creatorWallet"`
	Mint          string            `json:"mint,omitempty"`  // optional vanity mint
	Curve         *curveView        `json:"curve,omitempty"` // defaults applied when omitted
	TaxConfig     *taxConfigRequest `json:"taxConfig,omitempty"`
}

// launchResponse is the POST /launch result.
type launchResponse struct {
	Token       tokenView `json:"token"`
	TxSignature string    `json:"txSignature"`
}

// handleLaunch validates the request, delegates token creation to the
// launch provider and persists the token and its tax config. All
// invariants are checked before the provider call so a rejected launch
// leaves no partial state.
func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	var req launchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	params, cfg, err := s.validateLaunch(&req)
	if err != nil {
		observability.DefaultMetrics.LaunchErrors.WithLabelValues("validation").Inc()
		s.respondError(w, err)
		return
	}

	result, err := s.provider.Launch(r.Context(), provider.LaunchRequest{
		Mint:          req.Mint,
		Name:          req.Name,
		Symbol:        req.Symbol,
		Decimals:      req.Decimals,
		TotalSupply:   req.TotalSupply,
		CreatorWallet: req.CreatorWallet,
	})
	if err != nil {
		observability.DefaultMetrics.LaunchErrors.WithLabelValues("provider").Inc()
		s.respondError(w, err)
		return
	}

	token := &domain.Token{
		TokenID:       idhash.ComputeTokenID(result.Mint, req.CreatorWallet),
		Mint:          result.Mint,
		Name:          req.Name,
		Symbol:        req.Symbol,
		Decimals:      req.Decimals,
		TotalSupply:   req.TotalSupply,
		Curve:         params,
		Status:        domain.TokenStatusActive,
		CreatorWallet: req.CreatorWallet,
		CreatedAt:     s.now(),
	}
	if err := s.tokens.Insert(r.Context(), token); err != nil {
		s.respondError(w, err)
		return
	}

	if cfg != nil {
		cfg.TokenID = token.TokenID
		if err := s.taxConfigs.Insert(r.Context(), cfg); err != nil {
			// The token row stands; the config can be inspected via logs.
			log.Error().Err(err).Str("token_id", token.TokenID).Msg("persist tax config")
		}
	}

	observability.RecordTokenLaunched()
	if s.hub != nil {
		s.hub.Publish(stream.EventTokenLaunched, toTokenView(token))
	}
	log.Info().
		Str("token_id", token.TokenID).
		Str("mint", token.Mint).
		Str("creator", token.CreatorWallet).
		Msg("token launched")

	s.respondStatus(w, http.StatusCreated, launchResponse{
		Token:       toTokenView(token),
		TxSignature: result.TxSignature,
	})
}

// validateLaunch applies all launch invariants up front and returns the
// resolved curve parameters and the normalized tax config (nil when the
// request carries none).
func (s *Server) validateLaunch(req *launchRequest) (domain.CurveParams, *domain.TaxConfig, error) {
	if req.Name == "" {
		return domain.CurveParams{}, nil, fmt.Errorf("%w: name is required", storage.ErrInvalidInput)
	}
	if req.Symbol == "" {
		return domain.CurveParams{}, nil, fmt.Errorf("%w: symbol is required", storage.ErrInvalidInput)
	}
	if req.TotalSupply <= 0 {
		return domain.CurveParams{}, nil, fmt.Errorf("%w: total supply must be > 0", storage.ErrInvalidInput)
	}
	if req.Decimals < 0 || req.Decimals > 9 {
		return domain.CurveParams{}, nil, fmt.Errorf("%w: decimals must be in [0, 9]", storage.ErrInvalidInput)
	}
	if err := solana.ValidateWallet(req.CreatorWallet); err != nil {
		return domain.CurveParams{}, nil, fmt.Errorf("creator wallet: %w", err)
	}
	if req.Mint != "" {
		if err := solana.ValidateAddress(req.Mint); err != nil {
			return domain.CurveParams{}, nil, fmt.Errorf("mint: %w", err)
		}
	}

	params := defaultCurveParams
	if req.Curve != nil {
		params = domain.CurveParams{
			InitialPrice:           req.Curve.InitialPrice,
			CurveExponent:          req.Curve.CurveExponent,
			VirtualSolReserve:      req.Curve.VirtualSolReserve,
			VirtualTokenReserve:    req.Curve.VirtualTokenReserve,
			GraduationThresholdUSD: req.Curve.GraduationThresholdUSD,
		}
	}
	if err := curve.ValidateParams(params); err != nil {
		return domain.CurveParams{}, nil, err
	}
	if params.GraduationThresholdUSD <= 0 {
		return domain.CurveParams{}, nil, fmt.Errorf("%w: graduation threshold must be > 0", storage.ErrInvalidInput)
	}

	if req.TaxConfig == nil {
		return params, nil, nil
	}

	for _, cw := range req.TaxConfig.CustomWallets {
		if err := solana.ValidateAddress(cw.Address); err != nil {
			return domain.CurveParams{}, nil, fmt.Errorf("custom wallet %s: %w", cw.Address, err)
		}
	}
	cfg := tax.Normalize(req.TaxConfig.toDomain(""))
	if err := tax.Validate(cfg); err != nil {
		return domain.CurveParams{}, nil, err
	}
	return params, &cfg, nil
}
