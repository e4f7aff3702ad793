package provider

import (
	"context"
	"fmt"
)

// LaunchRequest carries the parameters the provider needs to create the
// on-chain token for a launch.
type LaunchRequest struct {
	Mint          string  `json:"mint"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Decimals      int     `json:"decimals"`
	TotalSupply   float64 `json:"totalSupply"`
	CreatorWallet string  `json:"creatorWallet"`
}

// LaunchResult is the provider's acknowledgement of a launch.
type LaunchResult struct {
	Mint        string `json:"mint"`
	TxSignature string `json:"txSignature"`
}

// LaunchProvider is the boundary to the external launch service. The
// engine never speaks the provider's protocol directly; every on-chain
// side effect goes through this interface so tests can swap in a stub.
type LaunchProvider interface {
	// Launch creates the token on-chain.
	Launch(ctx context.Context, req LaunchRequest) (*LaunchResult, error)

	// ClaimFees collects accumulated trading fees for a token and
	// returns the claimed amount in lamports.
	ClaimFees(ctx context.Context, tokenID string) (int64, error)

	// Burn burns amount tokens and returns the amount actually burned.
	Burn(ctx context.Context, tokenID string, amount int64) (int64, error)

	// AddLiquidity adds amount lamports to the token's liquidity pool
	// and returns the LP tokens received.
	AddLiquidity(ctx context.Context, tokenID string, amount int64) (int64, error)

	// PayDividends distributes amount lamports to holders and returns
	// the amount actually paid out.
	PayDividends(ctx context.Context, tokenID string, amount int64) (int64, error)

	// MigrateLiquidity moves the token's curve liquidity to an external
	// pool. Called exactly once, at graduation.
	MigrateLiquidity(ctx context.Context, tokenID string) error
}

// Error wraps a failed provider call. Callers persist err.Error() on the
// failed job record; errors.As can recover the operation name.
type Error struct {
	Op      string // provider operation, e.g. "claimFees"
	TokenID string
	Err     error
}

func (e *Error) Error() string {
	if e.TokenID == "" {
		return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("provider %s (%s): %v", e.Op, e.TokenID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
