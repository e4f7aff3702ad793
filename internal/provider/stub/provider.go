package stub

import (
	"context"
	"sync"

	"solana-launchpad/internal/provider"
)

// Provider implements provider.LaunchProvider for testing and memory mode.
// Every call is recorded; configured errors are returned as-is.
type Provider struct {
	mu sync.Mutex

	// Configurable results
	ClaimAmounts map[string]int64 // tokenID -> lamports returned by ClaimFees
	Errs         map[string]error // operation name -> error to return

	// Recorded calls
	Launches   []provider.LaunchRequest
	Claims     []string
	Burns      map[string]int64
	Liquidity  map[string]int64
	Dividends  map[string]int64
	Migrations []string
}

// New creates a new stub provider.
func New() *Provider {
	return &Provider{
		ClaimAmounts: make(map[string]int64),
		Errs:         make(map[string]error),
		Burns:        make(map[string]int64),
		Liquidity:    make(map[string]int64),
		Dividends:    make(map[string]int64),
	}
}

// Compile-time interface check.
var _ provider.LaunchProvider = (*Provider)(nil)

// FailWith makes the named operation return err on every call.
func (p *Provider) FailWith(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Errs[op] = err
}

// Launch records the launch request.
func (p *Provider) Launch(_ context.Context, req provider.LaunchRequest) (*provider.LaunchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs["launch"]; err != nil {
		return nil, &provider.Error{Op: "launch", TokenID: req.Mint, Err: err}
	}
	p.Launches = append(p.Launches, req)
	return &provider.LaunchResult{Mint: req.Mint, TxSignature: "stub-tx-" + req.Mint}, nil
}

// ClaimFees returns the configured claim amount for the token.
func (p *Provider) ClaimFees(_ context.Context, tokenID string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs["claimFees"]; err != nil {
		return 0, &provider.Error{Op: "claimFees", TokenID: tokenID, Err: err}
	}
	p.Claims = append(p.Claims, tokenID)
	return p.ClaimAmounts[tokenID], nil
}

// Burn records the burn and echoes the amount.
func (p *Provider) Burn(_ context.Context, tokenID string, amount int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs["burn"]; err != nil {
		return 0, &provider.Error{Op: "burn", TokenID: tokenID, Err: err}
	}
	p.Burns[tokenID] += amount
	return amount, nil
}

// AddLiquidity records the liquidity add and echoes the amount.
func (p *Provider) AddLiquidity(_ context.Context, tokenID string, amount int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs["addLiquidity"]; err != nil {
		return 0, &provider.Error{Op: "addLiquidity", TokenID: tokenID, Err: err}
	}
	p.Liquidity[tokenID] += amount
	return amount, nil
}

// PayDividends records the payout and echoes the amount.
func (p *Provider) PayDividends(_ context.Context, tokenID string, amount int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs["payDividends"]; err != nil {
		return 0, &provider.Error{Op: "payDividends", TokenID: tokenID, Err: err}
	}
	p.Dividends[tokenID] += amount
	return amount, nil
}

// MigrateLiquidity records the migration.
func (p *Provider) MigrateLiquidity(_ context.Context, tokenID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs["migrateLiquidity"]; err != nil {
		return &provider.Error{Op: "migrateLiquidity", TokenID: tokenID, Err: err}
	}
	p.Migrations = append(p.Migrations, tokenID)
	return nil
}

// MigrationCount returns how many times MigrateLiquidity was called for
// the token.
func (p *Provider) MigrationCount(tokenID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, id := range p.Migrations {
		if id == tokenID {
			n++
		}
	}
	return n
}
