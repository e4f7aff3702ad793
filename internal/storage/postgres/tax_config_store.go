package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// TaxConfigStore implements storage.TaxConfigStore using PostgreSQL.
// Custom wallets are stored as JSONB.
type TaxConfigStore struct {
	pool *Pool
}

// NewTaxConfigStore creates a new TaxConfigStore.
func NewTaxConfigStore(pool *Pool) *TaxConfigStore {
	return &TaxConfigStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TaxConfigStore = (*TaxConfigStore)(nil)

// Insert adds a tax config. Returns ErrDuplicateKey if token_id exists.
func (s *TaxConfigStore) Insert(ctx context.Context, cfg *domain.TaxConfig) error {
	wallets, err := json.Marshal(cfg.CustomWallets)
	if err != nil {
		return fmt.Errorf("marshal custom wallets: %w", err)
	}

	query := `
		INSERT INTO tax_configs (
			token_id, burn_enabled, burn_percent, lp_enabled, lp_percent,
			dividends_enabled, dividends_percent, custom_wallets
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.pool.Exec(ctx, query,
		cfg.TokenID,
		cfg.BurnEnabled,
		cfg.BurnPercent,
		cfg.LpEnabled,
		cfg.LpPercent,
		cfg.DividendsEnabled,
		cfg.DividendsPercent,
		wallets,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert tax config: %w", err)
	}
	return nil
}

// GetByTokenID retrieves the config for a token. Returns ErrNotFound if not exists.
func (s *TaxConfigStore) GetByTokenID(ctx context.Context, tokenID string) (*domain.TaxConfig, error) {
	query := `
		SELECT token_id, burn_enabled, burn_percent, lp_enabled, lp_percent,
		       dividends_enabled, dividends_percent, custom_wallets
		FROM tax_configs
		WHERE token_id = $1
	`

	var cfg domain.TaxConfig
	var wallets []byte

	err := s.pool.QueryRow(ctx, query, tokenID).Scan(
		&cfg.TokenID,
		&cfg.BurnEnabled,
		&cfg.BurnPercent,
		&cfg.LpEnabled,
		&cfg.LpPercent,
		&cfg.DividendsEnabled,
		&cfg.DividendsPercent,
		&wallets,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get tax config: %w", err)
	}

	if len(wallets) > 0 {
		if err := json.Unmarshal(wallets, &cfg.CustomWallets); err != nil {
			return nil, fmt.Errorf("unmarshal custom wallets: %w", err)
		}
	}
	return &cfg, nil
}
