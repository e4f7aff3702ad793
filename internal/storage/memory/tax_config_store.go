package memory

import (
	"context"
	"sync"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// TaxConfigStore is an in-memory implementation of storage.TaxConfigStore.
type TaxConfigStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TaxConfig // keyed by token_id
}

// NewTaxConfigStore creates a new in-memory tax config store.
func NewTaxConfigStore() *TaxConfigStore {
	return &TaxConfigStore{
		data: make(map[string]*domain.TaxConfig),
	}
}

// Insert adds a tax config. Returns ErrDuplicateKey if token_id exists.
func (s *TaxConfigStore) Insert(_ context.Context, cfg *domain.TaxConfig) error {
	if cfg == nil || cfg.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[cfg.TokenID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[cfg.TokenID] = copyConfig(cfg)
	return nil
}

// GetByTokenID retrieves the config for a token. Returns ErrNotFound if not exists.
func (s *TaxConfigStore) GetByTokenID(_ context.Context, tokenID string) (*domain.TaxConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, exists := s.data[tokenID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyConfig(cfg), nil
}

// copyConfig deep-copies a config including its custom wallet slice.
func copyConfig(cfg *domain.TaxConfig) *domain.TaxConfig {
	out := *cfg
	out.CustomWallets = append([]domain.CustomWallet(nil), cfg.CustomWallets...)
	return &out
}

// Verify interface compliance at compile time.
var _ storage.TaxConfigStore = (*TaxConfigStore)(nil)
