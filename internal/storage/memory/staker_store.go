package memory

import (
	"context"
	"sort"
	"sync"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// StakerStore is an in-memory implementation of storage.StakerStore.
type StakerStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Staker // keyed by wallet
}

// NewStakerStore creates a new in-memory staker store.
func NewStakerStore() *StakerStore {
	return &StakerStore{
		data: make(map[string]*domain.Staker),
	}
}

// Insert adds a new staker. Returns ErrDuplicateKey if wallet exists.
func (s *StakerStore) Insert(_ context.Context, st *domain.Staker) error {
	if st == nil || st.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[st.Wallet]; exists {
		return storage.ErrDuplicateKey
	}

	stakerCopy := *st
	s.data[st.Wallet] = &stakerCopy
	return nil
}

// GetByWallet retrieves a staker. Returns ErrNotFound if not exists.
func (s *StakerStore) GetByWallet(_ context.Context, wallet string) (*domain.Staker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.data[wallet]
	if !exists {
		return nil, storage.ErrNotFound
	}

	stakerCopy := *st
	return &stakerCopy, nil
}

// Update overwrites an existing staker. Returns ErrNotFound if not exists.
func (s *StakerStore) Update(_ context.Context, st *domain.Staker) error {
	if st == nil || st.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[st.Wallet]; !exists {
		return storage.ErrNotFound
	}

	stakerCopy := *st
	s.data[st.Wallet] = &stakerCopy
	return nil
}

// GetAll retrieves all stakers, ordered by wallet for determinism.
func (s *StakerStore) GetAll(_ context.Context) ([]*domain.Staker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Staker, 0, len(s.data))
	for _, st := range s.data {
		stakerCopy := *st
		result = append(result, &stakerCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Wallet < result[j].Wallet
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.StakerStore = (*StakerStore)(nil)
