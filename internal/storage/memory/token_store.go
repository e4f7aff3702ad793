package memory

import (
	"context"
	"sort"
	"sync"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Token // keyed by token_id
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		data: make(map[string]*domain.Token),
	}
}

// Insert adds a new token. Returns ErrDuplicateKey if token_id or mint exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.TokenID == "" || t.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TokenID]; exists {
		return storage.ErrDuplicateKey
	}
	for _, existing := range s.data {
		if existing.Mint == t.Mint {
			return storage.ErrDuplicateKey
		}
	}

	// Store a copy to prevent external mutation
	tokenCopy := *t
	s.data[t.TokenID] = &tokenCopy
	return nil
}

// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(_ context.Context, tokenID string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[tokenID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *t
	return &tokenCopy, nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(_ context.Context, mint string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.data {
		if t.Mint == mint {
			tokenCopy := *t
			return &tokenCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetByStatus retrieves all tokens with the given status, newest first.
func (s *TokenStore) GetByStatus(_ context.Context, status domain.TokenStatus) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Token
	for _, t := range s.data {
		if t.Status == status {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// GetByCreator retrieves all tokens launched by a creator wallet, newest first.
func (s *TokenStore) GetByCreator(_ context.Context, wallet string) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Token
	for _, t := range s.data {
		if t.CreatorWallet == wallet {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// GetAll retrieves all tokens, newest first.
func (s *TokenStore) GetAll(_ context.Context) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Token, 0, len(s.data))
	for _, t := range s.data {
		tokenCopy := *t
		result = append(result, &tokenCopy)
	}
	sortNewestFirst(result)
	return result, nil
}

// GetNewest retrieves the most recently launched tokens, newest first.
func (s *TokenStore) GetNewest(ctx context.Context, limit int) ([]*domain.Token, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// UpdateStatusIf atomically sets status to "to" only if the current status
// equals "from". Returns true if the row was updated.
func (s *TokenStore) UpdateStatusIf(_ context.Context, tokenID string, from, to domain.TokenStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[tokenID]
	if !exists {
		return false, storage.ErrNotFound
	}
	if t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

// UpdateMarketSnapshot updates the circulating supply, volume and
// market-cap snapshot of a token.
func (s *TokenStore) UpdateMarketSnapshot(_ context.Context, tokenID string, circulatingSupply, volumeSOL, marketCapUSD float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[tokenID]
	if !exists {
		return storage.ErrNotFound
	}
	t.CirculatingSupply = circulatingSupply
	t.VolumeSOL = volumeSOL
	t.MarketCapUSD = marketCapUSD
	return nil
}

// sortNewestFirst orders tokens by created_at DESC with token_id as tiebreak.
func sortNewestFirst(tokens []*domain.Token) {
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].CreatedAt != tokens[j].CreatedAt {
			return tokens[i].CreatedAt > tokens[j].CreatedAt
		}
		return tokens[i].TokenID < tokens[j].TokenID
	})
}

// Verify interface compliance at compile time.
var _ storage.TokenStore = (*TokenStore)(nil)
