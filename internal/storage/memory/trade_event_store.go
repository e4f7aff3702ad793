package memory

import (
	"context"
	"sort"
	"sync"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// TradeEventStore is an in-memory implementation of storage.TradeEventStore.
type TradeEventStore struct {
	mu   sync.RWMutex
	data []*domain.TradeEvent
}

// NewTradeEventStore creates a new in-memory trade event store.
func NewTradeEventStore() *TradeEventStore {
	return &TradeEventStore{}
}

// Insert adds a single trade event.
func (s *TradeEventStore) Insert(_ context.Context, e *domain.TradeEvent) error {
	if e == nil || e.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.data = append(s.data, &eventCopy)
	return nil
}

// InsertBulk adds multiple trade events.
func (s *TradeEventStore) InsertBulk(ctx context.Context, events []*domain.TradeEvent) error {
	for _, e := range events {
		if err := s.Insert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// GetByTokenID retrieves all events for a token, ordered by timestamp ASC.
func (s *TradeEventStore) GetByTokenID(_ context.Context, tokenID string) ([]*domain.TradeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeEvent
	for _, e := range s.data {
		if e.TokenID == tokenID {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

// VolumeSince returns the total SOL volume for a token since the given
// timestamp (ms).
func (s *TradeEventStore) VolumeSince(_ context.Context, tokenID string, since int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, e := range s.data {
		if e.TokenID == tokenID && e.Timestamp >= since {
			total += e.SolAmount
		}
	}
	return total, nil
}

// TopByVolume returns tokens ranked by SOL volume since the given
// timestamp (ms), highest first.
func (s *TradeEventStore) TopByVolume(_ context.Context, since int64, limit int) ([]*domain.TrendingToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byToken := make(map[string]*domain.TrendingToken)
	for _, e := range s.data {
		if e.Timestamp < since {
			continue
		}
		row, ok := byToken[e.TokenID]
		if !ok {
			row = &domain.TrendingToken{TokenID: e.TokenID, Mint: e.Mint}
			byToken[e.TokenID] = row
		}
		row.VolumeSOL += e.SolAmount
		row.TradeCount++
		if e.Timestamp > row.LastTradedAt {
			row.LastTradedAt = e.Timestamp
		}
	}

	result := make([]*domain.TrendingToken, 0, len(byToken))
	for _, row := range byToken {
		result = append(result, row)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].VolumeSOL != result[j].VolumeSOL {
			return result[i].VolumeSOL > result[j].VolumeSOL
		}
		return result[i].TokenID < result[j].TokenID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TradeEventStore = (*TradeEventStore)(nil)
