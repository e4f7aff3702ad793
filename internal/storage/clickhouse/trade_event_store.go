package clickhouse

import (
	"context"
	"fmt"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// TradeEventStore implements storage.TradeEventStore using ClickHouse.
// trade_events is an append-only MergeTree table; there is no uniqueness
// to enforce on inserts.
type TradeEventStore struct {
	conn *Conn
}

// NewTradeEventStore creates a new TradeEventStore.
func NewTradeEventStore(conn *Conn) *TradeEventStore {
	return &TradeEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeEventStore = (*TradeEventStore)(nil)

// Insert adds a single trade event.
func (s *TradeEventStore) Insert(ctx context.Context, e *domain.TradeEvent) error {
	return s.InsertBulk(ctx, []*domain.TradeEvent{e})
}

// InsertBulk adds multiple trade events.
func (s *TradeEventStore) InsertBulk(ctx context.Context, events []*domain.TradeEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_events (
			token_id, mint, side, sol_amount, token_amount, price, fee_sol, wallet, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.TokenID, e.Mint, string(e.Side),
			e.SolAmount, e.TokenAmount, e.Price, e.FeeSOL,
			e.Wallet, uint64(e.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTokenID retrieves all events for a token, ordered by timestamp ASC.
func (s *TradeEventStore) GetByTokenID(ctx context.Context, tokenID string) ([]*domain.TradeEvent, error) {
	query := `
		SELECT token_id, mint, side, sol_amount, token_amount, price, fee_sol, wallet, timestamp_ms
		FROM trade_events
		WHERE token_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("query by token id: %w", err)
	}
	defer rows.Close()

	return scanTradeEvents(rows)
}

// VolumeSince returns the total SOL volume for a token since the given
// timestamp (ms).
func (s *TradeEventStore) VolumeSince(ctx context.Context, tokenID string, since int64) (float64, error) {
	query := `
		SELECT sum(sol_amount) FROM trade_events
		WHERE token_id = ? AND timestamp_ms >= ?
	`

	var volume float64
	err := s.conn.QueryRow(ctx, query, tokenID, uint64(since)).Scan(&volume)
	if err != nil {
		return 0, fmt.Errorf("query volume since: %w", err)
	}
	return volume, nil
}

// TopByVolume returns tokens ranked by SOL volume since the given
// timestamp (ms), highest first.
func (s *TradeEventStore) TopByVolume(ctx context.Context, since int64, limit int) ([]*domain.TrendingToken, error) {
	query := `
		SELECT token_id, any(mint), sum(sol_amount) AS volume, count(*), max(timestamp_ms)
		FROM trade_events
		WHERE timestamp_ms >= ?
		GROUP BY token_id
		ORDER BY volume DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, uint64(since), uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query top by volume: %w", err)
	}
	defer rows.Close()

	var trending []*domain.TrendingToken
	for rows.Next() {
		var t domain.TrendingToken
		var tradeCount, lastTradedAt uint64

		err := rows.Scan(&t.TokenID, &t.Mint, &t.VolumeSOL, &tradeCount, &lastTradedAt)
		if err != nil {
			return nil, fmt.Errorf("scan trending row: %w", err)
		}

		t.TradeCount = int64(tradeCount)
		t.LastTradedAt = int64(lastTradedAt)
		trending = append(trending, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trending rows: %w", err)
	}

	return trending, nil
}

// scanTradeEvents scans multiple rows.
func scanTradeEvents(rows chRows) ([]*domain.TradeEvent, error) {
	var events []*domain.TradeEvent

	for rows.Next() {
		var e domain.TradeEvent
		var side string
		var timestampMs uint64

		err := rows.Scan(
			&e.TokenID, &e.Mint, &side,
			&e.SolAmount, &e.TokenAmount, &e.Price, &e.FeeSOL,
			&e.Wallet, &timestampMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade event row: %w", err)
		}

		e.Side = domain.TradeSide(side)
		e.Timestamp = int64(timestampMs)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade event rows: %w", err)
	}

	return events, nil
}
