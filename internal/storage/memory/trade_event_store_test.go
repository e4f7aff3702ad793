package memory

import (
	"context"
	"testing"

	"solana-launchpad/internal/domain"
)

func testTrade(tokenID, mint string, sol float64, ts int64) *domain.TradeEvent {
	return &domain.TradeEvent{
		TokenID:     tokenID,
		Mint:        mint,
		Side:        domain.TradeSideBuy,
		SolAmount:   sol,
		TokenAmount: sol * 1000,
		Price:       0.001,
		Timestamp:   ts,
	}
}

func TestTradeEventStore_VolumeSince(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	events := []*domain.TradeEvent{
		testTrade("t1", "m1", 1.0, 1000),
		testTrade("t1", "m1", 2.0, 2000),
		testTrade("t1", "m1", 4.0, 3000),
		testTrade("t2", "m2", 8.0, 3000),
	}
	if err := store.InsertBulk(ctx, events); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	vol, err := store.VolumeSince(ctx, "t1", 2000)
	if err != nil {
		t.Fatalf("VolumeSince failed: %v", err)
	}
	if vol != 6.0 {
		t.Errorf("Volume mismatch: got %v, want 6.0", vol)
	}
}

func TestTradeEventStore_TopByVolume(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	store.Insert(ctx, testTrade("t1", "m1", 1.0, 1000))
	store.Insert(ctx, testTrade("t2", "m2", 5.0, 2000))
	store.Insert(ctx, testTrade("t2", "m2", 5.0, 3000))
	store.Insert(ctx, testTrade("t3", "m3", 3.0, 2500))

	top, err := store.TopByVolume(ctx, 0, 2)
	if err != nil {
		t.Fatalf("TopByVolume failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(top))
	}
	if top[0].TokenID != "t2" || top[0].VolumeSOL != 10.0 || top[0].TradeCount != 2 {
		t.Errorf("First row mismatch: %+v", top[0])
	}
	if top[1].TokenID != "t3" {
		t.Errorf("Second row mismatch: %+v", top[1])
	}
	if top[0].LastTradedAt != 3000 {
		t.Errorf("LastTradedAt mismatch: %d", top[0].LastTradedAt)
	}
}

func TestTradeEventStore_GetByTokenIDOrdered(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	store.Insert(ctx, testTrade("t1", "m1", 1.0, 3000))
	store.Insert(ctx, testTrade("t1", "m1", 1.0, 1000))
	store.Insert(ctx, testTrade("t1", "m1", 1.0, 2000))

	events, err := store.GetByTokenID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByTokenID failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp < events[i-1].Timestamp {
			t.Errorf("Events not ordered by timestamp ASC")
		}
	}
}
