package store

import (
	"context"
	"testing"
	"time"

	"liquidity-bot/internal/config"
	"liquidity-bot/internal/market"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite(config.DatabaseConfig{InMemory: true, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPriceBook_RoundTrip(t *testing.T) {
	book := NewPriceBook(newTestStore(t))
	ctx := context.Background()

	rec := market.PriceRecord{
		LastTradePrice: 32100,
		LastClosePrice: 31800,
		SavedAt:        time.Now().UTC().Truncate(time.Second),
	}
	if err := book.SavePriceRecord(ctx, rec); err != nil {
		t.Fatalf("SavePriceRecord: %v", err)
	}

	got, ok, err := book.LoadPriceRecord(ctx)
	if err != nil {
		t.Fatalf("LoadPriceRecord: %v", err)
	}
	if !ok {
		t.Fatal("expected a stored record")
	}
	if got.LastTradePrice != rec.LastTradePrice || got.LastClosePrice != rec.LastClosePrice {
		t.Errorf("record mismatch: got %+v want %+v", got, rec)
	}
}

func TestPriceBook_OverwritesSingleRow(t *testing.T) {
	book := NewPriceBook(newTestStore(t))
	ctx := context.Background()

	for _, price := range []int64{100, 200, 300} {
		rec := market.PriceRecord{LastTradePrice: price, SavedAt: time.Now().UTC()}
		if err := book.SavePriceRecord(ctx, rec); err != nil {
			t.Fatalf("SavePriceRecord(%d): %v", price, err)
		}
	}

	got, ok, err := book.LoadPriceRecord(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadPriceRecord: ok=%v err=%v", ok, err)
	}
	if got.LastTradePrice != 300 {
		t.Errorf("expected latest write to win, got %d", got.LastTradePrice)
	}
}

func TestPriceBook_EmptyIsNotAnError(t *testing.T) {
	book := NewPriceBook(newTestStore(t))

	_, ok, err := book.LoadPriceRecord(context.Background())
	if err != nil {
		t.Fatalf("LoadPriceRecord: %v", err)
	}
	if ok {
		t.Fatal("fresh store must report no record")
	}
}
