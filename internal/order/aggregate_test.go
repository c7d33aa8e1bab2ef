package order

import (
	"testing"
	"time"
)

func TestAggregate_SumsQuantitiesPerPriceLevel(t *testing.T) {
	intents := []Intent{
		Limit(SideBuy, 100, 5),
		{Side: SideBuy, Kind: KindLimit, Price: 100, Quantity: 7, Tag: "W"},
	}

	out := Aggregate(intents)
	if len(out) != 1 {
		t.Fatalf("expected 1 aggregated order, got %d", len(out))
	}
	got := out[0]
	if got.Side != SideBuy || got.Kind != KindLimit || got.Price != 100 {
		t.Errorf("unexpected key fields: %+v", got)
	}
	if got.Quantity != 12 {
		t.Errorf("expected quantity 12, got %d", got.Quantity)
	}
	if got.Tag != "W" {
		t.Errorf("expected tag W, got %q", got.Tag)
	}
}

func TestAggregate_MarketOrdersIgnorePrice(t *testing.T) {
	intents := []Intent{
		Market(SideSell, 10),
		Market(SideSell, 15),
		Market(SideBuy, 3),
	}

	out := Aggregate(intents)
	if len(out) != 2 {
		t.Fatalf("expected 2 aggregated orders, got %d", len(out))
	}
	if out[0].Side != SideSell || out[0].Quantity != 25 {
		t.Errorf("unexpected first group: %+v", out[0])
	}
	if out[1].Side != SideBuy || out[1].Quantity != 3 {
		t.Errorf("unexpected second group: %+v", out[1])
	}
}

func TestAggregate_PersistentIsLogicalOr(t *testing.T) {
	intents := []Intent{
		{Side: SideBuy, Kind: KindLimit, Price: 200, Quantity: 1},
		{Side: SideBuy, Kind: KindLimit, Price: 200, Quantity: 1, Persistent: true},
		{Side: SideBuy, Kind: KindLimit, Price: 200, Quantity: 1},
	}

	out := Aggregate(intents)
	if len(out) != 1 {
		t.Fatalf("expected 1 aggregated order, got %d", len(out))
	}
	if !out[0].Persistent {
		t.Errorf("expected persistent=true when any input is persistent")
	}

	out = Aggregate(intents[:1])
	if out[0].Persistent {
		t.Errorf("expected persistent=false when no input is persistent")
	}
}

func TestAggregate_LastNonEmptyTagAndExpiryWin(t *testing.T) {
	intents := []Intent{
		{Side: SideSell, Kind: KindLimit, Price: 300, Quantity: 1, Tag: "A", ExpireAfter: time.Minute},
		{Side: SideSell, Kind: KindLimit, Price: 300, Quantity: 1},
		{Side: SideSell, Kind: KindLimit, Price: 300, Quantity: 1, Tag: "B"},
	}

	out := Aggregate(intents)
	if out[0].Tag != "B" {
		t.Errorf("expected last non-empty tag B, got %q", out[0].Tag)
	}
	if out[0].ExpireAfter != time.Minute {
		t.Errorf("expected expiry to survive empty later values, got %v", out[0].ExpireAfter)
	}
}

func TestAggregate_PreservesFirstSeenOrder(t *testing.T) {
	intents := []Intent{
		Limit(SideBuy, 110, 1),
		Limit(SideSell, 120, 1),
		Limit(SideBuy, 110, 1),
		Market(SideBuy, 2),
	}

	out := Aggregate(intents)
	if len(out) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(out))
	}
	if out[0].Price != 110 || out[1].Price != 120 || out[2].Kind != KindMarket {
		t.Errorf("group order not preserved: %+v", out)
	}
}
