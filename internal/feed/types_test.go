package feed

import (
	"reflect"
	"testing"

	"liquidity-bot/internal/market"
)

func TestDecodeDepth_MixedOrderIDShapes(t *testing.T) {
	data := []byte(`{
		"depth": {
			"bids": [
				[31900, 120, ["b1", {"order_id": "b2"}]],
				[31800, 40]
			],
			"asks": [
				[32000, 55, [{"order_id": "a1"}, "", {"note": "ignored"}]]
			]
		}
	}`)

	d, err := decodeDepth(data)
	if err != nil {
		t.Fatalf("decodeDepth: %v", err)
	}

	wantBids := []market.DepthLevel{
		{Price: 31900, Quantity: 120, OrderIDs: []string{"b1", "b2"}},
		{Price: 31800, Quantity: 40},
	}
	if !reflect.DeepEqual(d.Bids, wantBids) {
		t.Errorf("bids mismatch: got %+v want %+v", d.Bids, wantBids)
	}

	if len(d.Asks) != 1 {
		t.Fatalf("expected 1 ask level, got %d", len(d.Asks))
	}
	if got := d.Asks[0].OrderIDs; !reflect.DeepEqual(got, []string{"a1"}) {
		t.Errorf("ask order ids mismatch: got %v", got)
	}
}

func TestDecodeDepth_EmptyBook(t *testing.T) {
	d, err := decodeDepth([]byte(`{"depth": {"bids": [], "asks": []}}`))
	if err != nil {
		t.Fatalf("decodeDepth: %v", err)
	}
	if len(d.Bids) != 0 || len(d.Asks) != 0 {
		t.Errorf("expected empty book, got %+v", d)
	}
}

func TestDecodeDepth_ShortLevelFails(t *testing.T) {
	if _, err := decodeDepth([]byte(`{"depth": {"bids": [[31900]], "asks": []}}`)); err == nil {
		t.Fatal("level with a single field must fail")
	}
}

func TestDecodeLedger(t *testing.T) {
	trades, err := decodeLedger([]byte(`{"ledger": [{"price": 32100}, {"price": 32050}]}`))
	if err != nil {
		t.Fatalf("decodeLedger: %v", err)
	}
	want := []market.Trade{{Price: 32100}, {Price: 32050}}
	if !reflect.DeepEqual(trades, want) {
		t.Errorf("trades mismatch: got %+v want %+v", trades, want)
	}
}

func TestDecodeSession(t *testing.T) {
	status, err := decodeSession([]byte(`{"session": "closed"}`))
	if err != nil {
		t.Fatalf("decodeSession: %v", err)
	}
	if status != market.SessionClosed {
		t.Errorf("expected closed, got %q", status)
	}
}

type recordingHandler struct {
	depths   []market.Depth
	ledgers  [][]market.Trade
	sessions []string
}

func (h *recordingHandler) HandleDepth(d market.Depth)            { h.depths = append(h.depths, d) }
func (h *recordingHandler) HandleLedger(trades []market.Trade)    { h.ledgers = append(h.ledgers, trades) }
func (h *recordingHandler) HandleSession(status string)           { h.sessions = append(h.sessions, status) }

func TestDispatch_RoutesByEvent(t *testing.T) {
	h := &recordingHandler{}
	c := NewClient(Settings{URL: "ws://unused"}, h, nil)

	c.dispatch([]byte(`{"event": "depth", "data": {"depth": {"bids": [[100, 5]], "asks": []}}}`))
	c.dispatch([]byte(`{"event": "ledger", "data": {"ledger": [{"price": 100}]}}`))
	c.dispatch([]byte(`{"event": "session", "data": {"session": "open"}}`))
	c.dispatch([]byte(`{"event": "heartbeat", "data": {}}`))
	c.dispatch([]byte(`not json`))

	if len(h.depths) != 1 || h.depths[0].Bids[0].Price != 100 {
		t.Errorf("depth not routed: %+v", h.depths)
	}
	if len(h.ledgers) != 1 || h.ledgers[0][0].Price != 100 {
		t.Errorf("ledger not routed: %+v", h.ledgers)
	}
	if len(h.sessions) != 1 || h.sessions[0] != "open" {
		t.Errorf("session not routed: %+v", h.sessions)
	}
}
