package generator

import (
	"math/rand"
	"testing"
	"time"

	"liquidity-bot/internal/market"
	"liquidity-bot/internal/order"
	"liquidity-bot/internal/regime"
)

func testGenerator(seed int64, cfg Settings) *Generator {
	scale := market.PriceScale{TickSize: 10, MinPrice: 10}
	return New(scale, cfg, rand.New(rand.NewSource(seed)), nil)
}

func defaultSettings() Settings {
	return Settings{
		WhaleRatio:           0.07,
		UpwardBias:           0.5,
		SpreadThresholdTicks: 10,
		WarmupExpiry:         1800 * time.Second,
	}
}

func assertPriceInvariants(t *testing.T, intents []order.Intent) {
	t.Helper()
	for _, in := range intents {
		if in.Quantity <= 0 {
			t.Fatalf("non-positive quantity: %+v", in)
		}
		if in.Kind == order.KindMarket {
			if in.Price != 0 {
				t.Fatalf("market order carries price: %+v", in)
			}
			continue
		}
		if in.Price%10 != 0 || in.Price < 10 {
			t.Fatalf("limit price violates tick/floor invariant: %+v", in)
		}
	}
}

func TestDecide_PriceInvariantsAcrossBranchesAndSeeds(t *testing.T) {
	depth := &market.Depth{
		Bids: []market.DepthLevel{{Price: 31900, Quantity: 10}},
		Asks: []market.DepthLevel{{Price: 32100, Quantity: 10}},
	}
	inputs := []Input{
		{Mode: regime.ModeNeutral, Strength: regime.StrengthNone, RefPrice: 32000, Depth: depth},
		{Mode: regime.ModeTrendUp, Strength: regime.StrengthStrong, RefPrice: 32000, Depth: depth},
		{Mode: regime.ModeTrendDown, Strength: regime.StrengthWeak, RefPrice: 20, Depth: depth},
		{Mode: regime.ModeNeutral, Strength: regime.StrengthNone, RefPrice: 32000, Depth: depth, InWarmup: true},
	}

	for seed := int64(0); seed < 20; seed++ {
		for _, in := range inputs {
			g := testGenerator(seed, defaultSettings())
			assertPriceInvariants(t, g.Decide(in))
		}
	}
}

func TestDecide_WarmupFloodsBothSidesWithPersistentQuotes(t *testing.T) {
	g := testGenerator(42, defaultSettings())
	intents := g.Decide(Input{
		// 热身分支无条件生效，与传入的行情模式无关
		Mode:     regime.ModeTrendUp,
		Strength: regime.StrengthStrong,
		RefPrice: 32000,
		InWarmup: true,
	})

	var buyLimits, sellLimits, markets int
	for _, in := range intents {
		switch in.Kind {
		case order.KindLimit:
			if !in.Persistent {
				t.Fatalf("warmup limit must be persistent: %+v", in)
			}
			if in.ExpireAfter != 1800*time.Second {
				t.Fatalf("warmup limit must carry 1800s expiry: %+v", in)
			}
			if in.Side == order.SideBuy {
				buyLimits++
			} else {
				sellLimits++
			}
		case order.KindMarket:
			markets++
			if in.Persistent || in.ExpireAfter != 0 {
				t.Fatalf("warmup market order must stay plain: %+v", in)
			}
		}
	}

	if buyLimits != sellLimits {
		t.Errorf("warmup quotes must be paired, got %d buys / %d sells", buyLimits, sellLimits)
	}
	if buyLimits < 25 || buyLimits > 40 {
		t.Errorf("expected 25–40 quote pairs, got %d", buyLimits)
	}
	if markets < 4 || markets > 11 {
		t.Errorf("expected 4–11 market orders, got %d", markets)
	}
}

func TestSpreadFiller_ThresholdBoundary(t *testing.T) {
	g := testGenerator(1, defaultSettings())

	wide := Input{
		Mode:     regime.ModeNeutral,
		Strength: regime.StrengthNone,
		RefPrice: 32000,
		Depth: &market.Depth{
			Bids: []market.DepthLevel{{Price: 31900}},
			Asks: []market.DepthLevel{{Price: 32000}}, // 恰好 10 档
		},
	}
	if got := g.spreadFiller(wide); len(got) == 0 {
		t.Errorf("spread equal to threshold must emit filler orders")
	}

	narrow := wide
	narrow.Depth = &market.Depth{
		Bids: []market.DepthLevel{{Price: 31910}},
		Asks: []market.DepthLevel{{Price: 32000}}, // 9 档，低于阈值
	}
	if got := g.spreadFiller(narrow); len(got) != 0 {
		t.Errorf("spread below threshold must emit nothing, got %d", len(got))
	}
}

func TestSpreadFiller_RequiresBothSides(t *testing.T) {
	g := testGenerator(1, defaultSettings())
	in := Input{
		Mode:     regime.ModeNeutral,
		RefPrice: 32000,
		Depth:    &market.Depth{Bids: []market.DepthLevel{{Price: 31900}}},
	}
	if got := g.spreadFiller(in); got != nil {
		t.Errorf("one-sided book must not produce filler orders")
	}
	in.Depth = nil
	if got := g.spreadFiller(in); got != nil {
		t.Errorf("missing book must not produce filler orders")
	}
}

func TestSpreadFiller_TrendingPairsForcedCounterQuote(t *testing.T) {
	g := testGenerator(5, defaultSettings())
	in := Input{
		Mode:     regime.ModeTrendUp,
		Strength: regime.StrengthMedium,
		RefPrice: 32000,
		Depth: &market.Depth{
			Bids: []market.DepthLevel{{Price: 31800}},
			Asks: []market.DepthLevel{{Price: 32000}},
		},
	}

	out := g.spreadFiller(in)
	if len(out) == 0 || len(out)%2 != 0 {
		t.Fatalf("trending filler must emit buy/sell pairs, got %d", len(out))
	}
	for i := 0; i < len(out); i += 2 {
		pressure, counter := out[i], out[i+1]
		if pressure.Side != order.SideBuy || counter.Side != order.SideSell {
			t.Fatalf("uptrend pair %d has wrong sides: %+v %+v", i/2, pressure, counter)
		}
		if counter.Price <= pressure.Price {
			t.Errorf("counter quote must rest beyond the pressured level: %+v %+v", pressure, counter)
		}
		if counter.Quantity != pressure.Quantity {
			t.Errorf("pair quantities should match: %+v %+v", pressure, counter)
		}
	}
}

func TestWhaleOrders_Structure(t *testing.T) {
	cfg := defaultSettings()
	cfg.WhaleRatio = 1.0 // 强制走大户分支
	g := testGenerator(9, cfg)

	intents := g.Decide(Input{Mode: regime.ModeNeutral, Strength: regime.StrengthNone, RefPrice: 32000})

	var sweeps, limits int
	var sweepSide order.Side
	for _, in := range intents {
		if in.Tag != order.TagWhale {
			t.Fatalf("whale burst intent missing tag: %+v", in)
		}
		if in.Kind == order.KindMarket {
			sweeps++
			sweepSide = in.Side
		} else {
			limits++
		}
	}
	if sweeps < 2 || sweeps > 4 {
		t.Errorf("expected 2–4 market sweeps, got %d", sweeps)
	}
	if limits != 2*sweeps {
		t.Errorf("expected %d limit orders, got %d", 2*sweeps, limits)
	}

	var sameSide, oppSide int
	for _, in := range intents {
		if in.Kind != order.KindLimit {
			continue
		}
		if in.Side == sweepSide {
			sameSide++
		} else {
			oppSide++
		}
	}
	if sameSide != sweeps || oppSide != sweeps {
		t.Errorf("expected %d relay and %d resting quotes, got %d/%d", sweeps, sweeps, sameSide, oppSide)
	}
}

func TestDriftOrders_FavoredSideGetsLargerQuantities(t *testing.T) {
	cfg := defaultSettings()
	cfg.UpwardBias = 1.0 // 锁定 slight_up 占优
	cfg.WhaleRatio = 0

	var buyTotal, sellTotal int64
	for seed := int64(0); seed < 40; seed++ {
		g := testGenerator(seed, cfg)
		// 权重 {1.0, 0, 0.2}，少数种子仍会落到 neutral，跳过
		if g.rollDrift() != driftUp {
			continue
		}
		g = testGenerator(seed, cfg)
		for _, in := range g.driftOrders(32000) {
			if in.Kind != order.KindLimit {
				continue
			}
			if in.Side == order.SideBuy {
				buyTotal += in.Quantity
			} else {
				sellTotal += in.Quantity
			}
		}
	}

	if buyTotal <= sellTotal {
		t.Errorf("slight_up drift must favor buy size, got buy=%d sell=%d", buyTotal, sellTotal)
	}
}

func TestTrendOrders_DirectionalPlacement(t *testing.T) {
	g := testGenerator(11, defaultSettings())
	in := Input{Mode: regime.ModeTrendUp, Strength: regime.StrengthStrong, RefPrice: 32000}

	for _, intent := range g.trendOrders(in) {
		if intent.Price <= in.RefPrice {
			t.Errorf("uptrend order must rest above reference: %+v", intent)
		}
	}

	in = Input{Mode: regime.ModeTrendDown, Strength: regime.StrengthStrong, RefPrice: 32000}
	for _, intent := range g.trendOrders(in) {
		if intent.Price >= in.RefPrice {
			t.Errorf("downtrend order must rest below reference: %+v", intent)
		}
	}
}
