package generator

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"liquidity-bot/internal/market"
	"liquidity-bot/internal/order"
	"liquidity-bot/internal/regime"
)

// Settings 控制生成器行为。
type Settings struct {
	// WhaleRatio 中性行情下触发大户扫单的概率。
	WhaleRatio float64
	// UpwardBias 横盘微趋势的上行权重。
	UpwardBias float64
	// SpreadThresholdTicks 点差填充的触发阈值（档位数）。
	SpreadThresholdTicks int64
	// WarmupExpiry 热身期限价单的自动撤单延迟。
	WarmupExpiry time.Duration
}

// Input 是单个决策周期的只读输入。
type Input struct {
	Mode     regime.Mode
	Strength regime.Strength
	RefPrice int64
	Depth    *market.Depth
	InWarmup bool
}

// driftTrend 是横盘时的微趋势。
type driftTrend string

const (
	driftUp      driftTrend = "slight_up"
	driftDown    driftTrend = "slight_down"
	driftNeutral driftTrend = "neutral"
)

// Generator 把市场状态转换为一批委托意图。
// 产出的每个价格都经过档位吸附与下限保护。
// 仅供决策协程调用，不做并发保护。
type Generator struct {
	scale  market.PriceScale
	cfg    Settings
	rng    *rand.Rand
	logger *zap.Logger

	prevDrift driftTrend
}

// New 创建生成器。
func New(scale market.PriceScale, cfg Settings, rng *rand.Rand, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{scale: scale, cfg: cfg, rng: rng, logger: logger}
}

// Decide 按当前行情分支产出委托意图。分支互斥，按优先级：
// 热身铺单 > 单边行情 > 大户扫单 > 横盘漂移；
// 除热身外的分支在盘口双边可用时追加点差填充单。
func (g *Generator) Decide(in Input) []order.Intent {
	if in.InWarmup {
		intents := g.warmupOrders(in.RefPrice)
		intents = append(intents, g.spreadFiller(in)...)
		// 热身期所有限价单统一挂自动撤单延迟，避免旧流动性永久残留
		for i := range intents {
			if intents[i].Kind == order.KindLimit {
				intents[i].ExpireAfter = g.cfg.WarmupExpiry
			}
		}
		return intents
	}

	var intents []order.Intent
	switch {
	case in.Mode.Trending():
		intents = g.trendOrders(in)
	case g.rng.Float64() < g.cfg.WhaleRatio:
		intents = g.whaleOrders(in.RefPrice)
	default:
		intents = g.driftOrders(in.RefPrice)
	}

	return append(intents, g.spreadFiller(in)...)
}

// warmupOrders 在开盘热身期向两侧灌注持久流动性：
// 25–40 组双边限价单（1–60 档随机偏移，400–800 量），
// 外加 3–8 笔中等市价单与 1–3 笔小市价单制造成交。
func (g *Generator) warmupOrders(ref int64) []order.Intent {
	pairs := g.randInt(25, 40)
	out := make([]order.Intent, 0, 2*pairs+11)

	for i := int64(0); i < pairs; i++ {
		buyPx := g.scale.NearestTick(ref - g.randInt(1, 60)*g.scale.TickSize)
		buy := order.Limit(order.SideBuy, buyPx, g.randInt(400, 800))
		buy.Persistent = true
		out = append(out, buy)

		sellPx := g.scale.NearestTick(ref + g.randInt(1, 60)*g.scale.TickSize)
		sell := order.Limit(order.SideSell, sellPx, g.randInt(400, 800))
		sell.Persistent = true
		out = append(out, sell)
	}

	for i, n := int64(0), g.randInt(3, 8); i < n; i++ {
		out = append(out, order.Market(g.randSide(), g.randInt(50, 150)))
	}
	for i, n := int64(0), g.randInt(1, 3); i < n; i++ {
		out = append(out, order.Market(g.randSide(), g.randInt(10, 50)))
	}

	return out
}

// trendOrders 在单边行情中沿趋势方向逐步铺压单，
// 同时在更远处留一层较薄的对手报价。
func (g *Generator) trendOrders(in Input) []order.Intent {
	mult := in.Strength.TrendMultiplier(in.Mode)
	n := int(float64(g.randInt(2, 5)) * mult)

	dir := int64(1)
	push, counter := order.SideBuy, order.SideSell
	if in.Mode == regime.ModeTrendDown {
		dir = -1
		push, counter = order.SideSell, order.SideBuy
	}

	out := make([]order.Intent, 0, 2*n)
	for i := 0; i < n; i++ {
		offset := int64(mult*float64(g.randInt(10, 30))) * g.scale.TickSize
		px := g.scale.NearestTick(in.RefPrice + dir*offset)
		out = append(out, order.Limit(push, px, g.scaleQty(g.randInt(7, 150), mult)))
	}
	for i := 0; i < n; i++ {
		offset := int64(mult*float64(g.randInt(12, 35))) * g.scale.TickSize
		px := g.scale.NearestTick(in.RefPrice + dir*offset)
		out = append(out, order.Limit(counter, px, g.scaleQty(g.randInt(1, 50), mult)))
	}
	return out
}

// whaleOrders 模拟单个大户：先连发市价扫单，
// 随后在同方向近端挂接力单，在对侧远端挂获利单。
func (g *Generator) whaleOrders(ref int64) []order.Intent {
	bullish := g.rng.Float64() < 0.5
	base := g.randInt(250, 500)
	mult := g.randInt(2, 4)

	dir := int64(1)
	sweep := order.SideBuy
	if !bullish {
		dir = -1
		sweep = order.SideSell
	}
	rest := sweep.Opposite()

	g.logger.Info("检测到大户活动",
		zap.Bool("bullish", bullish),
		zap.Int64("base_quantity", base),
		zap.Int64("multiplier", mult),
	)

	out := make([]order.Intent, 0, 3*mult)
	for i := int64(0); i < mult; i++ {
		in := order.Market(sweep, base)
		in.Tag = order.TagWhale
		out = append(out, in)
	}
	for i := int64(0); i < mult; i++ {
		px := g.scale.NearestTick(ref + dir*g.randInt(5, 25)*(i+1))
		in := order.Limit(sweep, px, g.randInt(base/2, base))
		in.Tag = order.TagWhale
		out = append(out, in)
	}
	for i := int64(0); i < mult; i++ {
		px := g.scale.NearestTick(ref + dir*g.randInt(30, 80)*(i+1))
		in := order.Limit(rest, px, g.randInt(base/3, base))
		in.Tag = order.TagWhale
		out = append(out, in)
	}
	return out
}

// driftOrders 横盘漂移：抽取微趋势后在基准价两侧对称铺 2–4 层，
// 受偏好方向的不对称数量系数影响，并以 30% 概率补一笔小市价单促成交。
func (g *Generator) driftOrders(ref int64) []order.Intent {
	trend := g.rollDrift()
	if trend != g.prevDrift {
		g.logger.Info("市场状态切换：横盘", zap.String("drift", string(trend)))
		g.prevDrift = trend
	}

	buyMult, sellMult := 1.0, 1.0
	switch trend {
	case driftUp:
		buyMult, sellMult = 2.5, 0.4
	case driftDown:
		buyMult, sellMult = 0.4, 2.5
	}

	layers := g.randInt(2, 4)
	out := make([]order.Intent, 0, 2*layers+1)
	for i := int64(1); i <= layers; i++ {
		base := float64(g.randInt(20, 60))

		buyQty := g.jitterQty(base * buyMult)
		buyPx := g.scale.NearestTick(ref - i*g.scale.TickSize)
		out = append(out, order.Limit(order.SideBuy, buyPx, buyQty))

		sellQty := g.jitterQty(base * sellMult)
		sellPx := g.scale.NearestTick(ref + i*g.scale.TickSize)
		out = append(out, order.Limit(order.SideSell, sellPx, sellQty))
	}

	if g.rng.Float64() < 0.3 {
		side := g.randSide()
		switch trend {
		case driftUp:
			side = order.SideBuy
		case driftDown:
			side = order.SideSell
		}
		out = append(out, order.Market(side, g.randInt(10, 50)))
	}
	return out
}

func (g *Generator) rollDrift() driftTrend {
	weights := []float64{g.cfg.UpwardBias, 1 - g.cfg.UpwardBias, 0.2}
	switch g.weightedIndex(weights) {
	case 0:
		return driftUp
	case 1:
		return driftDown
	default:
		return driftNeutral
	}
}

// weightedIndex 按权重抽取下标，权重无需归一化。
func (g *Generator) weightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func (g *Generator) randInt(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.Int63n(hi-lo+1)
}

func (g *Generator) randSide() order.Side {
	if g.rng.Float64() < 0.5 {
		return order.SideBuy
	}
	return order.SideSell
}

func (g *Generator) scaleQty(base int64, mult float64) int64 {
	qty := int64(float64(base) * mult)
	if qty < 1 {
		qty = 1
	}
	return qty
}

// jitterQty 给数量加 ±20% 抖动并保证至少为 1。
func (g *Generator) jitterQty(base float64) int64 {
	qty := int64(base * (0.8 + g.rng.Float64()*0.4))
	if qty < 1 {
		qty = 1
	}
	return qty
}
