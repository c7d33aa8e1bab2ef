package generator

import (
	"liquidity-bot/internal/order"
	"liquidity-bot/internal/regime"
)

const (
	// 热身期点差填充的阈值与档位上限放宽，数量区间放大。
	warmupSpreadThresholdTicks = 5
	warmupSpreadMinLevels      = 8
	warmupSpreadMaxLevels      = 30

	spreadMinLevels = 2
	spreadMaxLevels = 14
)

// spreadFiller 在买一与卖一之间逐档补挂限价单，压缩可见点差。
// 仅当盘口双边存在且点差不低于阈值时产出；
// 单边行情下偏向趋势方向并强制在数档外补一笔对手报价，
// 中性行情下每档方向独立随机。
func (g *Generator) spreadFiller(in Input) []order.Intent {
	if in.Depth == nil {
		return nil
	}
	bid, okBid := in.Depth.BestBid()
	ask, okAsk := in.Depth.BestAsk()
	if !okBid || !okAsk {
		return nil
	}

	tick := g.scale.TickSize
	threshold := g.cfg.SpreadThresholdTicks
	minLevels, maxLevels := int64(spreadMinLevels), int64(spreadMaxLevels)
	if in.InWarmup {
		threshold = warmupSpreadThresholdTicks
		minLevels, maxLevels = warmupSpreadMinLevels, warmupSpreadMaxLevels
	}

	spread := ask.Price - bid.Price
	if spread < tick*threshold {
		return nil
	}

	levels := spread/tick - 1
	if levels < minLevels {
		levels = minLevels
	}
	if levels > maxLevels {
		levels = maxLevels
	}

	mult := in.Strength.DepthMultiplier()
	out := make([]order.Intent, 0, 2*levels)

	for i := int64(1); i < levels; i++ {
		px := g.scale.NearestTick(bid.Price + i*tick)

		switch in.Mode {
		case regime.ModeTrendUp:
			qty := g.scaleQty(g.randInt(750, 1500), mult)
			out = append(out, g.fillerLimit(order.SideBuy, px, qty, in.InWarmup))
			counterPx := g.scale.NearestTick(px + g.randInt(2, 8)*tick)
			out = append(out, g.fillerLimit(order.SideSell, counterPx, qty, in.InWarmup))

		case regime.ModeTrendDown:
			qty := g.scaleQty(g.randInt(750, 1500), mult)
			out = append(out, g.fillerLimit(order.SideSell, px, qty, in.InWarmup))
			counterPx := g.scale.NearestTick(px - g.randInt(2, 8)*tick)
			out = append(out, g.fillerLimit(order.SideBuy, counterPx, qty, in.InWarmup))

		default:
			lo, hi := int64(750), int64(1500)
			if in.InWarmup {
				lo, hi = 2400, 5000
			}
			qty := g.scaleQty(g.randInt(lo, hi), mult)
			out = append(out, g.fillerLimit(g.randSide(), px, qty, in.InWarmup))
		}
	}

	return out
}

func (g *Generator) fillerLimit(side order.Side, price, qty int64, persistent bool) order.Intent {
	in := order.Limit(side, price, qty)
	in.Persistent = persistent
	return in
}
