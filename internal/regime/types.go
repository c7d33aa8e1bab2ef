package regime

// Mode 表示市场行情模式。
type Mode string

const (
	ModeNeutral   Mode = "neutral"
	ModeTrendUp   Mode = "trend_up"
	ModeTrendDown Mode = "trend_down"
)

// Trending 判断是否处于单边行情。
func (m Mode) Trending() bool {
	return m == ModeTrendUp || m == ModeTrendDown
}

// Strength 表示单边行情强度，仅在非中性模式下有意义。
type Strength string

const (
	StrengthNone   Strength = "none"
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// TrendMultiplier 返回趋势行情下委托数量与档位距离的放大系数。
// 上行行情的 medium/weak 档更激进，与下行不对称。
func (s Strength) TrendMultiplier(mode Mode) float64 {
	if mode == ModeTrendUp {
		switch s {
		case StrengthStrong:
			return 2.4
		case StrengthMedium:
			return 1.8
		case StrengthWeak:
			return 1.5
		}
		return 1.0
	}
	switch s {
	case StrengthStrong:
		return 2.4
	case StrengthMedium:
		return 1.5
	case StrengthWeak:
		return 1.1
	}
	return 1.0
}

// DepthMultiplier 返回点差填充单的数量放大系数。
func (s Strength) DepthMultiplier() float64 {
	switch s {
	case StrengthStrong:
		return 2.4
	case StrengthMedium:
		return 1.5
	case StrengthWeak:
		return 1.1
	}
	return 1.0
}

// Liquidity 描述当前流动性档位，决定决策循环的节奏。
type Liquidity string

const (
	LiquidityLow    Liquidity = "low"
	LiquidityNormal Liquidity = "normal"
	LiquidityHigh   Liquidity = "high"
)
