package regime

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Settings 控制单边行情的触发与持续。
type Settings struct {
	// TriggerProbability 每个决策周期触发单边行情的概率。
	TriggerProbability float64
	DurationMin        time.Duration
	DurationMax        time.Duration
	// UpwardBias 基准价高于低价区时的上行方向偏置。
	UpwardBias float64
}

// State 是状态机在某个决策周期的完整输出。
type State struct {
	Mode      Mode
	Strength  Strength
	Until     time.Time
	Liquidity Liquidity
}

// Machine 是市场模式状态机：中性与单边行情之间按概率切换，
// 单边行情带强度与到期时间，到期前保持粘滞。
// 仅供决策协程调用，不做并发保护。
type Machine struct {
	cfg    Settings
	rng    *rand.Rand
	logger *zap.Logger
	state  State
}

// NewMachine 创建状态机，初始为中性。
func NewMachine(cfg Settings, rng *rand.Rand, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		cfg:    cfg,
		rng:    rng,
		logger: logger,
		state: State{
			Mode:      ModeNeutral,
			Strength:  StrengthNone,
			Liquidity: LiquidityNormal,
		},
	}
}

// State 返回上一次 Advance 之后的状态。
func (m *Machine) State() State { return m.state }

// Advance 推进一个决策周期并返回新状态。
// 热身窗口内无条件回到中性；中性或已到期时按概率开启新行情，
// 方向依据基准价分层偏置，持续时间在配置区间内均匀抽取，
// 强度按固定权重抽取；否则保持现状直至到期。
func (m *Machine) Advance(now time.Time, refPrice int64, inWarmup bool) State {
	if inWarmup {
		if m.state.Mode != ModeNeutral {
			m.logger.Info("市场状态切换：中性（热身窗口强制）")
		}
		m.state.Mode = ModeNeutral
		m.state.Strength = StrengthNone
		m.state.Until = time.Time{}
		m.rollLiquidity()
		return m.state
	}

	if m.state.Mode == ModeNeutral || now.After(m.state.Until) {
		if m.rng.Float64() < m.cfg.TriggerProbability {
			m.startTrend(now, refPrice)
		} else {
			if m.state.Mode != ModeNeutral {
				m.logger.Info("市场状态切换：中性（横盘）")
			}
			m.state.Mode = ModeNeutral
			m.state.Strength = StrengthNone
			m.state.Until = time.Time{}
		}
	}

	m.rollLiquidity()
	return m.state
}

func (m *Machine) startTrend(now time.Time, refPrice int64) {
	bias := m.cfg.UpwardBias
	switch {
	case refPrice <= 10:
		bias = 0.9
	case refPrice <= 50:
		bias = 0.8
	}

	mode := ModeTrendDown
	if m.rng.Float64() < bias {
		mode = ModeTrendUp
	}

	span := m.cfg.DurationMax - m.cfg.DurationMin
	duration := m.cfg.DurationMin
	if span > 0 {
		seconds := int64(span/time.Second) + 1
		duration += time.Duration(m.rng.Int63n(seconds)) * time.Second
	}

	m.state.Mode = mode
	m.state.Strength = m.rollStrength()
	m.state.Until = now.Add(duration)

	m.logger.Info("市场状态切换：单边行情",
		zap.String("mode", string(mode)),
		zap.String("strength", string(m.state.Strength)),
		zap.Duration("duration", duration),
	)
}

// rollStrength 按固定权重 weak:0.5 medium:0.3 strong:0.2 抽取强度。
func (m *Machine) rollStrength() Strength {
	r := m.rng.Float64()
	switch {
	case r < 0.5:
		return StrengthWeak
	case r < 0.8:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}

// rollLiquidity 按强度映射流动性档位；中性时按权重随机。
func (m *Machine) rollLiquidity() {
	switch m.state.Strength {
	case StrengthStrong:
		m.state.Liquidity = LiquidityHigh
	case StrengthMedium:
		m.state.Liquidity = LiquidityNormal
	case StrengthWeak:
		m.state.Liquidity = LiquidityLow
	default:
		r := m.rng.Float64()
		switch {
		case r < 0.6:
			m.state.Liquidity = LiquidityNormal
		case r < 0.85:
			m.state.Liquidity = LiquidityLow
		default:
			m.state.Liquidity = LiquidityHigh
		}
	}
}

// TickInterval 返回下一个决策周期的随机间隔：
// 热身 0.8–1.2s，之后按流动性档位取 low 0.6–0.8s、normal 0.4–0.6s、high 0.25–0.4s。
func (m *Machine) TickInterval(inWarmup bool) time.Duration {
	if inWarmup {
		return m.randDuration(800, 1200)
	}
	switch m.state.Liquidity {
	case LiquidityLow:
		return m.randDuration(600, 800)
	case LiquidityHigh:
		return m.randDuration(250, 400)
	default:
		return m.randDuration(400, 600)
	}
}

func (m *Machine) randDuration(minMillis, maxMillis int64) time.Duration {
	ms := minMillis + m.rng.Int63n(maxMillis-minMillis+1)
	return time.Duration(ms) * time.Millisecond
}
