package monitor

import (
	"sync"

	talib "github.com/markcheno/go-talib"
)

const (
	statsWindow   = 256
	smaPeriod     = 20
	momentumSpan  = 10
	minSmaSamples = smaPeriod
	minMomSamples = momentumSpan + 1
)

// Stats 维护最近成交价的环形窗口并计算滚动指标。
// Observe 由行情协程调用，Summary 由监控接口调用。
type Stats struct {
	mu     sync.Mutex
	prices []float64
	next   int
	filled bool
}

// StatsSummary 是 /status 返回的指标快照。
type StatsSummary struct {
	Samples  int     `json:"samples"`
	Last     float64 `json:"last"`
	SMA      float64 `json:"sma"`
	Momentum float64 `json:"momentum"`
}

// NewStats 创建统计器。
func NewStats() *Stats {
	return &Stats{prices: make([]float64, statsWindow)}
}

// Observe 记录一笔成交价。
func (s *Stats) Observe(price int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[s.next] = float64(price)
	s.next++
	if s.next == len(s.prices) {
		s.next = 0
		s.filled = true
	}
}

// Summary 计算当前窗口上的滚动指标。
// 样本不足时对应指标为 0。
func (s *Stats) Summary() StatsSummary {
	series := s.ordered()

	out := StatsSummary{Samples: len(series)}
	if len(series) == 0 {
		return out
	}
	out.Last = series[len(series)-1]

	if len(series) >= minSmaSamples {
		sma := talib.Sma(series, smaPeriod)
		out.SMA = sma[len(sma)-1]
	}
	if len(series) >= minMomSamples {
		mom := talib.Mom(series, momentumSpan)
		out.Momentum = mom[len(mom)-1]
	}
	return out
}

// ordered 返回按时间先后排列的窗口副本。
func (s *Stats) ordered() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.filled {
		out := make([]float64, s.next)
		copy(out, s.prices[:s.next])
		return out
	}

	out := make([]float64, 0, len(s.prices))
	out = append(out, s.prices[s.next:]...)
	out = append(out, s.prices[:s.next]...)
	return out
}
