package monitor

import (
	"math"
	"testing"
)

func TestStats_EmptySummary(t *testing.T) {
	s := NewStats()
	sum := s.Summary()
	if sum.Samples != 0 || sum.Last != 0 || sum.SMA != 0 || sum.Momentum != 0 {
		t.Errorf("empty stats must be all zero: %+v", sum)
	}
}

func TestStats_BelowPeriodSkipsIndicators(t *testing.T) {
	s := NewStats()
	for i := 0; i < 5; i++ {
		s.Observe(100)
	}
	sum := s.Summary()
	if sum.Samples != 5 || sum.Last != 100 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.SMA != 0 {
		t.Errorf("SMA needs %d samples, got value %f from 5", minSmaSamples, sum.SMA)
	}
}

func TestStats_ConstantSeries(t *testing.T) {
	s := NewStats()
	for i := 0; i < statsWindow; i++ {
		s.Observe(32000)
	}
	sum := s.Summary()
	if sum.Samples != statsWindow {
		t.Fatalf("expected full window, got %d", sum.Samples)
	}
	if math.Abs(sum.SMA-32000) > 1e-9 {
		t.Errorf("flat series SMA should be the price, got %f", sum.SMA)
	}
	if sum.Momentum != 0 {
		t.Errorf("flat series momentum should be 0, got %f", sum.Momentum)
	}
}

func TestStats_RingOverwritesOldest(t *testing.T) {
	s := NewStats()
	for i := 0; i < statsWindow+10; i++ {
		s.Observe(int64(i))
	}
	sum := s.Summary()
	if sum.Samples != statsWindow {
		t.Fatalf("window must stay bounded, got %d", sum.Samples)
	}
	if sum.Last != float64(statsWindow+9) {
		t.Errorf("last observation lost: %f", sum.Last)
	}
	// 线性序列的动量恒等于跨度
	if math.Abs(sum.Momentum-float64(momentumSpan)) > 1e-9 {
		t.Errorf("linear series momentum should be %d, got %f", momentumSpan, sum.Momentum)
	}
}
