package market

import (
	"context"
	"sync"
)

// Gate 是开市/休市闸门。休市期间决策循环在 Wait 上阻塞，
// 开市后立即放行，避免轮询。
type Gate struct {
	mu   sync.Mutex
	open bool
	ch   chan struct{} // 开市时被 close
}

// NewGate 创建闸门，open 指定初始状态。
func NewGate(open bool) *Gate {
	g := &Gate{open: open, ch: make(chan struct{})}
	if open {
		close(g.ch)
	}
	return g
}

// Open 放行所有等待者。重复调用无副作用。
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		g.open = true
		close(g.ch)
	}
}

// Close 关闭闸门，后续 Wait 将阻塞。
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		g.open = false
		g.ch = make(chan struct{})
	}
}

// IsOpen 返回当前状态。
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Wait 阻塞直至闸门开启或 ctx 结束。
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
