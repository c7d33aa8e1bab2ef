package lifecycle

import (
	"context"
	"sync"
)

// Registry 登记所有脱离主循环的后台任务（定时撤单、对手盘撤单），
// 停机时统一取消并等待，保证没有任务活过进程生命周期。
type Registry struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry 以 parent 为根创建登记表。
func NewRegistry(parent context.Context) *Registry {
	ctx, cancel := context.WithCancel(parent)
	return &Registry{ctx: ctx, cancel: cancel}
}

// Go 启动一个受管后台任务。任务必须响应 ctx 取消。
func (r *Registry) Go(fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(r.ctx)
	}()
}

// Shutdown 取消全部任务并等待退出。
func (r *Registry) Shutdown() {
	r.cancel()
	r.wg.Wait()
}

// Wait 仅等待当前任务自然结束，不触发取消。
func (r *Registry) Wait() {
	r.wg.Wait()
}
