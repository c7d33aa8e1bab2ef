package app

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"liquidity-bot/internal/generator"
	"liquidity-bot/internal/lifecycle"
	"liquidity-bot/internal/market"
	"liquidity-bot/internal/monitor"
	"liquidity-bot/internal/order"
	"liquidity-bot/internal/regime"
)

// 批次流水的抽样间隔：失败批次全记，其余每 N 个周期记一条。
const tickJournalEvery = 50

// orchestrator 驱动决策循环：等待开市、推进行情模式、
// 生成并聚合委托、并发提交、择机撤对手盘、按流动性节奏休眠。
type orchestrator struct {
	tracker *market.Tracker
	machine *regime.Machine
	gen     *generator.Generator
	manager *lifecycle.Manager
	journal *monitor.Service
	logger  *zap.Logger

	prevState regime.State
	ticks     uint64

	// 供监控接口跨协程读取
	published atomic.Pointer[regime.State]
}

func newOrchestrator(
	tracker *market.Tracker,
	machine *regime.Machine,
	gen *generator.Generator,
	manager *lifecycle.Manager,
	journal *monitor.Service,
	logger *zap.Logger,
) *orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &orchestrator{
		tracker: tracker,
		machine: machine,
		gen:     gen,
		manager: manager,
		journal: journal,
		logger:  logger,
		prevState: regime.State{
			Mode:      regime.ModeNeutral,
			Strength:  regime.StrengthNone,
			Liquidity: regime.LiquidityNormal,
		},
	}
	initial := o.prevState
	o.published.Store(&initial)
	return o
}

// CurrentState 返回最近一次决策周期发布的行情状态。
func (o *orchestrator) CurrentState() regime.State {
	return *o.published.Load()
}

// Run 运行决策循环直到 ctx 结束。
func (o *orchestrator) Run(ctx context.Context) error {
	for {
		if err := o.tracker.WaitOpen(ctx); err != nil {
			return err
		}

		inWarmup := o.tick(ctx)

		interval := o.machine.TickInterval(inWarmup)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// tick 执行一个决策周期，返回周期内是否处于热身窗口。
func (o *orchestrator) tick(ctx context.Context) bool {
	now := time.Now()
	inWarmup := o.tracker.InWarmup(now)
	ref := o.tracker.ReferencePrice()

	state := o.machine.Advance(now, ref, inWarmup)
	if state.Mode != o.prevState.Mode || state.Strength != o.prevState.Strength {
		o.journal.RecordModeChange(ctx, o.prevState, state, ref)
	}
	o.prevState = state
	published := state
	o.published.Store(&published)

	intents := o.gen.Decide(generator.Input{
		Mode:     state.Mode,
		Strength: state.Strength,
		RefPrice: ref,
		Depth:    o.tracker.Depth(),
		InWarmup: inWarmup,
	})
	if len(intents) == 0 {
		return inWarmup
	}

	orders := order.Aggregate(intents)

	whales := 0
	for _, ord := range orders {
		if ord.Tag == order.TagWhale {
			whales++
		}
	}
	if whales > 0 {
		o.journal.RecordWhaleBurst(ctx, whales, ref)
	}

	submitted, failed := o.manager.Submit(ctx, orders)
	o.manager.MaybeCancelCounterparty(ctx, state.Mode, o.tracker.Depth())

	o.ticks++
	if failed > 0 || o.ticks%tickJournalEvery == 0 {
		o.journal.RecordTickBatch(ctx, monitor.TickBatchPayload{
			Mode:           state.Mode,
			Strength:       state.Strength,
			Liquidity:      state.Liquidity,
			ReferencePrice: ref,
			Intents:        len(intents),
			Submitted:      submitted,
			Failed:         failed,
		})
	}
	if failed > 0 {
		o.logger.Warn("本周期存在失败报单",
			zap.Int("submitted", submitted),
			zap.Int("failed", failed),
		)
	}

	return inWarmup
}
