package market

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Settings 控制价格跟踪与开盘跳空行为。
type Settings struct {
	FallbackPrice  int64
	WarmupWindow   time.Duration
	GapProbability float64
	GapMinTicks    int64
	GapMaxTicks    int64
}

// PriceStore 抽象价格状态的持久化，读写失败均不致命。
type PriceStore interface {
	SavePriceRecord(ctx context.Context, rec PriceRecord) error
	LoadPriceRecord(ctx context.Context) (PriceRecord, bool, error)
}

// Tracker 维护最新成交价、收盘价、兜底价与交易时段状态。
// 行情协程是唯一写入者；决策协程只读。盘口快照整体替换，
// 其余价格字段由读写锁保护。
type Tracker struct {
	scale  PriceScale
	cfg    Settings
	store  PriceStore
	logger *zap.Logger
	rng    *rand.Rand // 仅行情协程使用

	gate  *Gate
	depth atomic.Pointer[Depth]

	mu        sync.RWMutex
	lastTrade int64
	lastClose int64
	fallback  int64
	openedAt  time.Time
}

// NewTracker 创建跟踪器并尝试恢复上次保存的价格状态。
// store 传 nil 时跳过持久化。
func NewTracker(scale PriceScale, cfg Settings, store PriceStore, rng *rand.Rand, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Tracker{
		scale:    scale,
		cfg:      cfg,
		store:    store,
		logger:   logger,
		rng:      rng,
		gate:     NewGate(true),
		fallback: cfg.FallbackPrice,
	}

	if store != nil {
		rec, ok, err := store.LoadPriceRecord(context.Background())
		switch {
		case err != nil:
			logger.Warn("恢复价格状态失败，使用默认值", zap.Error(err))
		case ok:
			t.lastTrade = rec.LastTradePrice
			t.lastClose = rec.LastClosePrice
			logger.Info("已恢复价格状态",
				zap.Int64("last_trade_price", rec.LastTradePrice),
				zap.Int64("last_close_price", rec.LastClosePrice),
				zap.Time("saved_at", rec.SavedAt),
			)
		default:
			logger.Info("无历史价格记录，使用兜底价", zap.Int64("fallback_price", cfg.FallbackPrice))
		}
	}

	return t
}

// Scale 返回价格坐标。
func (t *Tracker) Scale() PriceScale { return t.scale }

// HandleDepth 整体替换盘口快照。
func (t *Tracker) HandleDepth(d Depth) {
	snapshot := d
	t.depth.Store(&snapshot)
}

// Depth 返回最近一次盘口快照，可能为 nil。
func (t *Tracker) Depth() *Depth {
	return t.depth.Load()
}

// HandleLedger 以最新一笔成交更新最新成交价。
func (t *Tracker) HandleLedger(trades []Trade) {
	if len(trades) == 0 {
		return
	}
	t.mu.Lock()
	t.lastTrade = trades[0].Price
	t.mu.Unlock()
}

// HandleSession 处理时段切换：开市放行决策循环并标记热身窗口起点，
// 休市记录收盘价并落盘；休市转开市时按配置概率产生跳空缺口。
func (t *Tracker) HandleSession(status string) {
	if status == SessionClosed {
		t.handleClose()
		return
	}
	t.handleOpen(status)
}

func (t *Tracker) handleClose() {
	if !t.gate.IsOpen() {
		return
	}

	t.mu.Lock()
	closePrice := int64(0)
	if t.lastTrade != 0 {
		t.lastClose = t.lastTrade
		closePrice = t.lastClose
	}
	t.openedAt = time.Time{}
	rec := t.recordLocked()
	t.mu.Unlock()

	t.gate.Close()

	if closePrice != 0 {
		t.persist(rec)
		t.logger.Info("市场休市，暂停交易", zap.Int64("close_price", closePrice))
	} else {
		t.logger.Info("市场休市，暂停交易")
	}
}

func (t *Tracker) handleOpen(status string) {
	if t.gate.IsOpen() {
		return
	}

	t.mu.Lock()
	gapped := false
	var rec PriceRecord
	if t.lastClose != 0 && t.rng.Float64() < t.cfg.GapProbability {
		span := t.cfg.GapMaxTicks - t.cfg.GapMinTicks + 1
		ticks := t.cfg.GapMinTicks + t.rng.Int63n(span)
		opened := gapPrice(t.scale, t.lastClose, ticks)

		prev := t.lastClose
		t.fallback = opened
		t.lastTrade = opened
		rec = t.recordLocked()
		gapped = true

		t.logger.Info("市场开盘：发生跳空缺口",
			zap.Int64("last_close_price", prev),
			zap.Int64("open_price", opened),
			zap.Int64("gap_ticks", ticks),
		)
	}
	t.openedAt = time.Now()
	t.mu.Unlock()

	if gapped {
		t.persist(rec)
	} else {
		t.logger.Info("市场开盘：恢复交易",
			zap.String("session", status),
			zap.Duration("warmup_window", t.cfg.WarmupWindow),
		)
	}

	t.gate.Open()
}

// gapPrice 计算跳空后的开盘价：在收盘价上叠加整数档位偏移，
// 吸附到合法档位（含下限保护）。
func gapPrice(scale PriceScale, lastClose, gapTicks int64) int64 {
	return scale.NearestTick(lastClose + gapTicks*scale.TickSize)
}

// ReferencePrice 返回按档位取整后的基准价：优先最新成交价，缺省用兜底价。
func (t *Tracker) ReferencePrice() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastTrade != 0 {
		return t.scale.NearestTick(t.lastTrade)
	}
	return t.scale.NearestTick(t.fallback)
}

// InWarmup 判断当前是否处于开盘后的热身窗口。
func (t *Tracker) InWarmup(now time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.openedAt.IsZero() {
		return false
	}
	return now.Sub(t.openedAt) < t.cfg.WarmupWindow
}

// WaitOpen 阻塞至开市或 ctx 结束。
func (t *Tracker) WaitOpen(ctx context.Context) error {
	return t.gate.Wait(ctx)
}

// SessionOpen 返回当前是否开市。
func (t *Tracker) SessionOpen() bool {
	return t.gate.IsOpen()
}

// Snapshot 供监控接口读取的汇总视图。
type Snapshot struct {
	ReferencePrice int64 `json:"reference_price"`
	LastTradePrice int64 `json:"last_trade_price"`
	LastClosePrice int64 `json:"last_close_price"`
	FallbackPrice  int64 `json:"fallback_price"`
	SessionOpen    bool  `json:"session_open"`
	InWarmup       bool  `json:"in_warmup"`
}

// StateSnapshot 返回当前价格与时段状态的一致视图。
func (t *Tracker) StateSnapshot(now time.Time) Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ref := t.fallback
	if t.lastTrade != 0 {
		ref = t.lastTrade
	}

	return Snapshot{
		ReferencePrice: t.scale.NearestTick(ref),
		LastTradePrice: t.lastTrade,
		LastClosePrice: t.lastClose,
		FallbackPrice:  t.fallback,
		SessionOpen:    t.gate.IsOpen(),
		InWarmup:       !t.openedAt.IsZero() && now.Sub(t.openedAt) < t.cfg.WarmupWindow,
	}
}

func (t *Tracker) recordLocked() PriceRecord {
	return PriceRecord{
		LastTradePrice: t.lastTrade,
		LastClosePrice: t.lastClose,
		SavedAt:        time.Now().UTC(),
	}
}

func (t *Tracker) persist(rec PriceRecord) {
	if t.store == nil {
		return
	}
	if err := t.store.SavePriceRecord(context.Background(), rec); err != nil {
		t.logger.Warn("保存价格状态失败", zap.Error(err))
	}
}
