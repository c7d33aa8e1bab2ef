package lifecycle

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liquidity-bot/internal/market"
	"liquidity-bot/internal/order"
	"liquidity-bot/internal/orderapi"
	"liquidity-bot/internal/regime"
)

// API 抽象撮合接口，便于测试替换。
type API interface {
	Create(ctx context.Context, o order.Order) (orderapi.Ack, error)
	Cancel(ctx context.Context, side order.Side, orderID string) (orderapi.CancelStatus, error)
}

// Settings 控制委托生命周期行为。
type Settings struct {
	// DefaultExpiry 非持久委托缺省的自动撤单延迟。
	DefaultExpiry time.Duration
	// SubmitConcurrency 单周期并发报单上限。
	SubmitConcurrency int
	// CancelTopProbability 每周期触发对手盘撤单的概率。
	CancelTopProbability float64
	// CancelDeadline 对手盘撤单任务的总时限。
	CancelDeadline time.Duration
	// CancelRetryWait 撤单落空或瞬时故障后的退避。
	CancelRetryWait time.Duration
	// CancelErrorWait 传输错误后的退避。
	CancelErrorWait time.Duration
}

// Manager 负责聚合后委托的提交与后续生命周期：
// 并发批量报单、到期自动撤单、趋势行情下的对手盘撤单。
type Manager struct {
	api      API
	cfg      Settings
	registry *Registry
	rng      *rand.Rand // 仅决策协程使用
	logger   *zap.Logger
}

// NewManager 创建管理器。
func NewManager(api API, cfg Settings, registry *Registry, rng *rand.Rand, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SubmitConcurrency <= 0 {
		cfg.SubmitConcurrency = 16
	}
	return &Manager{
		api:      api,
		cfg:      cfg,
		registry: registry,
		rng:      rng,
		logger:   logger,
	}
}

// Submit 并发提交一批委托并等待全部完成。
// 单笔失败只记日志，不中断同批其他委托。
// 返回成功与失败笔数。
func (m *Manager) Submit(ctx context.Context, orders []order.Order) (submitted, failed int) {
	if len(orders) == 0 {
		return 0, 0
	}

	results := make([]bool, len(orders))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(m.cfg.SubmitConcurrency)

	for i, o := range orders {
		i, o := i, o
		group.Go(func() error {
			results[i] = m.submitOne(groupCtx, o)
			return nil
		})
	}
	_ = group.Wait()

	for _, ok := range results {
		if ok {
			submitted++
		} else {
			failed++
		}
	}
	return submitted, failed
}

func (m *Manager) submitOne(ctx context.Context, o order.Order) bool {
	if o.Tag == order.TagWhale {
		m.logger.Info("提交大户委托",
			zap.String("side", string(o.Side)),
			zap.String("kind", string(o.Kind)),
			zap.Int64("price", o.Price),
			zap.Int64("quantity", o.Quantity),
		)
	}

	ack, err := m.api.Create(ctx, o)
	if err != nil {
		m.logger.Warn("报单失败",
			zap.String("side", string(o.Side)),
			zap.String("kind", string(o.Kind)),
			zap.Int64("quantity", o.Quantity),
			zap.Error(err),
		)
		return false
	}

	expiry := o.ExpireAfter
	if expiry <= 0 && !o.Persistent {
		expiry = m.cfg.DefaultExpiry
	}
	if expiry > 0 && ack.OrderID != "" {
		m.scheduleExpiry(ack.Side, ack.OrderID, expiry)
	}
	return true
}

// scheduleExpiry 在延迟后尝试撤单一次，尽力而为。
func (m *Manager) scheduleExpiry(side order.Side, orderID string, delay time.Duration) {
	m.registry.Go(func(ctx context.Context) {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if _, err := m.api.Cancel(ctx, side, orderID); err != nil && ctx.Err() == nil {
			m.logger.Warn("到期撤单失败",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
	})
}

// MaybeCancelCounterparty 以小概率在趋势行情中摘掉被压制一侧
// 最优档位上的一笔对手挂单：上行摘卖一，下行摘买一。
// 实际撤单在受管后台任务中完成，不阻塞决策循环。
func (m *Manager) MaybeCancelCounterparty(ctx context.Context, mode regime.Mode, depth *market.Depth) {
	if m.rng.Float64() >= m.cfg.CancelTopProbability {
		return
	}
	if depth == nil {
		return
	}

	var side order.Side
	var top market.DepthLevel
	var ok bool
	switch mode {
	case regime.ModeTrendUp:
		side = order.SideSell
		top, ok = depth.BestAsk()
	case regime.ModeTrendDown:
		side = order.SideBuy
		top, ok = depth.BestBid()
	default:
		return
	}
	if !ok || len(top.OrderIDs) == 0 {
		return
	}

	// 决策协程内完成乱序，后台任务不再触碰 rng
	ids := make([]string, len(top.OrderIDs))
	copy(ids, top.OrderIDs)
	m.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	m.registry.Go(func(taskCtx context.Context) {
		m.cancelWorker(taskCtx, side, ids)
	})
}

// cancelWorker 逐个尝试撤单：首个成功即停；瞬时故障与落空
// 都短暂退避后换下一个；跳过已尝试的订单号；超过总时限放弃。
func (m *Manager) cancelWorker(ctx context.Context, side order.Side, ids []string) {
	deadline := time.Now().Add(m.cfg.CancelDeadline)
	tried := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if time.Now().After(deadline) {
			m.logger.Info("对手盘撤单超时放弃", zap.Int("tried", len(tried)))
			return
		}
		if _, seen := tried[id]; seen {
			continue
		}
		tried[id] = struct{}{}

		status, err := m.api.Cancel(ctx, side, id)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("对手盘撤单出错", zap.String("order_id", id), zap.Error(err))
			if !sleepCtx(ctx, m.cfg.CancelErrorWait) {
				return
			}
			continue
		}

		if status == orderapi.CancelOK {
			m.logger.Info("对手盘撤单成功",
				zap.String("order_id", id),
				zap.String("side", string(side)),
			)
			return
		}
		if !sleepCtx(ctx, m.cfg.CancelRetryWait) {
			return
		}
	}
}

// sleepCtx 可中断休眠，ctx 结束时返回 false。
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
