package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liquidity-bot/internal/config"
	"liquidity-bot/internal/feed"
	"liquidity-bot/internal/generator"
	"liquidity-bot/internal/lifecycle"
	"liquidity-bot/internal/market"
	"liquidity-bot/internal/monitor"
	"liquidity-bot/internal/orderapi"
	"liquidity-bot/internal/regime"
	"liquidity-bot/internal/store"
)

// App 聚合核心依赖并驱动系统生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// feedObserver 把行情事件分发给价格跟踪器、滚动统计与事件流水。
type feedObserver struct {
	tracker *market.Tracker
	stats   *monitor.Stats
	journal *monitor.Service
}

func (f *feedObserver) HandleDepth(d market.Depth) {
	f.tracker.HandleDepth(d)
}

func (f *feedObserver) HandleLedger(trades []market.Trade) {
	f.tracker.HandleLedger(trades)
	if len(trades) > 0 {
		f.stats.Observe(trades[0].Price)
	}
}

func (f *feedObserver) HandleSession(status string) {
	f.tracker.HandleSession(status)
	f.journal.RecordSession(context.Background(), status)
}

// Run 组装全部组件并运行至 ctx 结束。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("做市系统已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("symbol", a.cfg.Market.Symbol),
		zap.Int64("fallback_price", a.cfg.Market.FallbackPrice),
	)

	seed := a.cfg.App.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		a.logger.Info("使用固定随机种子", zap.Int64("seed", seed))
	}
	// 行情协程与决策协程各持一个独立 rng，互不共享
	feedRng := rand.New(rand.NewSource(seed))
	decisionRng := rand.New(rand.NewSource(seed + 1))

	scale := market.PriceScale{
		TickSize: a.cfg.Market.TickSize,
		MinPrice: a.cfg.Market.MinPrice,
	}

	monitorSvc, err := monitor.NewService(a.store, a.logger)
	if err != nil {
		return fmt.Errorf("初始化监控服务失败: %w", err)
	}
	stats := monitor.NewStats()

	tracker := market.NewTracker(scale, market.Settings{
		FallbackPrice:  a.cfg.Market.FallbackPrice,
		WarmupWindow:   a.cfg.Market.WarmupWindow,
		GapProbability: a.cfg.Market.GapProbability,
		GapMinTicks:    a.cfg.Market.GapMinTicks,
		GapMaxTicks:    a.cfg.Market.GapMaxTicks,
	}, store.NewPriceBook(a.store), feedRng, a.logger)

	machine := regime.NewMachine(regime.Settings{
		TriggerProbability: a.cfg.Regime.TriggerProbability,
		DurationMin:        a.cfg.Regime.DurationMin,
		DurationMax:        a.cfg.Regime.DurationMax,
		UpwardBias:         a.cfg.Regime.UpwardBias,
	}, decisionRng, a.logger)

	gen := generator.New(scale, generator.Settings{
		WhaleRatio:           a.cfg.Generator.WhaleRatio,
		UpwardBias:           a.cfg.Generator.UpwardBias,
		SpreadThresholdTicks: a.cfg.Generator.SpreadThresholdTicks,
		WarmupExpiry:         a.cfg.Generator.WarmupExpiry,
	}, decisionRng, a.logger)

	apiClient := orderapi.NewClient(
		a.cfg.OrderAPI.BaseURL,
		a.cfg.Market.Symbol,
		a.cfg.OrderAPI.Timeout,
		a.logger,
	)

	registry := lifecycle.NewRegistry(ctx)
	manager := lifecycle.NewManager(apiClient, lifecycle.Settings{
		DefaultExpiry:        a.cfg.Lifecycle.DefaultExpiry,
		SubmitConcurrency:    a.cfg.Lifecycle.SubmitConcurrency,
		CancelTopProbability: a.cfg.Lifecycle.CancelTopProbability,
		CancelDeadline:       a.cfg.Lifecycle.CancelDeadline,
		CancelRetryWait:      a.cfg.Lifecycle.CancelRetryWait,
		CancelErrorWait:      a.cfg.Lifecycle.CancelErrorWait,
	}, registry, decisionRng, a.logger)

	feedClient := feed.NewClient(feed.Settings{
		URL:           a.cfg.Feed.URL,
		ReconnectWait: a.cfg.Feed.ReconnectWait,
	}, &feedObserver{tracker: tracker, stats: stats, journal: monitorSvc}, a.logger)

	orch := newOrchestrator(tracker, machine, gen, manager, monitorSvc, a.logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return feedClient.Run(groupCtx)
	})
	group.Go(func() error {
		return orch.Run(groupCtx)
	})
	if a.cfg.Monitor.Enabled {
		startMonitorServer(groupCtx, monitorServerDeps{
			journal: monitorSvc,
			stats:   stats,
			tracker: tracker,
			orch:    orch,
		}, a.cfg.Monitor.ListenAddr, a.logger)
	}

	err = group.Wait()

	// 退出前撤掉所有后台任务（到期撤单、对手盘撤单）
	registry.Shutdown()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("系统异常退出: %w", err)
	}
	a.logger.Info("系统收到退出信号，正在停止")
	return nil
}
