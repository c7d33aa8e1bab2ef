package app

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"liquidity-bot/internal/market"
	"liquidity-bot/internal/monitor"
	"liquidity-bot/internal/regime"
)

type monitorServerDeps struct {
	journal *monitor.Service
	stats   *monitor.Stats
	tracker *market.Tracker
	orch    *orchestrator
}

// statusResponse 是 /status 的响应体。
type statusResponse struct {
	Mode      regime.Mode          `json:"mode"`
	Strength  regime.Strength      `json:"strength"`
	Liquidity regime.Liquidity     `json:"liquidity"`
	Market    market.Snapshot      `json:"market"`
	Prices    monitor.StatsSummary `json:"prices"`
}

func startMonitorServer(ctx context.Context, deps monitorServerDeps, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := 200
		if qs := q.Get("limit"); qs != "" {
			if v, err := strconv.Atoi(qs); err == nil && v > 0 {
				if v > 1000 {
					v = 1000
				}
				limit = v
			}
		}

		eventType := monitor.EventType("")
		if typ := strings.TrimSpace(q.Get("type")); typ != "" {
			eventType = monitor.EventType(strings.ToLower(typ))
		}

		events, err := deps.journal.ListEvents(r.Context(), eventType, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(events); err != nil {
			logger.Warn("写入监控响应失败", zap.Error(err))
		}
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		state := deps.orch.CurrentState()
		resp := statusResponse{
			Mode:      state.Mode,
			Strength:  state.Strength,
			Liquidity: state.Liquidity,
			Market:    deps.tracker.StateSnapshot(time.Now()),
			Prices:    deps.stats.Summary(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Warn("写入状态响应失败", zap.Error(err))
		}
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("关闭监控服务失败", zap.Error(err))
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("监控服务异常", zap.Error(err))
		}
	}()

	logger.Info("监控接口已启动", zap.String("addr", addr))
}
