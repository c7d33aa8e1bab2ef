package monitor

import (
	"time"

	"liquidity-bot/internal/regime"
)

// EventType 表示监控事件类型。
type EventType string

const (
	EventModeChange EventType = "mode_change"
	EventWhaleBurst EventType = "whale_burst"
	EventSession    EventType = "session"
	EventTickBatch  EventType = "tick_batch"
	EventError      EventType = "error"
)

// Event 封装通用监控事件。
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ModeChangePayload 记录单边行情状态切换。
type ModeChangePayload struct {
	FromMode       regime.Mode     `json:"from_mode"`
	FromStrength   regime.Strength `json:"from_strength"`
	ToMode         regime.Mode     `json:"to_mode"`
	ToStrength     regime.Strength `json:"to_strength"`
	Until          time.Time       `json:"until,omitempty"`
	ReferencePrice int64           `json:"reference_price"`
}

// WhaleBurstPayload 记录大户扫单批次。
type WhaleBurstPayload struct {
	Orders         int   `json:"orders"`
	ReferencePrice int64 `json:"reference_price"`
}

// SessionPayload 记录交易时段切换。
type SessionPayload struct {
	Status string `json:"status"`
}

// TickBatchPayload 记录单个决策周期的提交汇总。
type TickBatchPayload struct {
	Mode           regime.Mode      `json:"mode"`
	Strength       regime.Strength  `json:"strength"`
	Liquidity      regime.Liquidity `json:"liquidity"`
	ReferencePrice int64            `json:"reference_price"`
	Intents        int              `json:"intents"`
	Submitted      int              `json:"submitted"`
	Failed         int              `json:"failed"`
}

// ErrorPayload 记录异常。
type ErrorPayload struct {
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}
