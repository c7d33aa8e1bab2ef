package feed

import (
	"encoding/json"
	"fmt"

	"liquidity-bot/internal/market"
)

// 行情推送的三类事件。
const (
	eventDepth   = "depth"
	eventLedger  = "ledger"
	eventSession = "session"
)

// Handler 接收解码后的行情事件。
// 回调在读协程内顺序调用，实现方自行保证可见性。
type Handler interface {
	HandleDepth(d market.Depth)
	HandleLedger(trades []market.Trade)
	HandleSession(status string)
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type depthPayload struct {
	Depth struct {
		Bids []wireLevel `json:"bids"`
		Asks []wireLevel `json:"asks"`
	} `json:"depth"`
}

type ledgerPayload struct {
	Ledger []struct {
		Price int64 `json:"price"`
	} `json:"ledger"`
}

type sessionPayload struct {
	Session string `json:"session"`
}

// wireLevel 是三元组 [价格, 数量, 挂单列表]。
// 第三个元素可省略，列表项既可能是订单号字符串、
// 也可能是 {"order_id": "..."} 对象。
type wireLevel []json.RawMessage

func (w wireLevel) toLevel() (market.DepthLevel, error) {
	var lvl market.DepthLevel
	if len(w) < 2 {
		return lvl, fmt.Errorf("档位字段不足: %d", len(w))
	}
	if err := json.Unmarshal(w[0], &lvl.Price); err != nil {
		return lvl, fmt.Errorf("解析档位价格: %w", err)
	}
	if err := json.Unmarshal(w[1], &lvl.Quantity); err != nil {
		return lvl, fmt.Errorf("解析档位数量: %w", err)
	}
	if len(w) < 3 {
		return lvl, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(w[2], &entries); err != nil {
		// 第三个元素不是列表时整档忽略挂单信息
		return lvl, nil
	}
	for _, raw := range entries {
		var id string
		if err := json.Unmarshal(raw, &id); err == nil {
			if id != "" {
				lvl.OrderIDs = append(lvl.OrderIDs, id)
			}
			continue
		}
		var obj struct {
			OrderID string `json:"order_id"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && obj.OrderID != "" {
			lvl.OrderIDs = append(lvl.OrderIDs, obj.OrderID)
		}
	}
	return lvl, nil
}

func decodeDepth(data []byte) (market.Depth, error) {
	var payload depthPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return market.Depth{}, fmt.Errorf("解析深度事件: %w", err)
	}

	d := market.Depth{
		Bids: make([]market.DepthLevel, 0, len(payload.Depth.Bids)),
		Asks: make([]market.DepthLevel, 0, len(payload.Depth.Asks)),
	}
	for _, w := range payload.Depth.Bids {
		lvl, err := w.toLevel()
		if err != nil {
			return market.Depth{}, err
		}
		d.Bids = append(d.Bids, lvl)
	}
	for _, w := range payload.Depth.Asks {
		lvl, err := w.toLevel()
		if err != nil {
			return market.Depth{}, err
		}
		d.Asks = append(d.Asks, lvl)
	}
	return d, nil
}

func decodeLedger(data []byte) ([]market.Trade, error) {
	var payload ledgerPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("解析成交事件: %w", err)
	}
	trades := make([]market.Trade, 0, len(payload.Ledger))
	for _, entry := range payload.Ledger {
		trades = append(trades, market.Trade{Price: entry.Price})
	}
	return trades, nil
}

func decodeSession(data []byte) (string, error) {
	var payload sessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("解析场次事件: %w", err)
	}
	return payload.Session, nil
}
