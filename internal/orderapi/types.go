package orderapi

import "liquidity-bot/internal/order"

// Ack 是报单成功后的回执，OrderID 可能为空（接口未回传时）。
type Ack struct {
	OrderID string
	Side    order.Side
}

// CancelStatus 描述一次撤单请求的结果分类。
type CancelStatus string

const (
	// CancelOK 撤单成功，重试循环可以终止。
	CancelOK CancelStatus = "ok"
	// CancelRetryable 服务端瞬时故障，可短暂退避后重试。
	CancelRetryable CancelStatus = "retryable"
	// CancelMiss 订单不存在或已成交等不可重试的失败。
	CancelMiss CancelStatus = "miss"
)

// createRequest 是报单请求体。市价单省略价格。
type createRequest struct {
	Type     string `json:"type"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price,omitempty"`
}

// cancelRequest 是撤单请求体。
type cancelRequest struct {
	OrderID string `json:"order_id"`
}

// createResponse 对应撮合接口的嵌套回执结构。
type createResponse struct {
	Order *struct {
		Order *struct {
			OrderID string `json:"order_id"`
			Side    string `json:"side"`
		} `json:"order"`
	} `json:"order"`
}
