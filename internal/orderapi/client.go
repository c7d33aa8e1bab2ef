package orderapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"liquidity-bot/internal/order"
)

// Client 封装撮合侧下单接口：POST 报单、DELETE 撤单，
// 路由为 {base}/{symbol}/{side}。
type Client struct {
	http   *resty.Client
	symbol string
	logger *zap.Logger
}

// NewClient 创建客户端。baseURL 为撮合接口前缀，末尾斜杠会被去除。
func NewClient(baseURL, symbol string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		symbol: symbol,
		logger: logger,
	}
}

// Create 提交一笔委托并解析嵌套回执。
// 接口未回传订单号时返回空 Ack，不视为错误。
func (c *Client) Create(ctx context.Context, o order.Order) (Ack, error) {
	body := createRequest{
		Type:     string(o.Kind),
		Quantity: o.Quantity,
	}
	if o.Kind == order.KindLimit {
		body.Price = o.Price
	}

	var result createResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(c.path(o.Side))
	if err != nil {
		return Ack{}, fmt.Errorf("orderapi: 报单请求失败: %w", err)
	}
	if resp.IsError() {
		return Ack{}, fmt.Errorf("orderapi: 报单被拒绝: status=%d body=%s", resp.StatusCode(), resp.String())
	}

	ack := Ack{Side: o.Side}
	if result.Order != nil && result.Order.Order != nil {
		inner := result.Order.Order
		ack.OrderID = inner.OrderID
		if inner.Side != "" {
			ack.Side = order.Side(inner.Side)
		}
	}
	return ack, nil
}

// Cancel 撤销指定订单并按状态码分类结果：
// 2xx 成功，5xx 瞬时故障可重试，其余视为不可重试的落空。
func (c *Client) Cancel(ctx context.Context, side order.Side, orderID string) (CancelStatus, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(cancelRequest{OrderID: orderID}).
		Delete(c.path(side))
	if err != nil {
		return CancelMiss, fmt.Errorf("orderapi: 撤单请求失败: %w", err)
	}

	switch {
	case resp.StatusCode() >= 200 && resp.StatusCode() < 300:
		return CancelOK, nil
	case resp.StatusCode() >= 500:
		return CancelRetryable, nil
	default:
		return CancelMiss, nil
	}
}

func (c *Client) path(side order.Side) string {
	return fmt.Sprintf("/%s/%s", c.symbol, side)
}
