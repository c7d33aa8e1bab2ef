package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Settings 行情连接参数。
type Settings struct {
	URL           string
	ReconnectWait time.Duration
}

// Client 维护到行情网关的 websocket 连接，
// 断线后固定延迟重连，解码失败的消息跳过不中断。
type Client struct {
	cfg     Settings
	handler Handler
	logger  *zap.Logger
}

// NewClient 创建行情客户端。
func NewClient(cfg Settings, handler Handler, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	return &Client{cfg: cfg, handler: handler, logger: logger}
}

// Run 持续消费行情直到 ctx 结束。
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.consume(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("行情连接中断，等待重连",
				zap.String("url", c.cfg.URL),
				zap.Duration("wait", c.cfg.ReconnectWait),
				zap.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.ReconnectWait):
		}
	}
}

// consume 建立一条连接并读到断开为止。
func (c *Client) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}

	// ctx 结束时关连接，打断阻塞中的 ReadMessage
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	c.logger.Info("行情连接已建立", zap.String("url", c.cfg.URL))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.dispatch(message)
	}
}

func (c *Client) dispatch(message []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.logger.Debug("丢弃无法解析的行情消息", zap.Error(err))
		return
	}

	switch env.Event {
	case eventDepth:
		d, err := decodeDepth(env.Data)
		if err != nil {
			c.logger.Warn("深度事件解析失败", zap.Error(err))
			return
		}
		c.handler.HandleDepth(d)
	case eventLedger:
		trades, err := decodeLedger(env.Data)
		if err != nil {
			c.logger.Warn("成交事件解析失败", zap.Error(err))
			return
		}
		c.handler.HandleLedger(trades)
	case eventSession:
		status, err := decodeSession(env.Data)
		if err != nil {
			c.logger.Warn("场次事件解析失败", zap.Error(err))
			return
		}
		c.handler.HandleSession(status)
	default:
		// 其他事件忽略
	}
}
