package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Market    MarketConfig    `mapstructure:"market"`
	Regime    RegimeConfig    `mapstructure:"regime"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Feed      FeedConfig      `mapstructure:"feed"`
	OrderAPI  OrderAPIConfig  `mapstructure:"order_api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
}

// AppConfig 控制应用级参数。Seed 为 0 时使用时间种子。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
	Seed        int64  `mapstructure:"seed"`
}

// MarketConfig 描述标的与价格坐标。
type MarketConfig struct {
	Symbol         string        `mapstructure:"symbol"`
	TickSize       int64         `mapstructure:"tick_size"`
	MinPrice       int64         `mapstructure:"min_price"`
	FallbackPrice  int64         `mapstructure:"fallback_price"`
	WarmupWindow   time.Duration `mapstructure:"warmup_window"`
	GapProbability float64       `mapstructure:"gap_probability"`
	GapMinTicks    int64         `mapstructure:"gap_min_ticks"`
	GapMaxTicks    int64         `mapstructure:"gap_max_ticks"`
}

// RegimeConfig 控制单边行情状态机。
type RegimeConfig struct {
	TriggerProbability float64       `mapstructure:"trigger_probability"`
	DurationMin        time.Duration `mapstructure:"duration_min"`
	DurationMax        time.Duration `mapstructure:"duration_max"`
	UpwardBias         float64       `mapstructure:"upward_bias"`
}

// GeneratorConfig 控制委托生成。
type GeneratorConfig struct {
	WhaleRatio           float64       `mapstructure:"whale_ratio"`
	UpwardBias           float64       `mapstructure:"upward_bias"`
	SpreadThresholdTicks int64         `mapstructure:"spread_threshold_ticks"`
	WarmupExpiry         time.Duration `mapstructure:"warmup_expiry"`
}

// LifecycleConfig 控制报单提交与撤单。
type LifecycleConfig struct {
	DefaultExpiry        time.Duration `mapstructure:"default_expiry"`
	SubmitConcurrency    int           `mapstructure:"submit_concurrency"`
	CancelTopProbability float64       `mapstructure:"cancel_top_probability"`
	CancelDeadline       time.Duration `mapstructure:"cancel_deadline"`
	CancelRetryWait      time.Duration `mapstructure:"cancel_retry_wait"`
	CancelErrorWait      time.Duration `mapstructure:"cancel_error_wait"`
}

// FeedConfig 描述行情网关连接。
type FeedConfig struct {
	URL           string        `mapstructure:"url"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

// OrderAPIConfig 描述报单接口连接。
type OrderAPIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// MonitorConfig 控制监控 HTTP 服务。
type MonitorConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Market.Symbol == "" {
		err = multierr.Append(err, errors.New("market.symbol 不能为空"))
	}
	if c.Market.TickSize <= 0 {
		err = multierr.Append(err, errors.New("market.tick_size 必须大于0"))
	}
	if c.Market.MinPrice <= 0 {
		err = multierr.Append(err, errors.New("market.min_price 必须大于0"))
	}
	if c.Market.FallbackPrice < c.Market.MinPrice {
		err = multierr.Append(err, errors.New("market.fallback_price 不能低于 min_price"))
	}
	if c.Market.WarmupWindow <= 0 {
		err = multierr.Append(err, errors.New("market.warmup_window 必须大于0"))
	}
	if c.Market.GapProbability < 0 || c.Market.GapProbability > 1 {
		err = multierr.Append(err, errors.New("market.gap_probability 必须位于[0,1]"))
	}
	if c.Market.GapMinTicks > c.Market.GapMaxTicks {
		err = multierr.Append(err, errors.New("market.gap_min_ticks 不能大于 gap_max_ticks"))
	}
	if c.Regime.TriggerProbability < 0 || c.Regime.TriggerProbability > 1 {
		err = multierr.Append(err, errors.New("regime.trigger_probability 必须位于[0,1]"))
	}
	if c.Regime.DurationMin <= 0 || c.Regime.DurationMax <= 0 {
		err = multierr.Append(err, errors.New("regime.duration 必须为正"))
	}
	if c.Regime.DurationMin > c.Regime.DurationMax {
		err = multierr.Append(err, errors.New("regime.duration_min 不能大于 duration_max"))
	}
	if c.Regime.UpwardBias < 0 || c.Regime.UpwardBias > 1 {
		err = multierr.Append(err, errors.New("regime.upward_bias 必须位于[0,1]"))
	}
	if c.Generator.WhaleRatio < 0 || c.Generator.WhaleRatio > 1 {
		err = multierr.Append(err, errors.New("generator.whale_ratio 必须位于[0,1]"))
	}
	if c.Generator.UpwardBias < 0 || c.Generator.UpwardBias > 1 {
		err = multierr.Append(err, errors.New("generator.upward_bias 必须位于[0,1]"))
	}
	if c.Generator.SpreadThresholdTicks <= 0 {
		err = multierr.Append(err, errors.New("generator.spread_threshold_ticks 必须大于0"))
	}
	if c.Generator.WarmupExpiry <= 0 {
		err = multierr.Append(err, errors.New("generator.warmup_expiry 必须大于0"))
	}
	if c.Lifecycle.DefaultExpiry <= 0 {
		err = multierr.Append(err, errors.New("lifecycle.default_expiry 必须大于0"))
	}
	if c.Lifecycle.SubmitConcurrency <= 0 {
		err = multierr.Append(err, errors.New("lifecycle.submit_concurrency 必须大于0"))
	}
	if c.Lifecycle.CancelTopProbability < 0 || c.Lifecycle.CancelTopProbability > 1 {
		err = multierr.Append(err, errors.New("lifecycle.cancel_top_probability 必须位于[0,1]"))
	}
	if c.Lifecycle.CancelDeadline <= 0 {
		err = multierr.Append(err, errors.New("lifecycle.cancel_deadline 必须大于0"))
	}
	if c.Lifecycle.CancelRetryWait < 0 || c.Lifecycle.CancelErrorWait < 0 {
		err = multierr.Append(err, errors.New("lifecycle.cancel 退避不能为负"))
	}
	if c.Feed.URL == "" {
		err = multierr.Append(err, errors.New("feed.url 不能为空"))
	}
	if c.Feed.ReconnectWait <= 0 {
		err = multierr.Append(err, errors.New("feed.reconnect_wait 必须大于0"))
	}
	if c.OrderAPI.BaseURL == "" {
		err = multierr.Append(err, errors.New("order_api.base_url 不能为空"))
	}
	if c.OrderAPI.Timeout <= 0 {
		err = multierr.Append(err, errors.New("order_api.timeout 必须大于0"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}
	if c.Monitor.Enabled && c.Monitor.ListenAddr == "" {
		err = multierr.Append(err, errors.New("monitor.listen_addr 不能为空"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
