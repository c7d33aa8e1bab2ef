package config

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "liqbot"
)

// Load 读取配置文件并结合环境变量返回 Config。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.seed", 0)

	v.SetDefault("market.symbol", "BTC")
	v.SetDefault("market.tick_size", 10)
	v.SetDefault("market.min_price", 10)
	v.SetDefault("market.fallback_price", 32000)
	v.SetDefault("market.warmup_window", "60s")
	v.SetDefault("market.gap_probability", 0.3)
	v.SetDefault("market.gap_min_ticks", -500)
	v.SetDefault("market.gap_max_ticks", 1000)

	v.SetDefault("regime.trigger_probability", 0.008)
	v.SetDefault("regime.duration_min", "20s")
	v.SetDefault("regime.duration_max", "120s")
	v.SetDefault("regime.upward_bias", 0.5)

	v.SetDefault("generator.whale_ratio", 0.07)
	v.SetDefault("generator.upward_bias", 0.5)
	v.SetDefault("generator.spread_threshold_ticks", 10)
	v.SetDefault("generator.warmup_expiry", "30m")

	v.SetDefault("lifecycle.default_expiry", "10m")
	v.SetDefault("lifecycle.submit_concurrency", 16)
	v.SetDefault("lifecycle.cancel_top_probability", 0.05)
	v.SetDefault("lifecycle.cancel_deadline", "30m")
	v.SetDefault("lifecycle.cancel_retry_wait", "50ms")
	v.SetDefault("lifecycle.cancel_error_wait", "100ms")

	v.SetDefault("feed.url", "ws://localhost:8080/stream")
	v.SetDefault("feed.reconnect_wait", "2s")

	v.SetDefault("order_api.base_url", "http://localhost:8080/api/orders")
	v.SetDefault("order_api.timeout", "5s")

	v.SetDefault("database.path", "data/liquidity_bot.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.in_memory", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})

	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.listen_addr", ":9180")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
