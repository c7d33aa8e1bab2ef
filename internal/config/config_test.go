package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App: AppConfig{Environment: "test"},
		Market: MarketConfig{
			Symbol:         "BTC",
			TickSize:       10,
			MinPrice:       10,
			FallbackPrice:  32000,
			WarmupWindow:   time.Minute,
			GapProbability: 0.3,
			GapMinTicks:    -500,
			GapMaxTicks:    1000,
		},
		Regime: RegimeConfig{
			TriggerProbability: 0.008,
			DurationMin:        20 * time.Second,
			DurationMax:        120 * time.Second,
			UpwardBias:         0.5,
		},
		Generator: GeneratorConfig{
			WhaleRatio:           0.07,
			UpwardBias:           0.5,
			SpreadThresholdTicks: 10,
			WarmupExpiry:         30 * time.Minute,
		},
		Lifecycle: LifecycleConfig{
			DefaultExpiry:        10 * time.Minute,
			SubmitConcurrency:    16,
			CancelTopProbability: 0.05,
			CancelDeadline:       30 * time.Minute,
			CancelRetryWait:      50 * time.Millisecond,
			CancelErrorWait:      100 * time.Millisecond,
		},
		Feed:     FeedConfig{URL: "ws://localhost:8080/stream", ReconnectWait: 2 * time.Second},
		OrderAPI: OrderAPIConfig{BaseURL: "http://localhost:8080/api/orders", Timeout: 5 * time.Second},
		Database: DatabaseConfig{InMemory: true, MaxOpenConns: 1},
		Logging: LoggingConfig{
			Level:            "info",
			Encoding:         "console",
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		},
		Monitor: MonitorConfig{Enabled: true, ListenAddr: ":9180"},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing symbol", func(c *Config) { c.Market.Symbol = "" }},
		{"zero tick size", func(c *Config) { c.Market.TickSize = 0 }},
		{"fallback below floor", func(c *Config) { c.Market.FallbackPrice = 5 }},
		{"gap range inverted", func(c *Config) { c.Market.GapMinTicks = 10; c.Market.GapMaxTicks = -10 }},
		{"trigger probability above 1", func(c *Config) { c.Regime.TriggerProbability = 1.5 }},
		{"duration range inverted", func(c *Config) { c.Regime.DurationMin = time.Minute; c.Regime.DurationMax = time.Second }},
		{"whale ratio negative", func(c *Config) { c.Generator.WhaleRatio = -0.1 }},
		{"zero submit concurrency", func(c *Config) { c.Lifecycle.SubmitConcurrency = 0 }},
		{"missing feed url", func(c *Config) { c.Feed.URL = "" }},
		{"missing database path", func(c *Config) { c.Database.InMemory = false; c.Database.Path = "" }},
		{"monitor enabled without addr", func(c *Config) { c.Monitor.ListenAddr = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoad_FileWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
app:
  environment: test
market:
  fallback_price: 58000
database:
  in_memory: true
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Market.FallbackPrice != 58000 {
		t.Errorf("file override lost: %d", cfg.Market.FallbackPrice)
	}
	if cfg.Market.TickSize != 10 {
		t.Errorf("tick size default lost: %d", cfg.Market.TickSize)
	}
	if cfg.Lifecycle.DefaultExpiry != 10*time.Minute {
		t.Errorf("default expiry default lost: %v", cfg.Lifecycle.DefaultExpiry)
	}
	if cfg.Generator.WarmupExpiry != 30*time.Minute {
		t.Errorf("warmup expiry default lost: %v", cfg.Generator.WarmupExpiry)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
