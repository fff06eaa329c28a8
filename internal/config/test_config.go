package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	d := defaultConfig()
	return &Config{
		API: APIConfig{
			Profile:     "dummyjson",
			BaseURL:     "http://127.0.0.1:0",
			HTTPTimeout: 5 * time.Second,
			UserAgent:   "skim-test/1.0",
			AllowLocal:  true,
		},
		Feed: FeedConfig{
			PageSize:            10,
			DebounceDelay:       10 * time.Millisecond,
			PrefetchMargin:      2,
			VisibilityThreshold: 0.1,
		},
		Database: DatabaseConfig{
			Path:    "", // memory-only preferences
			Timeout: 1 * time.Second,
		},
		Log:  LogConfig{Level: "off"},
		UI:   d.UI,
		Keys: d.Keys,
	}
}
