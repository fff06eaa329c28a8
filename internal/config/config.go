package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName names the XDG subdirectories used for config, data and logs.
const AppName = "skim"

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
}

type APIConfig struct {
	Profile     string        `mapstructure:"profile"`
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	AllowLocal  bool          `mapstructure:"allow_local"`
}

type FeedConfig struct {
	PageSize            int           `mapstructure:"page_size"`
	DebounceDelay       time.Duration `mapstructure:"debounce_delay"`
	PrefetchMargin      int           `mapstructure:"prefetch_margin"`
	VisibilityThreshold float64       `mapstructure:"visibility_threshold"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type UIConfig struct {
	Light UIColors   `mapstructure:"light"`
	Dark  UIColors   `mapstructure:"dark"`
	Post  PostConfig `mapstructure:"post"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Surface   string `mapstructure:"surface"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type PostConfig struct {
	MaxPreviewLength int `mapstructure:"max_preview_length"`
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit           string `mapstructure:"quit"`
	Search         string `mapstructure:"search"`
	Tags           string `mapstructure:"tags"`
	LoadMore       string `mapstructure:"load_more"`
	Refresh        string `mapstructure:"refresh"`
	Theme          string `mapstructure:"theme"`
	InfiniteScroll string `mapstructure:"infinite_scroll"`
	Find           string `mapstructure:"find"`
	GotoPost       string `mapstructure:"goto_post"`
	Copy           string `mapstructure:"copy"`
	Back           string `mapstructure:"back"`
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Profile:     "dummyjson",
			BaseURL:     "https://dummyjson.com",
			HTTPTimeout: 15 * time.Second,
			UserAgent:   "skim/1.0 (https://github.com/pders01/skim)",
		},
		Feed: FeedConfig{
			PageSize:            10,
			DebounceDelay:       500 * time.Millisecond,
			PrefetchMargin:      2,
			VisibilityThreshold: 0.1,
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(xdg.DataHome, AppName, "prefs.db"),
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(xdg.StateHome, AppName, "skim.log"),
		},
		UI: UIConfig{
			Light: UIColors{
				Primary:   "#D94848",
				Secondary: "#1F8A84",
				Accent:    "#2E6F95",
				Surface:   "#E8ECF1",
				Text:      "#1A1A2E",
				Muted:     "#64748B",
				Error:     "#DC2626",
				Success:   "#059669",
			},
			Dark: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Surface:   "#16213E",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Post: PostConfig{
				MaxPreviewLength: 150,
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:           "q",
				Search:         "s",
				Tags:           "g",
				LoadMore:       "l",
				Refresh:        "r",
				Theme:          "t",
				InfiniteScroll: "a",
				Find:           "f",
				GotoPost:       "o",
				Copy:           "y",
				Back:           "esc",
			},
		},
	}
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return defaultConfig()
}

// DefaultConfigPath is where Load looks first and where generate writes.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SKIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// setDefaults registers every leaf key so a partial config file only
// overrides the keys it names.
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range toMap(cfg) {
		setLeafDefaults(v, key, value)
	}
}

func setLeafDefaults(v *viper.Viper, prefix string, value any) {
	if m, ok := value.(map[string]any); ok {
		for k, child := range m {
			setLeafDefaults(v, prefix+"."+k, child)
		}
		return
	}
	v.SetDefault(prefix, value)
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

// toMap converts the config into nested maps keyed by the mapstructure
// names. Durations are written as strings for TOML readability.
func toMap(config *Config) map[string]any {
	colors := func(c UIColors) map[string]any {
		return map[string]any{
			"primary":   c.Primary,
			"secondary": c.Secondary,
			"accent":    c.Accent,
			"surface":   c.Surface,
			"text":      c.Text,
			"muted":     c.Muted,
			"error":     c.Error,
			"success":   c.Success,
		}
	}

	b := config.Keys.Bindings
	return map[string]any{
		"api": map[string]any{
			"profile":      config.API.Profile,
			"base_url":     config.API.BaseURL,
			"http_timeout": config.API.HTTPTimeout.String(),
			"user_agent":   config.API.UserAgent,
			"allow_local":  config.API.AllowLocal,
		},
		"feed": map[string]any{
			"page_size":            config.Feed.PageSize,
			"debounce_delay":       config.Feed.DebounceDelay.String(),
			"prefetch_margin":      config.Feed.PrefetchMargin,
			"visibility_threshold": config.Feed.VisibilityThreshold,
		},
		"database": map[string]any{
			"path":    config.Database.Path,
			"timeout": config.Database.Timeout.String(),
		},
		"log": map[string]any{
			"level": config.Log.Level,
			"path":  config.Log.Path,
		},
		"ui": map[string]any{
			"light": colors(config.UI.Light),
			"dark":  colors(config.UI.Dark),
			"post": map[string]any{
				"max_preview_length":  config.UI.Post.MaxPreviewLength,
				"word_wrap_max_width": config.UI.Post.WordWrapMaxWidth,
				"word_wrap_min_width": config.UI.Post.WordWrapMinWidth,
			},
		},
		"keys": map[string]any{
			"modifier": config.Keys.Modifier,
			"bindings": map[string]any{
				"quit":            b.Quit,
				"search":          b.Search,
				"tags":            b.Tags,
				"load_more":       b.LoadMore,
				"refresh":         b.Refresh,
				"theme":           b.Theme,
				"infinite_scroll": b.InfiniteScroll,
				"find":            b.Find,
				"goto_post":       b.GotoPost,
				"copy":            b.Copy,
				"back":            b.Back,
			},
		},
	}
}

func Save(config *Config, path string) error {
	v := viper.New()
	for key, value := range toMap(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
