package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketScanner/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Finnhub struct {
		APIKey    string  `yaml:"api_key" validate:"required"`
		BaseURL   string  `yaml:"base_url" default:"https://finnhub.io/api/v1" validate:"url"`
		RateLimit float64 `yaml:"rate_limit" default:"1" validate:"gt=0"`
		Burst     int     `yaml:"burst" default:"5" validate:"gte=1"`
	} `yaml:"finnhub"`
	Tradier struct {
		APIKey    string  `yaml:"api_key"`
		BaseURL   string  `yaml:"base_url" default:"https://api.tradier.com/v1" validate:"url"`
		RateLimit float64 `yaml:"rate_limit" default:"2" validate:"gt=0"`
		Burst     int     `yaml:"burst" default:"2" validate:"gte=1"`
	} `yaml:"tradier"`
	Yahoo struct {
		BaseURL   string  `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
		RateLimit float64 `yaml:"rate_limit" default:"2" validate:"gt=0"`
		Burst     int     `yaml:"burst" default:"2" validate:"gte=1"`
	} `yaml:"yahoo"`
	HTTP struct {
		Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
		Proxy   string        `yaml:"proxy"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Schedule struct {
		Cron     string `yaml:"cron" default:"0 0 6 * * 1-5"`
		Timezone string `yaml:"timezone" default:"America/New_York"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr" default:":9102"`
	} `yaml:"metrics"`
	Output struct {
		Dir string `yaml:"dir" default:"logs"`
	} `yaml:"output"`
	Telegram struct {
		BotToken   string `yaml:"bot_token"`
		ChatID     string `yaml:"chat_id" validate:"required_with=BotToken"`
		BaseURL    string `yaml:"base_url" default:"https://api.telegram.org" validate:"url"`
		MaxRetries int    `yaml:"max_retries" default:"3" validate:"gte=0,lte=10"`
		Commands   bool   `yaml:"commands"`
	} `yaml:"telegram"`

	Scan       ScanConfig       `yaml:"scan"`
	Momentum   MomentumConfig   `yaml:"momentum"`
	Technicals TechnicalsConfig `yaml:"technicals"`
	Options    OptionsConfig    `yaml:"options"`
	News       NewsConfig       `yaml:"news"`
	Macro      MacroConfig      `yaml:"macro"`
	Market     MarketConfig     `yaml:"market"`
	Limits     LimitsConfig     `yaml:"limits"`
	Report     ReportConfig     `yaml:"report"`

	Watchlist     model.Watchlist `yaml:"watchlist"`
	WatchlistFile string          `yaml:"watchlist_file"`
}

// Load reads config from a YAML file, then applies .env and environment overrides.
// A missing file is not an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyListDefaults(cfg)

	if len(cfg.Watchlist.Sectors) == 0 && cfg.WatchlistFile != "" {
		wl, err := LoadWatchlist(cfg.WatchlistFile)
		if err != nil {
			return nil, err
		}
		cfg.Watchlist = *wl
	}

	return cfg, nil
}

// Default returns a config carrying only built-in defaults. It panics if the
// struct tags are malformed, which is a programming error.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	applyListDefaults(cfg)
	return cfg
}

// LoadWatchlist reads a sector-grouped watchlist from a YAML or JSON file.
func LoadWatchlist(path string) (*model.Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	var wl model.Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}
	return &wl, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Finnhub.APIKey, "FINNHUB_API_KEY")
	setStr(&cfg.Tradier.APIKey, "TRADIER_API_KEY")
	setStr(&cfg.HTTP.Proxy, "HTTPS_PROXY")
	setStr(&cfg.Database.SQLitePath, "SQLITE_PATH")
	setStr(&cfg.Schedule.Cron, "SCAN_CRON")
	setStr(&cfg.WatchlistFile, "WATCHLIST_PATH")
	setStr(&cfg.Log.Level, "LOG_LEVEL")
	setStr(&cfg.Output.Dir, "OUTPUT_DIR")
	setStr(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// applyListDefaults fills list and map settings that are too long for struct tags.
func applyListDefaults(cfg *Config) {
	if len(cfg.News.BullishKeywords) == 0 {
		cfg.News.BullishKeywords = append([]string(nil), DefaultBullishKeywords...)
	}
	if len(cfg.News.BearishKeywords) == 0 {
		cfg.News.BearishKeywords = append([]string(nil), DefaultBearishKeywords...)
	}
	if cfg.Macro.SectorMovers == nil {
		cfg.Macro.SectorMovers = DefaultSectorMovers()
	}
}
