// Package config loads ezbook settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "EZBOOK"

// Gen store backends.
const (
	GenStoreLocal = "local"
	GenStoreRedis = "redis"
)

// Mirror providers.
const (
	MirrorNone      = "none"
	MirrorRistretto = "ristretto"
	MirrorBigcache  = "bigcache"
	MirrorRedis     = "redis"
)

// Config holds all application configuration.
type Config struct {
	Sheets  SheetsConfig  `mapstructure:"sheets"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SheetsConfig addresses the spreadsheets and their layout.
type SheetsConfig struct {
	SpreadsheetID     string  `mapstructure:"spreadsheet_id"`
	LogsSpreadsheetID string  `mapstructure:"logs_spreadsheet_id"`
	ClientEmail       string  `mapstructure:"client_email"`
	PrivateKey        string  `mapstructure:"private_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`

	BaseSheet   string `mapstructure:"base_sheet"`
	BooksSheet  string `mapstructure:"books_sheet"`
	OrdersSheet string `mapstructure:"orders_sheet"`
}

// CacheConfig tunes the cache layer.
type CacheConfig struct {
	Namespace   string        `mapstructure:"namespace"`
	Disabled    bool          `mapstructure:"disabled"`
	BooksTTL    time.Duration `mapstructure:"books_ttl"`
	StudentsTTL time.Duration `mapstructure:"students_ttl"`
	OrdersTTL   time.Duration `mapstructure:"orders_ttl"`
	MaxStale    time.Duration `mapstructure:"max_stale"`
	GenStore    string        `mapstructure:"gen_store"` // local | redis
	Mirror      string        `mapstructure:"mirror"`    // none | ristretto | bigcache | redis
	// MetricsFile, when set, receives the cache metrics in Prometheus text
	// format after every command (node exporter textfile collector).
	MetricsFile string        `mapstructure:"metrics_file"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sheets: SheetsConfig{
			RequestsPerSecond: 1,
			Burst:             5,
			BaseSheet:         "1-2",
			BooksSheet:        "1-2書",
			OrdersSheet:       "1-2 訂書",
		},
		Cache: CacheConfig{
			Namespace:   "ezbook",
			BooksTTL:    30 * time.Minute,
			StudentsTTL: 30 * time.Minute,
			OrdersTTL:   2 * time.Minute,
			MaxStale:    6 * time.Hour,
			GenStore:    GenStoreLocal,
			Mirror:      MirrorNone,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// legacyEnv maps keys to the variable names the deployment already uses.
var legacyEnv = map[string]string{
	"sheets.spreadsheet_id":      "GOOGLE_SHEETS_SPREADSHEET_ID",
	"sheets.client_email":        "GOOGLE_SHEETS_CLIENT_EMAIL",
	"sheets.private_key":         "GOOGLE_SHEETS_PRIVATE_KEY",
	"sheets.logs_spreadsheet_id": "GOOGLE_SHEETS_LOGS_SPREADSHEET_ID",
}

// Load reads path (optional; "" searches ./ezbook.yaml) and the environment
// on top of DefaultConfig. EZBOOK_CACHE_ORDERS_TTL overrides cache.orders_ttl
// and so on. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ezbook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("sheets.spreadsheet_id", cfg.Sheets.SpreadsheetID)
	v.SetDefault("sheets.logs_spreadsheet_id", cfg.Sheets.LogsSpreadsheetID)
	v.SetDefault("sheets.client_email", cfg.Sheets.ClientEmail)
	v.SetDefault("sheets.private_key", cfg.Sheets.PrivateKey)
	v.SetDefault("sheets.requests_per_second", cfg.Sheets.RequestsPerSecond)
	v.SetDefault("sheets.burst", cfg.Sheets.Burst)
	v.SetDefault("sheets.base_sheet", cfg.Sheets.BaseSheet)
	v.SetDefault("sheets.books_sheet", cfg.Sheets.BooksSheet)
	v.SetDefault("sheets.orders_sheet", cfg.Sheets.OrdersSheet)

	v.SetDefault("cache.namespace", cfg.Cache.Namespace)
	v.SetDefault("cache.disabled", cfg.Cache.Disabled)
	v.SetDefault("cache.books_ttl", cfg.Cache.BooksTTL)
	v.SetDefault("cache.students_ttl", cfg.Cache.StudentsTTL)
	v.SetDefault("cache.orders_ttl", cfg.Cache.OrdersTTL)
	v.SetDefault("cache.max_stale", cfg.Cache.MaxStale)
	v.SetDefault("cache.gen_store", cfg.Cache.GenStore)
	v.SetDefault("cache.mirror", cfg.Cache.Mirror)
	v.SetDefault("cache.metrics_file", cfg.Cache.MetricsFile)

	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)

	v.SetDefault("logging.level", cfg.Logging.Level)
}
