package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PW"

// Scraper modes.
const (
	ScraperLocal   = "local"
	ScraperService = "service"
)

var (
	ErrInvalidDriver   = errors.New("error getting PW_STORAGE_DRIVER: expected sqlite3 or postgres")
	ErrEmptyDSN        = errors.New("error getting PW_STORAGE_DSN: variable not specified or contains an empty string")
	ErrInvalidScraper  = errors.New("error getting PW_SCRAPER_MODE: expected local or service")
	ErrEmptyScraperKey = errors.New("error getting PW_SCRAPER_API_KEY: required when PW_SCRAPER_MODE is service")
	ErrInvalidInterval = errors.New("error getting PW_CHECK_INTERVAL: must be a positive duration")
)

type Config struct {
	Env     string // Env is the current environment: local, development, production.
	Storage Storage
	HTTP    HTTP
	Scraper Scraper
	Email   Email
	Tg      Telegram
	Checker Checker
}

type Storage struct {
	Driver string // Driver is a database/sql driver name: sqlite3 or postgres.
	DSN    string
}

type HTTP struct {
	Addr           string
	AllowedOrigins []string // AllowedOrigins may end with * to match any suffix.
	RateLimit      float64  // RateLimit is requests per second per client IP, 0 disables limiting.
	RateBurst      int
}

type Scraper struct {
	Mode    string
	URL     string
	APIKey  string
	Timeout time.Duration
	Rate    float64 // Rate is requests per second sent to the scraping service.
}

type Email struct {
	URL    string
	APIKey string // APIKey enables email notifications when set.
	From   string
}

type Telegram struct {
	Token   string        // Token is an unique telgram bot token, the bot is disabled when empty.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

type Checker struct {
	Interval time.Duration
}

// MustLoad loads the configuration from environment variables and returns a Config struct.
// Variables from a .env file in the working directory are loaded first without overriding
// the ones already set.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	vpr := viper.New()

	// Automatically binds environment variables to config keys
	vpr.SetEnvPrefix(envPrefix)
	vpr.AutomaticEnv()
	vpr.AllowEmptyEnv(true)

	// optional args
	vpr.SetDefault("ENV", "production")
	vpr.SetDefault("STORAGE_DRIVER", "sqlite3")
	vpr.SetDefault("STORAGE_DSN", "pricewatch.db")
	vpr.SetDefault("HTTP_ADDR", ":8080")
	vpr.SetDefault("HTTP_ALLOWED_ORIGINS", "http://localhost:*")
	vpr.SetDefault("HTTP_RATE_LIMIT", 5)
	vpr.SetDefault("HTTP_RATE_BURST", 10)
	vpr.SetDefault("SCRAPER_MODE", ScraperLocal)
	vpr.SetDefault("SCRAPER_URL", "https://api.firecrawl.dev")
	vpr.SetDefault("SCRAPER_TIMEOUT", "30s")
	vpr.SetDefault("SCRAPER_RATE", 1)
	vpr.SetDefault("EMAIL_API_URL", "https://api.resend.com")
	vpr.SetDefault("TELEGRAM_TIMEOUT", "15s")
	vpr.SetDefault("CHECK_INTERVAL", "6h")

	cfg := &Config{
		Env: vpr.GetString("ENV"),
		Storage: Storage{
			Driver: vpr.GetString("STORAGE_DRIVER"),
			DSN:    vpr.GetString("STORAGE_DSN"),
		},
		HTTP: HTTP{
			Addr:           vpr.GetString("HTTP_ADDR"),
			AllowedOrigins: splitList(vpr.GetString("HTTP_ALLOWED_ORIGINS")),
			RateLimit:      vpr.GetFloat64("HTTP_RATE_LIMIT"),
			RateBurst:      vpr.GetInt("HTTP_RATE_BURST"),
		},
		Scraper: Scraper{
			Mode:    vpr.GetString("SCRAPER_MODE"),
			URL:     vpr.GetString("SCRAPER_URL"),
			APIKey:  vpr.GetString("SCRAPER_API_KEY"),
			Timeout: vpr.GetDuration("SCRAPER_TIMEOUT"),
			Rate:    vpr.GetFloat64("SCRAPER_RATE"),
		},
		Email: Email{
			URL:    vpr.GetString("EMAIL_API_URL"),
			APIKey: vpr.GetString("EMAIL_API_KEY"),
			From:   vpr.GetString("EMAIL_FROM"),
		},
		Tg: Telegram{
			Token:   vpr.GetString("TELEGRAM_TOKEN"),
			Timeout: vpr.GetDuration("TELEGRAM_TIMEOUT"),
		},
		Checker: Checker{
			Interval: vpr.GetDuration("CHECK_INTERVAL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Storage.Driver != "sqlite3" && c.Storage.Driver != "postgres":
		return ErrInvalidDriver
	case c.Storage.DSN == "":
		return ErrEmptyDSN
	case c.Scraper.Mode != ScraperLocal && c.Scraper.Mode != ScraperService:
		return ErrInvalidScraper
	case c.Scraper.Mode == ScraperService && c.Scraper.APIKey == "":
		return ErrEmptyScraperKey
	case c.Checker.Interval <= 0:
		return ErrInvalidInterval
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
