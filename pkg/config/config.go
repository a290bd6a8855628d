package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds environment-driven settings for the venue gateway.
type Config struct {
	Port string

	// Global venue settings
	BinanceTestnet bool
	Symbols        []string

	// Binance Spot
	EnableSpot    bool
	SpotAPIKey    string
	SpotAPISecret string
	// Binance Futures (USDT-M)
	EnableUSDTFutures bool
	USDTKey           string
	USDTSecret        string
	// Binance Futures (Coin-M)
	EnableCoinFutures bool
	CoinKey           string
	CoinSecret        string

	// Order persistence
	EnableOrderWAL bool
	OrderWALPath   string

	// Database
	DBPath string

	// Auth
	JWTSecret string

	// Optional YAML venues file; entries override the env toggles above.
	VenuesFile string
}

// VenueEntry is one segment stanza in the venues YAML file.
type VenueEntry struct {
	Segment   string   `yaml:"segment"`
	Enabled   bool     `yaml:"enabled"`
	Testnet   bool     `yaml:"testnet"`
	APIKeyEnv string   `yaml:"api_key_env"`
	SecretEnv string   `yaml:"api_secret_env"`
	Symbols   []string `yaml:"symbols"`
}

type venuesFile struct {
	Venues []VenueEntry `yaml:"venues"`
}

// Load reads environment variables (optionally via .env) into Config, then
// applies the venues file when one is configured.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	// Database path: prefer DB_PATH, then DATABASE_PATH for backward compatibility.
	dbPath := getEnv("DB_PATH", "")
	if dbPath == "" {
		dbPath = getEnv("DATABASE_PATH", "./data/gateway.db")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		BinanceTestnet:    getEnv("BINANCE_TESTNET", "false") == "true",
		Symbols:           splitAndTrim(getEnv("SYMBOLS", "BTCUSDT,ETHUSDT")),
		EnableSpot:        getEnv("ENABLE_BINANCE_SPOT", "false") == "true",
		SpotAPIKey:        os.Getenv("BINANCE_API_KEY"),
		SpotAPISecret:     os.Getenv("BINANCE_API_SECRET"),
		EnableUSDTFutures: getEnv("ENABLE_BINANCE_USDT_FUTURES", "false") == "true",
		USDTKey:           os.Getenv("BINANCE_USDT_KEY"),
		USDTSecret:        os.Getenv("BINANCE_USDT_SECRET"),
		EnableCoinFutures: getEnv("ENABLE_BINANCE_COIN_FUTURES", "false") == "true",
		CoinKey:           os.Getenv("BINANCE_COIN_KEY"),
		CoinSecret:        os.Getenv("BINANCE_COIN_SECRET"),
		EnableOrderWAL:    getEnv("ENABLE_ORDER_WAL", "true") == "true",
		OrderWALPath:      getEnv("ORDER_WAL_PATH", "./data/order_wal"),
		DBPath:            dbPath,
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		VenuesFile:        getEnv("VENUES_FILE", ""),
	}

	if cfg.VenuesFile != "" {
		if err := cfg.applyVenuesFile(cfg.VenuesFile); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyVenuesFile overlays segment settings from a YAML file. Credentials
// stay in the environment; the file only names which variables hold them.
func (c *Config) applyVenuesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read venues file: %w", err)
	}
	var vf venuesFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return fmt.Errorf("parse venues file: %w", err)
	}

	for _, v := range vf.Venues {
		key := os.Getenv(v.APIKeyEnv)
		secret := os.Getenv(v.SecretEnv)
		switch v.Segment {
		case "binance-spot":
			c.EnableSpot = v.Enabled
			c.BinanceTestnet = v.Testnet
			if key != "" {
				c.SpotAPIKey, c.SpotAPISecret = key, secret
			}
		case "binance-usdtfut":
			c.EnableUSDTFutures = v.Enabled
			if key != "" {
				c.USDTKey, c.USDTSecret = key, secret
			}
		case "binance-coinfut":
			c.EnableCoinFutures = v.Enabled
			if key != "" {
				c.CoinKey, c.CoinSecret = key, secret
			}
		default:
			return fmt.Errorf("venues file: unknown segment %q", v.Segment)
		}
		if len(v.Symbols) > 0 {
			c.Symbols = v.Symbols
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
