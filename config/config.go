package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"candleview/internal/adapters/logger" // Import the logger package for LogLevel
	"candleview/internal/domain"
)

// Config holds the configuration of the chart client and the chart backend.
// Each binary reads the whole set and uses its part.
type Config struct {
	// Chart client
	ChartServerURL string // base URL of the /chart backend
	ChartURL       string // bookmark URL the view starts from
	Symbol         string
	Interval       domain.Interval
	Symbols        []string // cycled by the symbol key
	MinDomain      *float64
	PointPercent   float64

	// Timing
	FetchThrottle   time.Duration
	ZoomEndDebounce time.Duration
	Transition      time.Duration
	HTTPTimeout     time.Duration

	// Overlays
	EMAPeriod int

	// Files
	BookmarkFile string
	LogFile      string

	// Logging
	LogLevel logger.LogLevel

	// Chart backend
	ListenAddr     string
	DBPath         string
	DatabaseURL    string // selects the PostgreSQL cache when set
	HistoryCandles int

	// Binance API (kline history is public; keys are optional)
	APIKey    string
	SecretKey string
	IsTestnet bool
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Chart client
	cfg.ChartServerURL = getEnv("CHART_SERVER_URL", "http://localhost:8080")
	if cfg.ChartServerURL == "" {
		errs = append(errs, "CHART_SERVER_URL must be set")
	}
	cfg.ChartURL = getEnv("CHART_URL", "")

	cfg.Symbol = strings.ToUpper(getEnv("SYMBOL", "BTCUSDT"))
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.Interval, err = domain.ParseInterval(getEnv("INTERVAL", "15m"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INTERVAL: %v", err))
	}

	cfg.Symbols = splitList(getEnv("SYMBOLS", "BTCUSDT,ETHUSDT,SOLUSDT,BNBUSDT"))
	if !contains(cfg.Symbols, cfg.Symbol) {
		cfg.Symbols = append([]string{cfg.Symbol}, cfg.Symbols...)
	}

	if s := getEnv("MIN_DOMAIN", ""); s != "" {
		md, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid MIN_DOMAIN: %v", err))
		} else if md < 0 {
			errs = append(errs, "MIN_DOMAIN cannot be negative")
		} else {
			cfg.MinDomain = &md
		}
	}

	cfg.PointPercent, err = getEnvAsFloatRequired("POINT_PERCENT", 0.009)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid POINT_PERCENT: %v", err))
	} else if cfg.PointPercent <= 0 || cfg.PointPercent >= 1 {
		errs = append(errs, "POINT_PERCENT must be between 0.0 and 1.0 (exclusive)")
	}

	// Timing
	throttleMs, err := getEnvAsIntRequired("FETCH_THROTTLE_MS", 500)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FETCH_THROTTLE_MS: %v", err))
	} else if throttleMs < 0 {
		errs = append(errs, "FETCH_THROTTLE_MS cannot be negative")
	}
	cfg.FetchThrottle = time.Duration(throttleMs) * time.Millisecond

	debounceMs, err := getEnvAsIntRequired("ZOOM_END_DEBOUNCE_MS", 200)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ZOOM_END_DEBOUNCE_MS: %v", err))
	} else if debounceMs <= 0 {
		errs = append(errs, "ZOOM_END_DEBOUNCE_MS must be positive")
	}
	cfg.ZoomEndDebounce = time.Duration(debounceMs) * time.Millisecond

	transitionMs := getEnvAsInt("TRANSITION_MS", 250)
	if transitionMs < 0 {
		errs = append(errs, "TRANSITION_MS cannot be negative")
	}
	cfg.Transition = time.Duration(transitionMs) * time.Millisecond

	timeoutSeconds := getEnvAsInt("HTTP_TIMEOUT_SECONDS", 15)
	if timeoutSeconds <= 0 {
		errs = append(errs, "HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	// Overlays
	cfg.EMAPeriod, err = getEnvAsIntRequired("EMA_PERIOD", 21)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid EMA_PERIOD: %v", err))
	} else if cfg.EMAPeriod < 2 {
		errs = append(errs, "EMA_PERIOD must be at least 2")
	}

	// Files
	cfg.BookmarkFile = getEnv("BOOKMARK_FILE", "./data/last_view.url")
	cfg.LogFile = getEnv("LOG_FILE", "./data/candleview.log")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Chart backend
	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8080")
	cfg.DBPath = getEnv("DB_PATH", "./data/candles.db")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	if cfg.DBPath == "" && cfg.DatabaseURL == "" {
		errs = append(errs, "DB_PATH or DATABASE_URL must be set")
	}

	cfg.HistoryCandles, err = getEnvAsIntRequired("HISTORY_CANDLES", 300)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HISTORY_CANDLES: %v", err))
	} else if cfg.HistoryCandles <= 0 || cfg.HistoryCandles > 5000 {
		errs = append(errs, "HISTORY_CANDLES must be between 1 and 5000")
	}

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false) // history is read from production by default

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" && !contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
