package config

import (
	"os"
	"testing"
	"time"

	"candleview/internal/adapters/logger"
	"candleview/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"CHART_SERVER_URL", "CHART_URL", "SYMBOL", "INTERVAL", "SYMBOLS", "MIN_DOMAIN",
	"POINT_PERCENT", "FETCH_THROTTLE_MS", "ZOOM_END_DEBOUNCE_MS", "TRANSITION_MS",
	"EMA_PERIOD", "HTTP_TIMEOUT_SECONDS", "BOOKMARK_FILE", "LOG_FILE", "LOG_LEVEL",
	"LISTEN_ADDR", "DB_PATH", "DATABASE_URL", "HISTORY_CANDLES",
	"BINANCE_API_KEY", "BINANCE_API_SECRET", "IS_TESTNET",
}

// isolate runs the test from an empty directory with every key blanked, so
// neither a developer's .env nor the shell environment leaks into it.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ChartServerURL)
	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, domain.Interval15m, cfg.Interval)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "BNBUSDT"}, cfg.Symbols)
	assert.Nil(t, cfg.MinDomain)
	assert.Equal(t, 0.009, cfg.PointPercent)
	assert.Equal(t, 500*time.Millisecond, cfg.FetchThrottle)
	assert.Equal(t, 200*time.Millisecond, cfg.ZoomEndDebounce)
	assert.Equal(t, 250*time.Millisecond, cfg.Transition)
	assert.Equal(t, 21, cfg.EMAPeriod)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 300, cfg.HistoryCandles)
	assert.False(t, cfg.IsTestnet)
}

func TestLoadConfig_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv("SYMBOL", "dogeusdt")
	t.Setenv("SYMBOLS", "btcusdt, ethusdt,,btcusdt")
	t.Setenv("INTERVAL", "1h")
	t.Setenv("MIN_DOMAIN", "0.5")
	t.Setenv("FETCH_THROTTLE_MS", "0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://localhost/candles")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "DOGEUSDT", cfg.Symbol)
	assert.Equal(t, []string{"DOGEUSDT", "BTCUSDT", "ETHUSDT"}, cfg.Symbols)
	assert.Equal(t, domain.Interval1h, cfg.Interval)
	require.NotNil(t, cfg.MinDomain)
	assert.Equal(t, 0.5, *cfg.MinDomain)
	assert.Zero(t, cfg.FetchThrottle)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "postgres://localhost/candles", cfg.DatabaseURL)
}

func TestLoadConfig_CollectsAllErrors(t *testing.T) {
	isolate(t)
	t.Setenv("INTERVAL", "2m")
	t.Setenv("MIN_DOMAIN", "wide")
	t.Setenv("ZOOM_END_DEBOUNCE_MS", "0")
	t.Setenv("EMA_PERIOD", "1")
	t.Setenv("HISTORY_CANDLES", "abc")

	_, err := LoadConfig()
	require.Error(t, err)
	for _, key := range []string{"INTERVAL", "MIN_DOMAIN", "ZOOM_END_DEBOUNCE_MS", "EMA_PERIOD", "HISTORY_CANDLES"} {
		assert.Contains(t, err.Error(), key)
	}
}
