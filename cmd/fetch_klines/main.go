package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"candleview/config"
	"candleview/internal/adapters/binanceclient"
	"candleview/internal/adapters/logger"
	"candleview/internal/adapters/sqlite"
	"candleview/internal/backend"
	"candleview/internal/domain"
	"candleview/internal/utils"
)

var (
	symbolFlag   = flag.String("symbol", "", "symbol to fetch (default SYMBOL)")
	intervalFlag = flag.String("interval", "", "candle interval (default INTERVAL)")
	daysFlag     = flag.Int("days", 30, "days of history to fetch")
	csvFlag      = flag.Bool("csv", false, "also write the candles to a CSV file under data/")
)

// fetch_klines warms the chart backend's SQLite cache for one series.
func main() {
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}
	symbol := cfg.Symbol
	if *symbolFlag != "" {
		symbol = strings.ToUpper(*symbolFlag)
	}
	interval := cfg.Interval
	if *intervalFlag != "" {
		if interval, err = domain.ParseInterval(*intervalFlag); err != nil {
			log.Fatalf("FATAL: %v", err)
		}
	}
	if *daysFlag <= 0 {
		log.Fatalf("FATAL: -days must be positive")
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository and Exchange Client
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer repo.Close()

	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 4. Fill the cache through the chart service
	svc, err := backend.NewService(repo, binanceClient, appLogger, backend.NewMetrics(prometheus.NewRegistry()), cfg.HistoryCandles)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize chart service: %v", err)
	}
	end := time.Now()
	start := end.AddDate(0, 0, -*daysFlag)
	svc.SetLimit(int(end.Sub(start)/interval.Duration()) + 1)

	fmt.Printf("Fetching candles for %s %s from %s to %s...\n", symbol, interval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	resp, err := svc.Chart(context.Background(), domain.ChartQuery{
		Symbol:   symbol,
		Interval: interval,
		Start:    domain.Int64(start.UnixMilli()),
		End:      domain.Int64(end.UnixMilli()),
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "Error fetching candles")
		log.Fatalf("Error fetching candles: %v", err)
	}
	candles := resp.Candles.Candles
	appLogger.Info(context.Background(), "Candle cache warmed", map[string]interface{}{"count": len(candles)})

	if !*csvFlag {
		return
	}
	filename := filepath.Join(filepath.Dir(cfg.DBPath), fmt.Sprintf("%s_%s_%s_to_%s.csv", symbol, interval, start.Format("20060102"), end.Format("20060102")))
	if err := utils.WriteCandlesToCSV(symbol, interval, candles, filename); err != nil {
		appLogger.Error(context.Background(), err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename})
}
