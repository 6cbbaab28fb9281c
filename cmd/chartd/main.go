package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"candleview/config"
	"candleview/internal/adapters/binanceclient"
	"candleview/internal/adapters/logger"
	"candleview/internal/adapters/postgres"
	"candleview/internal/adapters/sqlite"
	"candleview/internal/backend"
	"candleview/internal/ports"
)

const shutdownTimeout = 10 * time.Second

// candleCache is a repository the server owns and closes.
type candleCache interface {
	ports.CandleRepository
	Close() error
}

func openCache(cfg *config.Config, appLogger ports.Logger) (candleCache, error) {
	if cfg.DatabaseURL != "" {
		return postgres.NewRepository(postgres.Config{URL: cfg.DatabaseURL, Logger: appLogger})
	}
	return sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
}

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize the candle cache (PostgreSQL when DATABASE_URL is set)
	repo, err := openCache(cfg, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize candle cache")
		log.Fatalf("FATAL: Failed to initialize candle cache: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing candle cache")
		}
	}()

	// 4. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	if err := binanceClient.Ping(context.Background()); err != nil {
		// Cached windows can still be served.
		appLogger.Warn(context.Background(), "Binance API unreachable at startup", map[string]interface{}{"error": err.Error()})
	}

	// 5. Initialize the chart service and its HTTP handler
	metrics := backend.NewMetrics(prometheus.DefaultRegisterer)
	svc, err := backend.NewService(repo, binanceClient, appLogger, metrics, cfg.HistoryCandles)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize chart service")
		log.Fatalf("FATAL: Failed to initialize chart service: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           backend.NewHandler(svc, metrics, prometheus.DefaultGatherer, appLogger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 6. Serve until a shutdown signal arrives
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info(ctx, "Chart server listening", map[string]interface{}{"addr": cfg.ListenAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(ctx, err, "Chart server failed")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info(context.Background(), "Shutting down chart server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, err, "Chart server shutdown failed")
	}
	appLogger.Info(context.Background(), "Application finished gracefully.")
}
