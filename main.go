package main

import (
	"context"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"candleview/config"
	"candleview/internal/adapters/chartapi"
	"candleview/internal/adapters/logger"
	"candleview/internal/app"
	"candleview/internal/loader"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger. The terminal belongs to the chart, so logs go to a file.
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		log.Fatalf("FATAL: Failed to create log directory: %v", err)
	}
	logFile, err := tea.LogToFile(cfg.LogFile, "candleview")
	if err != nil {
		log.Fatalf("FATAL: Failed to open log file: %v", err)
	}
	defer logFile.Close()
	appLogger := logger.NewWriterLogger(logFile, cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Resolve the starting view: argument, CHART_URL, then the last bookmark
	rawURL := cfg.ChartURL
	if len(os.Args) > 1 {
		rawURL = os.Args[1]
	}
	if rawURL == "" {
		if rawURL, err = app.LoadBookmark(cfg.BookmarkFile); err != nil {
			appLogger.Warn(context.Background(), "Ignoring unreadable bookmark", map[string]interface{}{"error": err.Error()})
		}
	}
	location, err := loader.ParseLocation(rawURL)
	if err != nil {
		log.Fatalf("FATAL: Invalid chart URL %q: %v", rawURL, err)
	}

	// 4. Initialize the chart backend client
	client, err := chartapi.NewClient(cfg.ChartServerURL, cfg.HTTPTimeout, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize chart client")
		log.Fatalf("FATAL: Failed to initialize chart client: %v", err)
	}

	// 5. Initialize the chart model
	model, err := app.NewModel(cfg, appLogger, client, location)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize chart")
		log.Fatalf("FATAL: Failed to initialize chart: %v", err)
	}
	defer model.Close()

	// 6. Run the event loop
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		appLogger.Error(context.Background(), err, "Chart exited with error")
		log.Fatalf("FATAL: Chart exited with error: %v", err)
	}

	if err := model.SaveBookmark(); err != nil {
		appLogger.Error(context.Background(), err, "Failed to save bookmark")
	}
	fmt.Println(model.Location())
	appLogger.Info(context.Background(), "Application finished gracefully.")
}
