package utils

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"candleview/internal/domain"
)

// WriteCandlesToCSV writes candles of one series to filename, one row per candle.
func WriteCandlesToCSV(symbol string, interval domain.Interval, candles []domain.Candle, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	// Write header
	if err := writer.Write([]string{"open_time", "symbol", "interval", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	for _, c := range candles {
		if err := writer.Write([]string{
			c.Time().Format(time.RFC3339),
			symbol,
			string(interval),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
