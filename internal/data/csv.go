package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

var csvDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"01/02/2006",
}

// LoadCSV reads Date,Open,High,Low,Close[,Volume] rows into a validated
// series. Header names are case-insensitive and column order is free; rows
// with empty or non-numeric prices are skipped.
func LoadCSV(symbol string, r io.Reader) (*models.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	dateCol := -1
	for _, name := range []string{"date", "datetime", "timestamp", "time"} {
		if i, ok := cols[name]; ok {
			dateCol = i
			break
		}
	}
	if dateCol < 0 {
		return nil, errors.New("csv: missing date column")
	}
	for _, name := range []string{"open", "high", "low", "close"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv: missing %s column", name)
		}
	}
	volCol, hasVolume := cols["volume"]

	var bars []models.PriceBar
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		ts, ok := parseCSVTime(field(rec, dateCol))
		if !ok {
			continue
		}
		o, ok1 := parseCSVFloat(field(rec, cols["open"]))
		h, ok2 := parseCSVFloat(field(rec, cols["high"]))
		l, ok3 := parseCSVFloat(field(rec, cols["low"]))
		c, ok4 := parseCSVFloat(field(rec, cols["close"]))
		if !(ok1 && ok2 && ok3 && ok4) {
			continue
		}
		var vol float64
		if hasVolume {
			if vol, ok = parseCSVFloat(field(rec, volCol)); !ok {
				continue
			}
		}

		bars = append(bars, models.PriceBar{Timestamp: ts, Open: o, High: h, Low: l, Close: c, Volume: vol})
	}

	return normalizeBars(symbol, bars)
}

// LoadCSVFile loads a CSV file; an empty symbol defaults to the file's base name
func LoadCSVFile(symbol, path string) (*models.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	if symbol == "" {
		symbol = strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	return LoadCSV(symbol, f)
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseCSVFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseCSVTime(s string) (time.Time, bool) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
