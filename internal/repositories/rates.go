package repositories

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

const ratesFileName = "exchange_rates.csv"

// RatesRepository persists the exchange rate series as a flat CSV table,
// one row per date. The header is date, base_currency, then the dynamic set
// of pair columns seen so far; missing values serialize as empty cells.
type RatesRepository struct {
	file string
}

// NewRatesRepository creates a repository rooted at dataDir.
func NewRatesRepository(dataDir string) *RatesRepository {
	return &RatesRepository{file: filepath.Join(dataDir, ratesFileName)}
}

// Load reads the persisted series. A missing file is an empty series, not an
// error.
func (r *RatesRepository) Load(ctx context.Context) (models.RateSeries, error) {
	f, err := os.Open(r.file)
	if err != nil {
		if os.IsNotExist(err) {
			return models.RateSeries{}, nil
		}
		return nil, fmt.Errorf("open rates file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rates file: %w", err)
	}
	if len(records) == 0 {
		return models.RateSeries{}, nil
	}

	header := records[0]
	series := make(models.RateSeries, 0, len(records)-1)
	for _, record := range records[1:] {
		row, err := parseRow(header, record)
		if err != nil {
			return nil, fmt.Errorf("parse rates file: %w", err)
		}
		series = append(series, row)
	}

	logger.Log.Debugw("loaded rate series",
		"file", r.file,
		"rows", len(series),
	)
	return series, nil
}

// Merge appends newRows to the persisted series, deduplicates on date with
// the new rows winning, re-sorts ascending and persists atomically. The
// merged series is returned.
func (r *RatesRepository) Merge(ctx context.Context, newRows []models.RateRow) (models.RateSeries, error) {
	series, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	merged := series.Merge(newRows)
	if err := r.save(merged); err != nil {
		return nil, err
	}

	logger.Log.Infow("merged rate series",
		"file", r.file,
		"new_rows", len(newRows),
		"total_rows", len(merged),
	)
	return merged, nil
}

// RatesForPair returns the ordered observations of one pair column. Unknown
// pairs yield an empty slice.
func (r *RatesRepository) RatesForPair(ctx context.Context, pair string) ([]models.RatePoint, error) {
	series, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return series.RatesForPair(pair), nil
}

// DateRange returns the stored min and max dates. ok is false when no data
// is persisted.
func (r *RatesRepository) DateRange(ctx context.Context) (min, max time.Time, ok bool, err error) {
	series, err := r.Load(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	min, max, ok = series.DateRange()
	return min, max, ok, nil
}

// KnownPairs returns the sorted pair columns present in the stored data.
func (r *RatesRepository) KnownPairs(ctx context.Context) ([]string, error) {
	series, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return series.Pairs(), nil
}

// DeleteAll removes the persisted series. Deleting an already absent file
// succeeds.
func (r *RatesRepository) DeleteAll(ctx context.Context) error {
	err := os.Remove(r.file)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete rates file: %w", err)
	}
	logger.Log.Infow("deleted rate series", "file", r.file)
	return nil
}

// save writes the series to a temp file in the target directory and renames
// it over the previous file, so a failed write never leaves a partial table.
func (r *RatesRepository) save(series models.RateSeries) error {
	dir := filepath.Dir(r.file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ratesFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp rates file: %w", err)
	}
	defer os.Remove(tmp.Name())

	pairs := series.Pairs()
	header := append([]string{"date", "base_currency"}, pairs...)

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write rates header: %w", err)
	}
	for _, row := range series {
		record := make([]string, 0, len(header))
		record = append(record, row.Date.Format(models.DateLayout), row.BaseCurrency)
		for _, pair := range pairs {
			if rate, ok := row.Rates[pair]; ok {
				record = append(record, strconv.FormatFloat(rate, 'f', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write rates row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush rates file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp rates file: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.file); err != nil {
		return fmt.Errorf("replace rates file: %w", err)
	}
	return nil
}

func parseRow(header, record []string) (models.RateRow, error) {
	if len(record) != len(header) {
		return models.RateRow{}, fmt.Errorf("row has %d fields, header has %d", len(record), len(header))
	}

	row := models.RateRow{Rates: make(map[string]float64, len(header)-2)}
	for i, col := range header {
		value := record[i]
		switch col {
		case "date":
			date, err := time.Parse(models.DateLayout, value)
			if err != nil {
				return models.RateRow{}, fmt.Errorf("invalid date %q: %w", value, err)
			}
			row.Date = date
		case "base_currency":
			row.BaseCurrency = value
		default:
			if value == "" {
				continue // missing observation, not zero
			}
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return models.RateRow{}, fmt.Errorf("invalid rate %q in column %s: %w", value, col, err)
			}
			row.Rates[col] = rate
		}
	}
	return row, nil
}
