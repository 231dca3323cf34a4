package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"mtapulse/pkg/contracts/domain"
)

// DateColumn is the header of the calendar date column.
const DateColumn = "Date"

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

// RequiredColumns lists every header the loader needs, Date first.
func RequiredColumns() []string {
	cols := []string{DateColumn}
	for _, m := range domain.AllModes() {
		info := m.Info()
		cols = append(cols, info.AbsoluteColumn, info.PercentageColumn)
	}
	return cols
}

// Loader reads the ridership CSV into an immutable Dataset.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "dataset_loader"))}
}

// Load opens path and parses it. Every failure is a *LoadError.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	start := time.Now()
	l.logger.InfoContext(ctx, "loading ridership dataset", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrDataFileMissing, err)
		}
		l.logger.ErrorContext(ctx, "cannot open ridership dataset",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, &LoadError{Path: path, Op: "read", Err: err}
	}
	defer f.Close()

	ds, err := parse(f, path)
	if err != nil {
		l.logger.ErrorContext(ctx, "cannot parse ridership dataset",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	l.logger.InfoContext(ctx, "ridership dataset loaded",
		slog.String("path", path),
		slog.Int("records", ds.Len()),
		slog.String("min_date", ds.MinDate().Format(domain.DateLayout)),
		slog.String("max_date", ds.MaxDate().Format(domain.DateLayout)),
		slog.Duration("duration", time.Since(start)))

	return ds, nil
}

// ParseDataset parses CSV content from r.
func ParseDataset(r io.Reader) (*Dataset, error) {
	return parse(r, "<reader>")
}

func parse(r io.Reader, source string) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, &LoadError{Path: source, Op: "parse", Err: fmt.Errorf("%w: %v", ErrMalformedData, df.Err)}
	}

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[strings.TrimSpace(name)] = true
	}
	var missing []string
	for _, col := range RequiredColumns() {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &LoadError{
			Path: source,
			Op:   "validate",
			Err:  fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", ")),
		}
	}

	n := df.Nrow()
	if n == 0 {
		return nil, &LoadError{Path: source, Op: "validate", Err: ErrNoRecords}
	}

	columns := make(map[string][]string, len(present))
	for _, name := range df.Names() {
		columns[strings.TrimSpace(name)] = df.Col(name).Records()
	}

	records := make([]domain.RidershipRecord, n)
	dates := columns[DateColumn]
	for i := 0; i < n; i++ {
		row := i + 1
		date, err := parseDate(dates[i])
		if err != nil {
			return nil, &LoadError{Path: source, Op: "parse", Row: row, Err: err}
		}
		rec := domain.RidershipRecord{Date: date}
		for _, m := range domain.AllModes() {
			info := m.Info()
			abs, err := parseNumber(columns[info.AbsoluteColumn][i])
			if err != nil {
				return nil, &LoadError{Path: source, Op: "parse", Row: row, Err: fmt.Errorf("%s: %w", info.AbsoluteColumn, err)}
			}
			if abs < 0 {
				return nil, &LoadError{Path: source, Op: "parse", Row: row,
					Err: fmt.Errorf("%w: %s is negative", ErrMalformedData, info.AbsoluteColumn)}
			}
			pct, err := parseNumber(columns[info.PercentageColumn][i])
			if err != nil {
				return nil, &LoadError{Path: source, Op: "parse", Row: row, Err: fmt.Errorf("%s: %w", info.PercentageColumn, err)}
			}
			rec.Absolute[m] = abs
			rec.Percentage[m] = pct
		}
		rec.DeriveTotal()
		records[i] = rec
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Date.Before(records[b].Date)
	})
	for i := 1; i < len(records); i++ {
		if records[i].Date.Equal(records[i-1].Date) {
			return nil, &LoadError{
				Path: source,
				Op:   "validate",
				Err:  fmt.Errorf("%w: %s", ErrDuplicateDate, records[i].Date.Format(domain.DateLayout)),
			}
		}
	}

	return newDataset(records, source), nil
}

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.TruncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrMalformedData, raw)
}

// parseNumber accepts plain numbers, thousands separators and a trailing percent sign.
func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrMalformedData)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: invalid number %q", ErrMalformedData, raw)
	}
	return v, nil
}
