package exporter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mtapulse/pkg/contracts/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// TableKind selects which resampled table a CSV export contains.
type TableKind string

const (
	TableAbsolute   TableKind = "absolute"
	TablePercentage TableKind = "percentage"
)

var (
	// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrUnknownTable is returned for table names other than absolute and percentage.
	ErrUnknownTable = errors.New("unknown table")
)

// ParseFormat validates a format name. Empty selects CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseTableKind validates a table name. Empty selects the absolute table.
func ParseTableKind(s string) (TableKind, error) {
	switch TableKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", TableAbsolute:
		return TableAbsolute, nil
	case TablePercentage:
		return TablePercentage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
	}
}

// Select returns the requested table from a pipeline result.
func (k TableKind) Select(result domain.PipelineResult) domain.Table {
	if k == TablePercentage {
		return result.Percentage
	}
	return result.Absolute
}

// Filename builds the download name, e.g. ridership_absolute_W_2020-03-01_2024-01-31.csv.
func Filename(kind TableKind, state domain.FilterState, f Format) string {
	n := state.Normalize()
	name := fmt.Sprintf("ridership_%s_%s", kind, n.Granularity)
	if !n.StartDate.IsZero() && !n.EndDate.IsZero() {
		name += "_" + n.StartDate.Format(domain.DateLayout) + "_" + n.EndDate.Format(domain.DateLayout)
	}
	return name + "." + string(f)
}

// tableHeaders is Date followed by the mode labels in column order.
func tableHeaders(t domain.Table) []string {
	headers := make([]string, 0, len(t.Columns)+1)
	headers = append(headers, "Date")
	for _, s := range t.Columns {
		headers = append(headers, s.Mode.Label())
	}
	return headers
}

// tableRecords renders one row per bucket.
func tableRecords(t domain.Table) [][]string {
	rows := make([][]string, len(t.Dates))
	for i, d := range t.Dates {
		row := make([]string, 0, len(t.Columns)+1)
		row = append(row, d.Format(domain.DateLayout))
		for _, s := range t.Columns {
			row = append(row, formatFloat(s.Values[i]))
		}
		rows[i] = row
	}
	return rows
}

// formatFloat uses the shortest representation that round-trips.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
