package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"mtapulse/pkg/contracts/domain"
)

// Sheet names in exported workbooks.
const (
	SheetAbsolute   = "Absolute"
	SheetPercentage = "Percentage"
	SheetSummary    = "Summary"
)

const dateNumFmt = "yyyy-mm-dd"

// XLSXWriter writes pipeline results as Excel workbooks.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a workbook writer.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger.With(slog.String("component", "xlsx_exporter"))}
}

// Write builds the workbook and streams it to w.
func (x *XLSXWriter) Write(w io.Writer, result domain.PipelineResult) error {
	f, err := x.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook to filePath, creating parent directories.
func (x *XLSXWriter) WriteFile(filePath string, result domain.PipelineResult) error {
	x.logger.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.Int("buckets", result.Absolute.Len()))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := x.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (x *XLSXWriter) build(result domain.PipelineResult) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	numFmt := dateNumFmt
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create date style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetAbsolute); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeTableSheet(f, SheetAbsolute, result.Absolute, header, dateStyle); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(SheetPercentage); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet %s: %w", SheetPercentage, err)
	}
	if err := writeTableSheet(f, SheetPercentage, result.Percentage, header, dateStyle); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet %s: %w", SheetSummary, err)
	}
	if err := writeSummarySheet(f, result, header); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeTableSheet(f *excelize.File, sheet string, t domain.Table, header, dateStyle int) error {
	headers := tableHeaders(t)
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i, d := range t.Dates {
		values := make([]interface{}, 0, len(t.Columns)+1)
		values = append(values, d)
		for _, s := range t.Columns {
			values = append(values, s.Values[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	if len(t.Dates) > 0 {
		end, err := excelize.CoordinatesToCellName(1, len(t.Dates)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A2", end, dateStyle); err != nil {
			return fmt.Errorf("style %s dates: %w", sheet, err)
		}
	}
	return f.SetColWidth(sheet, "A", "A", 12)
}

func writeSummarySheet(f *excelize.File, result domain.PipelineResult, header int) error {
	rows := [][]interface{}{
		{"Statistic", "Mean", "Min", "Max"},
		statRow("Total Estimated Ridership", result.Summary.TotalRidership),
		statRow("Access-A-Ride: Total Scheduled Trips", result.Summary.ScheduledTrips),
		statRow("Bridges and Tunnels: Total Traffic", result.Summary.TrafficVolume),
		{},
		{"Mode", "Total", "Mean % of Pre-Pandemic"},
	}
	for _, m := range result.Absolute.Modes() {
		rows = append(rows, []interface{}{m.Label(), result.AbsoluteTotals[m], result.PercentageMeans[m]})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Records", result.RecordCount})

	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "D1", header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A6", "C6", header); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "A", 36)
}

func statRow(name string, s domain.Stat) []interface{} {
	return []interface{}{name, s.Mean, s.Min, s.Max}
}
