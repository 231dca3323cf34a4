// Package exporter writes resampled ridership tables as CSV or XLSX.
//
// CSVWriter handles the delimited output with an optional UTF-8 BOM so Excel opens
// the file with the right encoding. XLSXWriter builds a workbook with one sheet per
// table plus a summary sheet, using excelize.
//
// Example usage:
//
//	result := dataset.Compute(filter)
//	err := exporter.NewXLSXWriter(logger).Write(w, result)
package exporter
