package dataprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrDataFileMissing indicates the ridership CSV does not exist.
	ErrDataFileMissing = errors.New("data file missing")

	// ErrMalformedData indicates the CSV could not be parsed into records.
	ErrMalformedData = errors.New("malformed data")

	// ErrMissingColumn indicates a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrDuplicateDate indicates two rows share the same calendar date.
	ErrDuplicateDate = errors.New("duplicate date")

	// ErrNoRecords indicates the file has a header but no data rows.
	ErrNoRecords = errors.New("no records")
)

// LoadError is returned when the dataset cannot be loaded. It is fatal at startup.
type LoadError struct {
	Path string // source file, or "<reader>" when parsing a stream
	Op   string // read, parse or validate
	Row  int    // 1-based data row, 0 when not row specific
	Err  error
}

func (e *LoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("load %s: %s row %d: %v", e.Path, e.Op, e.Row, e.Err)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
