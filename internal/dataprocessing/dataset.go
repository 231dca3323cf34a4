package dataprocessing

import (
	"time"

	"mtapulse/pkg/contracts/domain"
)

// Dataset is the process-wide ridership table. It is built once by the Loader and
// never modified afterwards, so it can be shared by concurrent requests.
type Dataset struct {
	records  []domain.RidershipRecord
	source   string
	loadedAt time.Time
}

func newDataset(records []domain.RidershipRecord, source string) *Dataset {
	return &Dataset{records: records, source: source, loadedAt: time.Now()}
}

// NewDataset builds a dataset from records that are already sorted and unique by date.
// The slice is copied.
func NewDataset(records []domain.RidershipRecord, source string) *Dataset {
	cp := make([]domain.RidershipRecord, len(records))
	copy(cp, records)
	return newDataset(cp, source)
}

// Records returns a copy of the table.
func (d *Dataset) Records() []domain.RidershipRecord {
	cp := make([]domain.RidershipRecord, len(d.records))
	copy(cp, d.records)
	return cp
}

// Len returns the number of daily records.
func (d *Dataset) Len() int { return len(d.records) }

// Source returns the path the dataset was read from.
func (d *Dataset) Source() string { return d.source }

// LoadedAt returns when the dataset was parsed.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// MinDate returns the first date in the table, or the zero time when empty.
func (d *Dataset) MinDate() time.Time {
	if len(d.records) == 0 {
		return time.Time{}
	}
	return d.records[0].Date
}

// MaxDate returns the last date in the table, or the zero time when empty.
func (d *Dataset) MaxDate() time.Time {
	if len(d.records) == 0 {
		return time.Time{}
	}
	return d.records[len(d.records)-1].Date
}

// DefaultFilter is the filter the dashboard opens with: default modes, weekly
// buckets, and the full date coverage.
func (d *Dataset) DefaultFilter() domain.FilterState {
	modes := make([]domain.Mode, len(domain.DefaultModes))
	copy(modes, domain.DefaultModes)
	return domain.FilterState{
		Modes:       modes,
		Granularity: domain.DefaultGranularity,
		StartDate:   d.MinDate(),
		EndDate:     d.MaxDate(),
	}
}

// Compute runs the pipeline over the whole table.
func (d *Dataset) Compute(state domain.FilterState) domain.PipelineResult {
	return Compute(d.records, state)
}
