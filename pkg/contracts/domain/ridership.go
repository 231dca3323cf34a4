package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// RidershipRecord is one calendar day of ridership. Absolute and Percentage are
// indexed by Mode.
type RidershipRecord struct {
	Date       time.Time
	Absolute   [ModeCount]float64
	Percentage [ModeCount]float64

	// TotalEstimatedRidership is the sum of the subway, bus, LIRR, Metro-North and
	// Staten Island Railway counts. It is fixed at load time.
	TotalEstimatedRidership float64
}

// RidershipModes are the modes that contribute to TotalEstimatedRidership.
var RidershipModes = []Mode{ModeSubways, ModeBuses, ModeLIRR, ModeMetroNorth, ModeStatenIslandRailway}

// DeriveTotal computes TotalEstimatedRidership from the absolute counts.
func (r *RidershipRecord) DeriveTotal() {
	var total float64
	for _, m := range RidershipModes {
		total += r.Absolute[m]
	}
	r.TotalEstimatedRidership = total
}

// ScheduledTrips returns the paratransit scheduled trip count.
func (r RidershipRecord) ScheduledTrips() float64 { return r.Absolute[ModeAccessARide] }

// TrafficVolume returns the bridges and tunnels traffic count.
func (r RidershipRecord) TrafficVolume() float64 { return r.Absolute[ModeBridgesAndTunnels] }

// FilterState is the query the dashboard sends on every input change.
type FilterState struct {
	Modes       []Mode      `json:"modes"`
	Granularity Granularity `json:"granularity"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
}

// Normalize returns a copy with distinct modes in display order and dates truncated to
// calendar days. An empty or unknown granularity becomes DefaultGranularity.
func (f FilterState) Normalize() FilterState {
	g := f.Granularity
	if !g.Valid() {
		g = DefaultGranularity
	}
	return FilterState{
		Modes:       SortModes(f.Modes),
		Granularity: g,
		StartDate:   TruncateDay(f.StartDate),
		EndDate:     TruncateDay(f.EndDate),
	}
}

// Key is a canonical string for the normalized filter, usable as a cache key.
func (f FilterState) Key() string {
	n := f.Normalize()
	keys := make([]string, len(n.Modes))
	for i, m := range n.Modes {
		keys[i] = m.Key()
	}
	return fmt.Sprintf("%s|%s|%s|%s",
		strings.Join(keys, ","),
		n.Granularity,
		n.StartDate.Format(DateLayout),
		n.EndDate.Format(DateLayout))
}

// Stat holds integer summary statistics. Fractional parts are truncated.
type Stat struct {
	Mean int64 `json:"mean"`
	Min  int64 `json:"min"`
	Max  int64 `json:"max"`
}

// SummaryStats are the three stat-card statistics over the filtered range.
type SummaryStats struct {
	TotalRidership Stat `json:"total_ridership"`
	ScheduledTrips Stat `json:"scheduled_trips"`
	TrafficVolume  Stat `json:"traffic_volume"`
}

// Series is one mode's column of a resampled table.
type Series struct {
	Mode   Mode      `json:"mode"`
	Values []float64 `json:"values"`
}

// Table is a resampled, date-indexed table. Every column has len(Dates) values.
type Table struct {
	Dates   []time.Time `json:"dates"`
	Columns []Series    `json:"columns"`
}

// Len returns the number of buckets.
func (t Table) Len() int { return len(t.Dates) }

// Column returns the series for a mode, if selected.
func (t Table) Column(m Mode) (Series, bool) {
	for _, s := range t.Columns {
		if s.Mode == m {
			return s, true
		}
	}
	return Series{}, false
}

// Modes returns the modes present in the table, in column order.
func (t Table) Modes() []Mode {
	modes := make([]Mode, len(t.Columns))
	for i, s := range t.Columns {
		modes[i] = s.Mode
	}
	return modes
}

// PipelineResult is everything the dashboard needs for one filter state.
type PipelineResult struct {
	Absolute        Table            `json:"absolute"`
	Percentage      Table            `json:"percentage"`
	AbsoluteTotals  map[Mode]float64 `json:"absolute_totals"`
	PercentageMeans map[Mode]float64 `json:"percentage_means"`
	Summary         SummaryStats     `json:"summary"`
	RecordCount     int              `json:"record_count"`
}

// Empty reports whether the filtered range contained no records.
func (p PipelineResult) Empty() bool { return p.RecordCount == 0 }

// TruncateDay drops the time of day, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a wire-format calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
