package dataprocessing

import (
	"math"
	"sort"

	"mtapulse/pkg/contracts/domain"
)

// Compute filters records to the inclusive date range in state, resamples them to the
// requested granularity and aggregates the stat-card figures.
//
// Compute never mutates records and never fails. A range with no records yields zeroed
// statistics and empty series; an empty mode selection yields tables with no columns.
// Record order does not affect the result. Callers validate granularity codes with
// domain.ParseGranularity; an unknown code that gets through is computed with
// domain.DefaultGranularity and echoed back as such by Normalize.
func Compute(records []domain.RidershipRecord, state domain.FilterState) domain.PipelineResult {
	state = state.Normalize()

	filtered := filterRange(records, state)
	buckets := resample(filtered, state.Granularity)
	abs, pct := buildTables(buckets, state.Modes)

	result := domain.PipelineResult{
		Absolute:        abs,
		Percentage:      pct,
		AbsoluteTotals:  make(map[domain.Mode]float64, len(state.Modes)),
		PercentageMeans: make(map[domain.Mode]float64, len(state.Modes)),
		Summary:         summarize(filtered),
		RecordCount:     len(filtered),
	}
	for _, s := range abs.Columns {
		result.AbsoluteTotals[s.Mode] = sum(s.Values)
	}
	for _, s := range pct.Columns {
		result.PercentageMeans[s.Mode] = mean(s.Values)
	}
	return result
}

// filterRange returns the records inside [StartDate, EndDate] as a new slice sorted
// by date. A zero bound is treated as open.
func filterRange(records []domain.RidershipRecord, state domain.FilterState) []domain.RidershipRecord {
	out := make([]domain.RidershipRecord, 0, len(records))
	for _, rec := range records {
		if !state.StartDate.IsZero() && rec.Date.Before(state.StartDate) {
			continue
		}
		if !state.EndDate.IsZero() && rec.Date.After(state.EndDate) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func summarize(records []domain.RidershipRecord) domain.SummaryStats {
	total := make([]float64, len(records))
	trips := make([]float64, len(records))
	traffic := make([]float64, len(records))
	for i, rec := range records {
		total[i] = rec.TotalEstimatedRidership
		trips[i] = rec.ScheduledTrips()
		traffic[i] = rec.TrafficVolume()
	}
	return domain.SummaryStats{
		TotalRidership: stat(total),
		ScheduledTrips: stat(trips),
		TrafficVolume:  stat(traffic),
	}
}

func stat(values []float64) domain.Stat {
	if len(values) == 0 {
		return domain.Stat{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return domain.Stat{
		Mean: truncate(mean(values)),
		Min:  truncate(lo),
		Max:  truncate(hi),
	}
}

func truncate(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Trunc(v))
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// mean of an empty slice is 0.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}
