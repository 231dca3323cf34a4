package dataprocessing

import (
	"sort"
	"time"

	"mtapulse/pkg/contracts/domain"
)

// BucketEnd returns the label of the bucket that contains date.
//
//	D   the date itself
//	W   the Sunday closing the Monday..Sunday ISO week
//	ME  the last day of the calendar month
//	QE  the last day of the calendar quarter
//	YE  December 31
//
// Unknown codes fall back to weekly buckets.
func BucketEnd(date time.Time, g domain.Granularity) time.Time {
	d := domain.TruncateDay(date)
	y, m, _ := d.Date()
	switch g {
	case domain.GranularityDay:
		return d
	case domain.GranularityMonth:
		return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
	case domain.GranularityQuarter:
		qEnd := ((m-1)/3 + 1) * 3
		return time.Date(y, qEnd+1, 0, 0, 0, 0, 0, time.UTC)
	case domain.GranularityYear:
		return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		offset := (7 - int(d.Weekday())) % 7
		return d.AddDate(0, 0, offset)
	}
}

type bucket struct {
	end   time.Time
	sum   [domain.ModeCount]float64
	pct   [domain.ModeCount]float64
	count int
}

// resample groups date-sorted records into buckets. Buckets come back in date order
// and only buckets holding at least one record exist.
func resample(records []domain.RidershipRecord, g domain.Granularity) []*bucket {
	var buckets []*bucket
	index := make(map[int64]*bucket)
	for _, rec := range records {
		end := BucketEnd(rec.Date, g)
		key := end.Unix()
		b, ok := index[key]
		if !ok {
			b = &bucket{end: end}
			index[key] = b
			buckets = append(buckets, b)
		}
		for m := 0; m < domain.ModeCount; m++ {
			b.sum[m] += rec.Absolute[m]
			b.pct[m] += rec.Percentage[m]
		}
		b.count++
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].end.Before(buckets[j].end)
	})
	return buckets
}

// buildTables projects the buckets onto the selected modes. Absolute values are bucket
// sums and percentages are bucket means.
func buildTables(buckets []*bucket, modes []domain.Mode) (domain.Table, domain.Table) {
	dates := make([]time.Time, len(buckets))
	for i, b := range buckets {
		dates[i] = b.end
	}

	abs := domain.Table{Dates: dates, Columns: make([]domain.Series, 0, len(modes))}
	pctDates := make([]time.Time, len(dates))
	copy(pctDates, dates)
	pct := domain.Table{Dates: pctDates, Columns: make([]domain.Series, 0, len(modes))}

	for _, m := range modes {
		absValues := make([]float64, len(buckets))
		pctValues := make([]float64, len(buckets))
		for i, b := range buckets {
			absValues[i] = b.sum[m]
			pctValues[i] = b.pct[m] / float64(b.count)
		}
		abs.Columns = append(abs.Columns, domain.Series{Mode: m, Values: absValues})
		pct.Columns = append(pct.Columns, domain.Series{Mode: m, Values: pctValues})
	}
	return abs, pct
}
