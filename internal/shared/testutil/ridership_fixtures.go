package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"mtapulse/internal/dataprocessing"
	"mtapulse/pkg/contracts/domain"
)

// FixtureStart is the first day produced by the ridership fixtures, a Monday.
var FixtureStart = time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)

// DailyRecords returns days consecutive records starting at start. Values grow
// linearly with the day index so aggregates are easy to compute by hand:
// subways 1_000_000+1000i, buses 500_000+500i, LIRR 50_000+10i, Metro-North
// 40_000+10i, SIR 3_000+i, Access-A-Ride 20_000+i, bridges and tunnels 800_000+100i.
// Every percentage column is 50+i.
func DailyRecords(start time.Time, days int) []domain.RidershipRecord {
	base := [domain.ModeCount]float64{1_000_000, 500_000, 50_000, 40_000, 3_000, 20_000, 800_000}
	step := [domain.ModeCount]float64{1000, 500, 10, 10, 1, 1, 100}

	records := make([]domain.RidershipRecord, days)
	for i := range records {
		rec := domain.RidershipRecord{Date: domain.TruncateDay(start.AddDate(0, 0, i))}
		for m := range base {
			rec.Absolute[m] = base[m] + step[m]*float64(i)
			rec.Percentage[m] = 50 + float64(i)
		}
		rec.DeriveTotal()
		records[i] = rec
	}
	return records
}

// NewDataset builds an in-memory dataset from DailyRecords.
func NewDataset(days int) *dataprocessing.Dataset {
	return dataprocessing.NewDataset(DailyRecords(FixtureStart, days), "fixture")
}

// RidershipCSV renders records in the published column layout with US-style dates.
func RidershipCSV(records []domain.RidershipRecord) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(dataprocessing.RequiredColumns())
	for _, rec := range records {
		row := []string{rec.Date.Format("01/02/2006")}
		for _, m := range domain.AllModes() {
			row = append(row,
				strconv.FormatFloat(rec.Absolute[m], 'f', -1, 64),
				strconv.FormatFloat(rec.Percentage[m], 'f', -1, 64)+"%",
			)
		}
		_ = w.Write(row)
	}
	w.Flush()
	return b.String()
}

// WriteRidershipCSV writes records to a temp file and returns its path.
func WriteRidershipCSV(t *testing.T, records []domain.RidershipRecord) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ridership.csv")
	if err := os.WriteFile(path, []byte(RidershipCSV(records)), 0o644); err != nil {
		t.Fatalf("write ridership fixture: %v", err)
	}
	return path
}
