package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtapulse/pkg/contracts/domain"
)

func csvContent(rows ...string) string {
	return strings.Join(RequiredColumns(), ",") + "\n" + strings.Join(rows, "\n") + "\n"
}

// rows are written in RequiredColumns order: date then absolute, percentage per mode.
const (
	rowJan1 = "2021-01-01,100,50,200,60,30,40,40,45,5,20,500,70,1000,80"
	rowJan2 = "2021-01-02,110,55,210,61,31,41,41,46,6,21,510,71,1100,81"
)

func TestLoader_LoadSample(t *testing.T) {
	loader := NewLoader(nil)
	ds, err := loader.Load(context.Background(), filepath.Join("testdata", "ridership_sample.csv"))
	require.NoError(t, err)

	require.Equal(t, 5, ds.Len())
	assert.Equal(t, "2020-03-01", ds.MinDate().Format(domain.DateLayout))
	assert.Equal(t, "2020-03-05", ds.MaxDate().Format(domain.DateLayout))

	records := ds.Records()
	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].Date.Before(records[i].Date), "records sorted ascending")
	}

	first := records[0]
	assert.Equal(t, 2212965.0, first.Absolute[domain.ModeSubways])
	assert.Equal(t, 97.0, first.Percentage[domain.ModeSubways])
	assert.Equal(t, 7375.0, first.ScheduledTrips())
	assert.Equal(t, 799032.0, first.TrafficVolume())
	assert.Equal(t, 2212965.0+984908+0+55000+0, first.TotalEstimatedRidership)

	// thousands separators inside quoted fields
	assert.Equal(t, 5329563.0, records[2].Absolute[domain.ModeSubways])
}

func TestParseDataset(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, ds *Dataset)
	}{
		{
			name:    "valid two rows out of order",
			content: csvContent(rowJan2, rowJan1),
			check: func(t *testing.T, ds *Dataset) {
				require.Equal(t, 2, ds.Len())
				r := ds.Records()[0]
				assert.Equal(t, "2021-01-01", r.Date.Format(domain.DateLayout))
				assert.Equal(t, 100.0+200+30+40+5, r.TotalEstimatedRidership)
				assert.Equal(t, 80.0, r.Percentage[domain.ModeBridgesAndTunnels])
			},
		},
		{
			name:    "missing column",
			content: "Date,Subways: Total Estimated Ridership\n2021-01-01,1\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "bad number",
			content: csvContent(strings.Replace(rowJan1, ",100,", ",lots,", 1)),
			wantErr: ErrMalformedData,
		},
		{
			name:    "empty cell",
			content: csvContent(strings.Replace(rowJan1, ",100,", ",,", 1)),
			wantErr: ErrMalformedData,
		},
		{
			name:    "negative count",
			content: csvContent(strings.Replace(rowJan1, ",100,", ",-100,", 1)),
			wantErr: ErrMalformedData,
		},
		{
			name:    "bad date",
			content: csvContent(strings.Replace(rowJan1, "2021-01-01", "yesterday", 1)),
			wantErr: ErrMalformedData,
		},
		{
			name:    "duplicate date",
			content: csvContent(rowJan1, rowJan1),
			wantErr: ErrDuplicateDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseDataset(strings.NewReader(tt.content))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, IsLoadError(err))
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ds)
				return
			}
			require.NoError(t, err)
			tt.check(t, ds)
		})
	}
}

func TestParseDataset_HeaderOnly(t *testing.T) {
	_, err := ParseDataset(strings.NewReader(csvContent()))
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "read", le.Op)
	assert.ErrorIs(t, err, ErrDataFileMissing)
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestLoader_RowNumberInError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	bad := strings.Replace(rowJan2, ",210,", ",x,", 1)
	require.NoError(t, os.WriteFile(path, []byte(csvContent(rowJan1, bad)), 0o644))

	_, err := NewLoader(nil).Load(context.Background(), path)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 2, le.Row)
	assert.Contains(t, err.Error(), "Buses: Total Estimated Ridership")
}

func TestDataset_DefaultFilter(t *testing.T) {
	ds, err := ParseDataset(strings.NewReader(csvContent(rowJan1, rowJan2)))
	require.NoError(t, err)

	f := ds.DefaultFilter()
	assert.Equal(t, domain.DefaultModes, f.Modes)
	assert.Equal(t, domain.GranularityWeek, f.Granularity)
	assert.Equal(t, ds.MinDate(), f.StartDate)
	assert.Equal(t, ds.MaxDate(), f.EndDate)

	// the returned slice is detached from the package default
	f.Modes[0] = domain.ModeLIRR
	assert.Equal(t, domain.ModeSubways, domain.DefaultModes[0])
}

func TestDataset_RecordsIsCopy(t *testing.T) {
	ds, err := ParseDataset(strings.NewReader(csvContent(rowJan1)))
	require.NoError(t, err)

	recs := ds.Records()
	recs[0].TotalEstimatedRidership = -1
	assert.NotEqual(t, -1.0, ds.Records()[0].TotalEstimatedRidership)
}
