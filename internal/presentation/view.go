package presentation

import (
	"time"

	"mtapulse/pkg/contracts/domain"
)

// Page copy shown around the widgets.
const (
	AppTitle              = "MTA Daily Ridership"
	DashboardHeading      = "MTA Data Dashboard: Analyzing Public Transport Trends"
	TrendsHeading         = "Trends in Public Transport Ridership Since 2020. A Journey from the Pandemic"
	RecoveryHeading       = "Recovery in Percentages: Public Transport vs. Pre-Pandemic"
	PandemicAnnotation    = "Start of Pandemic"
	AreaChartYLabel       = "Totals"
	PercentageChartYLabel = "% vs Pre-Pandemic Date"
)

// Tooltips on the filter controls.
const (
	ModesTooltip       = "Select the transportation modes you want to analyze."
	GranularityTooltip = "Choose the time interval for the data aggregation."
	DateRangeTooltip   = "Select the date range for the data analysis."
)

// Card ids
const (
	CardRidership = "ridership"
	CardTrips     = "trips"
	CardTraffic   = "traffic"
)

// Options controls the parts of the view that are configuration rather than data.
type Options struct {
	PandemicStart  time.Time
	AnnotationText string
}

// DefaultOptions marks 2020-03-01 as the start of the pandemic.
func DefaultOptions() Options {
	return Options{
		PandemicStart:  time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
		AnnotationText: PandemicAnnotation,
	}
}

// Card is one summary stat card.
type Card struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Tooltip string `json:"tooltip"`
	Value   string `json:"value"`
}

// FilterView echoes the normalized filter back to the client.
type FilterView struct {
	Modes       []string           `json:"modes"`
	Granularity domain.Granularity `json:"granularity"`
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
}

// DashboardView is everything the page re-renders after an input change.
type DashboardView struct {
	Filter          FilterView `json:"filter"`
	Cards           []Card     `json:"cards"`
	AreaChart       ChartSpec  `json:"area_chart"`
	PercentageChart ChartSpec  `json:"percentage_chart"`
	RecordCount     int        `json:"record_count"`
	Empty           bool       `json:"empty"`
}

// Cards builds the three stat cards.
func Cards(s domain.SummaryStats) []Card {
	return []Card{
		{ID: CardRidership, Title: "ESTIMATED RIDERSHIPS", Tooltip: "Average, minimum, and maximum values of ridership.", Value: StatCard(s.TotalRidership)},
		{ID: CardTrips, Title: "SCHEDULED TRIPS", Tooltip: "Average, minimum, and maximum values of scheduled trips.", Value: StatCard(s.ScheduledTrips)},
		{ID: CardTraffic, Title: "TRAFFICS VOLUME", Tooltip: "Average, minimum, and maximum values of total traffic.", Value: StatCard(s.TrafficVolume)},
	}
}

// BuildView formats a pipeline result for the filter that produced it.
func BuildView(result domain.PipelineResult, state domain.FilterState, opts Options) DashboardView {
	state = state.Normalize()
	keys := make([]string, len(state.Modes))
	for i, m := range state.Modes {
		keys[i] = m.Key()
	}

	return DashboardView{
		Filter: FilterView{
			Modes:       keys,
			Granularity: state.Granularity,
			StartDate:   formatDate(state.StartDate),
			EndDate:     formatDate(state.EndDate),
		},
		Cards:           Cards(result.Summary),
		AreaChart:       AreaChart(result, opts),
		PercentageChart: PercentageChart(result, opts),
		RecordCount:     result.RecordCount,
		Empty:           result.Empty(),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
