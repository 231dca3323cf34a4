package domain

import (
	"fmt"
	"strings"
)

// Granularity is the calendar bucket used when resampling daily records.
type Granularity string

const (
	GranularityDay     Granularity = "D"
	GranularityWeek    Granularity = "W"
	GranularityMonth   Granularity = "ME"
	GranularityQuarter Granularity = "QE"
	GranularityYear    Granularity = "YE"
)

// DefaultGranularity is the bucket size selected on first load.
const DefaultGranularity = GranularityWeek

var granularityLabels = []struct {
	code  Granularity
	label string
}{
	{GranularityDay, "Date"},
	{GranularityWeek, "Week"},
	{GranularityMonth, "Month"},
	{GranularityQuarter, "Quarter"},
	{GranularityYear, "Year"},
}

// GranularityOption pairs a granularity code with its radio-button label.
type GranularityOption struct {
	Code  Granularity `json:"code"`
	Label string      `json:"label"`
}

// Granularities lists the supported codes in selector order.
func Granularities() []GranularityOption {
	out := make([]GranularityOption, len(granularityLabels))
	for i, g := range granularityLabels {
		out[i] = GranularityOption{Code: g.code, Label: g.label}
	}
	return out
}

// Valid reports whether g is a supported code.
func (g Granularity) Valid() bool {
	for _, known := range granularityLabels {
		if g == known.code {
			return true
		}
	}
	return false
}

// Label returns the human readable name shown next to the radio button.
func (g Granularity) Label() string {
	for _, known := range granularityLabels {
		if g == known.code {
			return known.label
		}
	}
	return string(g)
}

// ParseGranularity validates a granularity code. Codes are case sensitive apart from
// surrounding whitespace, matching the values the dashboard emits.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.TrimSpace(s))
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
	return g, nil
}
