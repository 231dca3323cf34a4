// Package api contains the HTTP request contracts of the dashboard API.
// Version v1 represents the current stable API version.
package api

// FilterRequest is the dashboard filter carried in query parameters. Modes is a
// comma separated list of mode keys or labels.
type FilterRequest struct {
	Modes       string `json:"modes" query:"modes" validate:"omitempty,modes"`
	Granularity string `json:"granularity" query:"granularity" validate:"omitempty,granularity"`
	StartDate   string `json:"start_date" query:"start_date" validate:"omitempty,iso8601"`
	EndDate     string `json:"end_date" query:"end_date" validate:"omitempty,iso8601"`
}
