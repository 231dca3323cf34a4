package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtapulse/internal/dataprocessing"
	"mtapulse/internal/exporter"
	"mtapulse/internal/presentation"
	"mtapulse/pkg/contracts/domain"
)

func TestAPIError(t *testing.T) {
	err := InvalidRequestWithError(errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "Invalid request format", err.Error())
	assert.Equal(t, "unexpected EOF", err.Details)

	verr := ErrValidation("granularity", "must be one of D W ME QE YE")
	assert.Equal(t, "VALIDATION_FAILED", verr.ErrorCode)
	assert.Equal(t, ValidationError{Field: "granularity", Message: "must be one of D W ME QE YE"}, verr.Details)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeInvalidFilter, "Bad Request", "unknown granularity", "/api/dashboard").
		WithExtension("trace_id", "abc").
		WithExtension("status", 999)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeInvalidFilter, got["type"])
	assert.Equal(t, "Bad Request", got["title"])
	assert.Equal(t, float64(http.StatusBadRequest), got["status"], "extensions cannot override standard members")
	assert.Equal(t, "unknown granularity", got["detail"])
	assert.Equal(t, "/api/dashboard", got["instance"])
	assert.Equal(t, "abc", got["trace_id"])
}

func TestProblemDetails_OmitsEmptyMembers(t *testing.T) {
	data, err := json.Marshal(NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", ""))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "detail")
	assert.NotContains(t, string(data), "instance")
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid filter",
			err:        fmt.Errorf("%w: start_date after end_date", ErrInvalidFilter),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FILTER",
		},
		{
			name:       "unknown mode",
			err:        fmt.Errorf("parse modes: %w", domain.ErrUnknownMode),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FILTER",
		},
		{
			name:       "unknown granularity",
			err:        domain.ErrUnknownGranularity,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FILTER",
		},
		{
			name:       "unsupported export format",
			err:        exporter.ErrUnsupportedFormat,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PARAMETER",
		},
		{
			name:       "unknown export table",
			err:        exporter.ErrUnknownTable,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PARAMETER",
		},
		{
			name:       "chart size",
			err:        presentation.ErrInvalidChartSize,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PARAMETER",
		},
		{
			name:       "chart not found",
			err:        fmt.Errorf("%w: pie", ErrChartNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "CHART_NOT_FOUND",
		},
		{
			name:       "rate limited",
			err:        ErrRateLimited,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMIT_EXCEEDED",
		},
		{
			name:       "load error",
			err:        &dataprocessing.LoadError{Path: "x.csv", Op: "read", Err: dataprocessing.ErrDataFileMissing},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "DATASET_UNAVAILABLE",
		},
		{
			name:       "api error passes through",
			err:        fmt.Errorf("wrapped: %w", ErrRateLimitExceeded),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMIT_EXCEEDED",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToAPIError(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.ErrorCode)
		})
	}
}

func TestToAPIError_DoesNotLeakInternals(t *testing.T) {
	got := ToAPIError(errors.New("open /etc/secret: permission denied"))
	assert.NotContains(t, got.Message, "/etc/secret")
}
