package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "mtapulse/internal/errors"
	"mtapulse/internal/shared/testutil"
)

func newValidation(t *testing.T) *ValidationMiddleware {
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateFilterQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantField  string
	}{
		{name: "no parameters", query: "", wantStatus: http.StatusOK},
		{name: "full filter", query: "modes=subways,buses&granularity=ME&start_date=2021-01-01&end_date=2021-03-31", wantStatus: http.StatusOK},
		{name: "labels accepted", query: "modes=Subways,Bridges%20and%20Tunnels", wantStatus: http.StatusOK},
		{name: "empty mode selection", query: "modes=", wantStatus: http.StatusOK},
		{name: "start after end is allowed", query: "start_date=2022-01-01&end_date=2021-01-01", wantStatus: http.StatusOK},
		{name: "unknown mode", query: "modes=ferries", wantStatus: http.StatusBadRequest, wantField: "modes"},
		{name: "unknown granularity", query: "granularity=H", wantStatus: http.StatusBadRequest, wantField: "granularity"},
		{name: "lowercase granularity", query: "granularity=me", wantStatus: http.StatusBadRequest, wantField: "granularity"},
		{name: "bad start date", query: "start_date=01/02/2021", wantStatus: http.StatusBadRequest, wantField: "start_date"},
		{name: "bad end date", query: "end_date=2021-02-30", wantStatus: http.StatusBadRequest, wantField: "end_date"},
	}

	h := newValidation(t).ValidateFilterQuery(okHandler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantField == "" {
				return
			}

			var body struct {
				Type    string `json:"type"`
				Details struct {
					Errors []apierrors.ValidationError `json:"errors"`
				} `json:"details"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, apierrors.TypeValidation, body.Type)
			require.Len(t, body.Details.Errors, 1)
			assert.Equal(t, tt.wantField, body.Details.Errors[0].Field)
			assert.Contains(t, body.Details.Errors[0].Message, tt.wantField)
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("int default", func(t *testing.T) {
		n, ok := v.ValidateInt(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "width", 100, 4096, 960)
		assert.True(t, ok)
		assert.Equal(t, 960, n)
	})

	t.Run("int out of range", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, ok := v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?width=10", nil), "width", 100, 4096, 960)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "between 100 and 4096")
	})

	t.Run("int not a number", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, ok := v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?width=wide", nil), "width", 100, 4096, 960)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("enum", func(t *testing.T) {
		got, ok := v.ValidateEnum(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?format=csv", nil), "format", []string{"xlsx", "csv"}, "xlsx")
		assert.True(t, ok)
		assert.Equal(t, "csv", got)

		rec := httptest.NewRecorder()
		_, ok = v.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?format=pdf", nil), "format", []string{"xlsx", "csv"}, "xlsx")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
