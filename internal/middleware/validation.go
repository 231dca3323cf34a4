package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apierrors "mtapulse/internal/errors"
	api "mtapulse/pkg/contracts/api/v1"
	"mtapulse/pkg/contracts/domain"
)

// FilterQuery is the query string accepted by the dashboard endpoints. Fields are
// optional; the service fills in defaults.
type FilterQuery = api.FilterRequest

// FilterQueryFrom copies the dashboard parameters out of r.
func FilterQueryFrom(r *http.Request) FilterQuery {
	q := r.URL.Query()
	return FilterQuery{
		Modes:       strings.Join(q["modes"], ","),
		Granularity: q.Get("granularity"),
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
	}
}

// ValidationMiddleware provides request validation using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New()

	v.RegisterValidation("iso8601", isISO8601)
	v.RegisterValidation("modes", isModeList)
	v.RegisterValidation("granularity", isGranularity)

	// Report query parameter names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("query")
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
	}
}

// ValidateFilterQuery rejects dashboard requests whose filter parameters cannot be
// parsed, before they reach the handler.
func (m *ValidationMiddleware) ValidateFilterQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.ValidateStruct(FilterQueryFrom(r)); err != nil {
			m.logger.DebugContext(r.Context(), "filter query rejected",
				slog.String("query", r.URL.RawQuery),
				slog.String("request_id", GetReqID(r.Context())),
			)
			m.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: m.formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(fields)
}

// formatValidationError formats validation error messages
func (m *ValidationMiddleware) formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", "))
	case "iso8601":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "modes":
		keys := make([]string, 0, domain.ModeCount)
		for _, mode := range domain.AllModes() {
			keys = append(keys, mode.Key())
		}
		return fmt.Sprintf("%s must be a comma separated list of: %s", field, strings.Join(keys, ", "))
	case "granularity":
		codes := make([]string, 0, 5)
		for _, g := range domain.Granularities() {
			codes = append(codes, string(g.Code))
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(codes, ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, err.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isISO8601 accepts calendar dates in YYYY-MM-DD form.
func isISO8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.DateLayout, fl.Field().String())
	return err == nil
}

func isModeList(fl validator.FieldLevel) bool {
	_, err := domain.ParseModes([]string{fl.Field().String()})
	return err == nil
}

func isGranularity(fl validator.FieldLevel) bool {
	return domain.Granularity(fl.Field().String()).Valid()
}

// QueryParamValidator validates single query parameters inside handlers.
type QueryParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateInt validates an integer query parameter. On failure the error response
// has been written and ok is false.
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param)))
		return 0, false
	}
	if n < min || n > max {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be between %d and %d", param, min, max)))
		return 0, false
	}
	return n, true
}

// ValidateEnum validates an enum query parameter
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if value == a {
			return value, true
		}
	}

	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
	return "", false
}
