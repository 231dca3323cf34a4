package services

import (
	apierrors "mtapulse/internal/errors"
)

// Dashboard service errors. They alias the shared sentinels so the HTTP layer maps
// them without importing this package.
var (
	ErrInvalidFilter      = apierrors.ErrInvalidFilter
	ErrChartNotFound      = apierrors.ErrChartNotFound
	ErrDatasetUnavailable = apierrors.ErrDatasetUnavailable
)
