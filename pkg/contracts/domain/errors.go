package domain

import "errors"

var (
	// ErrUnknownMode is returned when a mode identifier matches no known mode.
	ErrUnknownMode = errors.New("unknown transport mode")

	// ErrUnknownGranularity is returned for granularity codes outside D, W, ME, QE, YE.
	ErrUnknownGranularity = errors.New("unknown granularity")
)
