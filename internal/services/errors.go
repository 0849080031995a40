package services

import "errors"

// Dashboard service errors
var (
	// Data errors
	ErrNoDataLoaded   = errors.New("no transaction data loaded")
	ErrDatasetMissing = errors.New("data store not found")

	// Filter errors
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidMapMetric = errors.New("invalid map metric")

	// Area errors
	ErrNoAreasFound = errors.New("no areas found")
	ErrInvalidArea  = errors.New("invalid area")

	// Export errors
	ErrInvalidExportFormat = errors.New("invalid export format")

	// Chart errors
	ErrUnknownChart = errors.New("unknown chart")

	// General errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
