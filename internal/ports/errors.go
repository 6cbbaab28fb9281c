package ports

import "errors"

// Standard application-level errors.
// Adapters and the chart core wrap underlying causes with these so callers
// can branch with errors.Is.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Chart state errors. None of these change the view state.
	ErrInvalidAction     = errors.New("unrecognized chart action")
	ErrStepUnknown       = errors.New("interval step unknown before first data load")
	ErrWindowUnresolved  = errors.New("visible window not resolved yet")
	ErrInvalidConfigPath = errors.New("invalid config path or value")

	// Data source errors
	ErrFetchFailed      = errors.New("chart data fetch failed")
	ErrConnectionFailed = errors.New("failed to connect to the data source")
	ErrRateLimited      = errors.New("API rate limit exceeded")
	ErrBadResponse      = errors.New("malformed response from data source")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrInsertFailed = errors.New("database insert failed")
)
