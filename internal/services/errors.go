package services

import "errors"

// Dashboard service errors. Returned errors wrap both the sentinel and an API
// error carrying the HTTP status, so callers may match either.
var (
	ErrDataUnavailable   = errors.New("datasets unavailable")
	ErrUnknownDataset    = errors.New("unknown dataset")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
