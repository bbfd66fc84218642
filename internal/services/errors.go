package services

import "errors"

// Service-level errors surfaced to the transport layer.
var (
	// ErrInvalidPeriodBound marks a range bound the variant could not
	// parse; the transport maps it to a validation failure.
	ErrInvalidPeriodBound = errors.New("invalid period bound")

	// ErrEmptyUpload marks an uploaded table with no content.
	ErrEmptyUpload = errors.New("uploaded table is empty")
)
