package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural input errors. These abort a run: the pipeline cannot
	// produce a meaningful result without the collections they guard.
	ErrDatasetEmpty    = errors.New("dataset contains no usable rows")
	ErrMissingColumns  = errors.New("dataset missing required columns")
	ErrMalformedDate   = errors.New("malformed date value")
	ErrEmptyHypothesis = errors.New("hypothesis has no id")

	// Per-item outcomes. These are normal analysis results, not failures:
	// callers report them as zero/low confidence and continue.
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrSeriesNotFound   = errors.New("no daily series for scope")
)

// NewValidationError reports a structurally invalid field on an input
// record.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// NewMalformedDateError reports a date string that failed to parse, with
// enough context to locate the offending row.
func NewMalformedDateError(value string, row int) error {
	return fmt.Errorf("%w: %q at row %d", ErrMalformedDate, value, row)
}

// NewMissingColumnsError lists the columns absent from the dataset header.
func NewMissingColumnsError(columns []string) error {
	return fmt.Errorf("%w: %v", ErrMissingColumns, columns)
}

// IsInsufficientData reports whether err is the insufficient-data outcome.
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
