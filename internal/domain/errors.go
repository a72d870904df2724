package domain

import (
	"errors"
	"fmt"
)

// NoDataError means no usable records exist in the analysis window for an
// entity. The entity is skipped at batch level; not retryable.
type NoDataError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no usable data for %s %d: %s", e.Entity, e.ID, e.Reason)
}

// NotFoundError means the entity id is unknown to the repository. Fatal for
// that single item only. Key carries string identifiers such as alert ids;
// when it is set, ID is ignored.
type NotFoundError struct {
	Entity string
	ID     int64
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidMeasurement flags a single out-of-range observation. It is discarded
// and only matters if discarding empties the whole sample.
type InvalidMeasurement struct {
	Value  float64
	Reason string
}

func (e *InvalidMeasurement) Error() string {
	return fmt.Sprintf("invalid measurement %.1f: %s", e.Value, e.Reason)
}

// ExternalServiceFailure wraps a failed call to the forecast advisor or
// another collaborator. Always recovered via a deterministic fallback and
// never surfaced to the caller of a prediction.
type ExternalServiceFailure struct {
	Service string
	Err     error
}

func (e *ExternalServiceFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceFailure) Unwrap() error { return e.Err }

// IsNoData reports whether err is a NoDataError anywhere in its chain.
func IsNoData(err error) bool {
	var nde *NoDataError
	return errors.As(err, &nde)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
