package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations
var (
	// ErrUnreachable indicates the catalog source could not be fetched
	ErrUnreachable = errors.New("catalog source is unreachable")

	// ErrNoSnapshot indicates no usable snapshot is stored
	ErrNoSnapshot = errors.New("no catalog snapshot")
)

// UnreachableError describes a failed fetch. It matches ErrUnreachable with errors.Is.
type UnreachableError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UnreachableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

func (e *UnreachableError) Is(target error) bool { return target == ErrUnreachable }
