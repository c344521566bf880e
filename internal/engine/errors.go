package engine

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by Tick before the first valid Configure.
var ErrNotConfigured = errors.New("engine is not configured")

// ComputationError reports a tick that could not produce a snapshot. The
// ticker keeps running after one.
type ComputationError struct {
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("snapshot computation failed: %v", e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
