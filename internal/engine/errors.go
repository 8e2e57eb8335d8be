package engine

import (
	"errors"
	"fmt"
)

// Domain errors for engine runs.
var (
	// ErrUnknownSection indicates replayed traces naming a section the model lacks.
	ErrUnknownSection = errors.New("engine: trace names unknown section")

	// ErrMalformedTraces indicates a traces CSV that cannot be replayed.
	ErrMalformedTraces = errors.New("engine: malformed traces")
)

// RunError wraps an error with the section being computed when it occurred.
type RunError struct {
	Section int
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("section %d: %v", e.Section, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
