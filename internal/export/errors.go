package export

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExportFailed indicates that every ladder step failed.
	ErrExportFailed = errors.New("export: all attempts failed")

	// ErrLimitExceeded indicates a payload larger than a sink accepts.
	ErrLimitExceeded = errors.New("export: payload exceeds sink limits")

	// ErrNoRecords indicates an empty record set handed to the verifier.
	ErrNoRecords = errors.New("export: no records")
)

// Attempt is one failed ladder step.
type Attempt struct {
	Step string
	Err  error
}

// ExportError collects every failed attempt of a ladder run.
type ExportError struct {
	Attempts []Attempt
}

func (e *ExportError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrExportFailed.Error() + ": no steps configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Step, a.Err)
	}
	return fmt.Sprintf("%v (%s)", ErrExportFailed, strings.Join(parts, "; "))
}

func (e *ExportError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts)+1)
	errs = append(errs, ErrExportFailed)
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}
