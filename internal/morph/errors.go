package morph

import (
	"errors"
	"fmt"
)

// Domain errors for morphology reconstruction.
var (
	// ErrFormat indicates a malformed SWC line or file structure.
	ErrFormat = errors.New("morph: malformed swc input")

	// ErrEmptyMorphology indicates a file that produced no samples.
	ErrEmptyMorphology = errors.New("morph: no samples in morphology")

	// ErrCycle indicates a sample that is transitively its own ancestor.
	ErrCycle = errors.New("morph: cyclic parent chain")

	// ErrRevisit indicates a sample reached twice while tracing sections.
	ErrRevisit = errors.New("morph: sample visited twice")

	// ErrDegenerateGeometry indicates a section whose samples cannot describe a shape.
	ErrDegenerateGeometry = errors.New("morph: degenerate section geometry")
)

// FormatError reports a malformed input line. Line is 1-based; 0 means the
// whole file.
type FormatError struct {
	Line    int
	Reason  string
	Wrapped error
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("swc: %s", e.Reason)
	}
	return fmt.Sprintf("swc line %d: %s", e.Line, e.Reason)
}

func (e *FormatError) Unwrap() error {
	if e.Wrapped != nil {
		return e.Wrapped
	}
	return ErrFormat
}

// TopologyError reports a parent graph that cannot be turned into sections.
type TopologyError struct {
	SampleID int
	Cycle    []int
	Wrapped  error
}

func (e *TopologyError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("topology: sample %d: %v (cycle %v)", e.SampleID, e.Unwrap(), e.Cycle)
	}
	return fmt.Sprintf("topology: sample %d: %v", e.SampleID, e.Unwrap())
}

func (e *TopologyError) Unwrap() error {
	if e.Wrapped != nil {
		return e.Wrapped
	}
	return ErrCycle
}

// GeometryError reports a section whose geometry cannot be derived.
type GeometryError struct {
	Section  string
	SampleID int
	Reason   string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry: section %s sample %d: %s", e.Section, e.SampleID, e.Reason)
}

func (e *GeometryError) Unwrap() error {
	return ErrDegenerateGeometry
}
