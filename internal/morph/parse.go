package morph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
)

// ParseMode selects how anomalous lines are handled.
type ParseMode int

const (
	// Lenient skips anomalous lines and records a diagnostic.
	Lenient ParseMode = iota
	// Strict fails on the first anomalous line.
	Strict
)

const swcFields = 7

type ParseOptions struct {
	Mode   ParseMode
	Logger *slog.Logger
}

// ParseFile reads an SWC file from disk.
func ParseFile(path string, opts ParseOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, opts)
}

// Parse reads SWC lines into a Table. Lines may appear in any order; a sample
// can reference a parent defined later.
func Parse(r io.Reader, opts ParseOptions) (*Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discard
	}

	t := newTable(256)
	br := bufio.NewReader(r)

	lineNo := 0
	for {
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read swc: %w", err)
		}
		if raw == "" && err != nil {
			break
		}
		lineNo++
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		s, reason := parseLine(line)
		if reason == "" {
			if _, dup := t.index[s.ID]; dup {
				reason = fmt.Sprintf("duplicate sample id %d", s.ID)
			}
		}
		if reason != "" {
			if opts.Mode == Strict {
				return nil, &FormatError{Line: lineNo, Reason: reason}
			}
			logger.Warn("skipping swc line", "line", lineNo, "reason", reason)
			t.diagnostics = append(t.diagnostics, Diagnostic{Line: lineNo, Reason: reason})
			continue
		}
		t.add(s)
	}

	if t.Len() == 0 {
		return nil, &FormatError{Reason: "no samples", Wrapped: ErrEmptyMorphology}
	}

	logger.Debug("parsed swc", "samples", t.Len(), "skipped", len(t.diagnostics))
	return t, nil
}

// parseLine returns the sample or a non-empty reason describing why the line
// is unusable.
func parseLine(line string) (Sample, string) {
	parts := strings.Fields(line)
	if len(parts) != swcFields {
		return Sample{}, fmt.Sprintf("expected %d fields, got %d", swcFields, len(parts))
	}

	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return Sample{}, fmt.Sprintf("bad id %q", parts[0])
	}
	if id < 1 {
		return Sample{}, fmt.Sprintf("id %d must be >= 1", id)
	}

	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return Sample{}, fmt.Sprintf("bad type %q", parts[1])
	}
	typ := SampleType(code)
	if !typ.Valid() {
		return Sample{}, fmt.Sprintf("unknown type code %d", code)
	}

	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(parts[2+i], 64)
		if err != nil {
			return Sample{}, fmt.Sprintf("bad number %q", parts[2+i])
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sample{}, fmt.Sprintf("non-finite value %q", parts[2+i])
		}
		vals[i] = v
	}
	if vals[3] <= 0 {
		return Sample{}, fmt.Sprintf("radius %g must be positive", vals[3])
	}

	parent, err := strconv.Atoi(parts[6])
	if err != nil {
		return Sample{}, fmt.Sprintf("bad parent %q", parts[6])
	}
	if parent < 0 {
		parent = NoParent
	}

	return Sample{
		ID:     id,
		Type:   typ,
		Pos:    Point{X: vals[0], Y: vals[1], Z: vals[2]},
		Radius: vals[3],
		Parent: parent,
	}, ""
}

var discard = slog.New(slog.DiscardHandler)
