package export

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/codec"
)

const (
	ReducedFrames   = 50
	ReducedSections = 10
)

// Request is one export attempt's input. Steps rewrite Options only.
type Request struct {
	Name      string
	Model     *cell.Model
	Recording *cell.Recording
	Options   codec.Options
}

// Step transforms the original request into the request for one attempt.
type Step struct {
	Name  string
	Apply func(Request) Request
}

type Result struct {
	Step    string
	Payload *codec.Payload
	Records []codec.Record
}

// Full exports the request unchanged.
func Full() Step {
	return Step{Name: "full", Apply: func(r Request) Request { return r }}
}

// ReduceFrames caps the frame count.
func ReduceFrames(frames int) Step {
	return Step{
		Name: fmt.Sprintf("frames<=%d", frames),
		Apply: func(r Request) Request {
			r.Options.FrameCount = min(r.Options.FrameCount, frames)
			return r
		},
	}
}

// ReduceSections keeps the first n sections of the request at full frames.
func ReduceSections(n int) Step {
	return Step{
		Name: fmt.Sprintf("sections<=%d", n),
		Apply: func(r Request) Request {
			ids := r.Options.Sections
			if ids == nil {
				ids = make([]int, 0, r.Model.Len())
				for _, s := range r.Model.Sections() {
					ids = append(ids, s.ID)
				}
			}
			r.Options.Sections = append([]int(nil), ids[:min(n, len(ids))]...)
			return r
		},
	}
}

func DefaultSteps() []Step {
	return []Step{Full(), ReduceFrames(ReducedFrames), ReduceSections(ReducedSections)}
}

// Ladder tries each step in order and stops at the first export the sink
// accepts.
type Ladder struct {
	Steps  []Step
	Sink   Sink
	Logger *slog.Logger
}

func NewLadder(sink Sink, logger *slog.Logger) *Ladder {
	return &Ladder{Steps: DefaultSteps(), Sink: sink, Logger: logger}
}

func (l *Ladder) Run(req Request) (*Result, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	exportErr := &ExportError{}
	for _, step := range l.Steps {
		res, err := l.attempt(step, req)
		if err == nil {
			logger.Info("export succeeded", "step", step.Name, "frames", res.Payload.Metadata.FrameCount, "sections", len(res.Payload.Sections))
			return res, nil
		}
		logger.Warn("export attempt failed", "step", step.Name, "error", err)
		exportErr.Attempts = append(exportErr.Attempts, Attempt{Step: step.Name, Err: err})
	}
	return nil, exportErr
}

func (l *Ladder) attempt(step Step, req Request) (*Result, error) {
	r := step.Apply(req)

	p, err := codec.Encode(r.Model, r.Recording, r.Options)
	if err != nil {
		return nil, err
	}
	records, err := codec.BuildRecords(r.Model, p, r.Options.Sections)
	if err != nil {
		return nil, err
	}
	if err := l.Sink.Write(r.Name, p, records); err != nil {
		return nil, err
	}
	return &Result{Step: step.Name, Payload: p, Records: records}, nil
}
