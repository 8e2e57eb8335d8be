package cell

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates engine settings that cannot run.
	ErrInvalidConfig = errors.New("cell: invalid engine config")

	// ErrIncompatibleRecording indicates engine output that does not match the model.
	ErrIncompatibleRecording = errors.New("cell: recording does not match model")
)

// EngineConfig carries every engine-wide setting; nothing is kept as
// process state.
type EngineConfig struct {
	Dt      float64 `json:"dt"`    // ms
	TStop   float64 `json:"tstop"` // ms
	Celsius float64 `json:"celsius"`
	VInit   float64 `json:"v_init"` // mV
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Dt:      0.025,
		TStop:   50,
		Celsius: 37,
		VInit:   -70,
	}
}

func (c EngineConfig) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Dt)
	}
	if c.TStop <= 0 {
		return fmt.Errorf("%w: tstop must be positive, got %f", ErrInvalidConfig, c.TStop)
	}
	if c.Dt > c.TStop {
		return fmt.Errorf("%w: dt %f exceeds tstop %f", ErrInvalidConfig, c.Dt, c.TStop)
	}
	return nil
}

// Steps is the number of recorded samples including t=0.
func (c EngineConfig) Steps() int {
	return int(c.TStop/c.Dt+1e-9) + 1
}

// Recording is the voltage output of one engine run. Traces are keyed by
// section ID and may differ in length.
type Recording struct {
	Time   []float64
	Traces map[int][]float64
}

func NewRecording(time []float64) *Recording {
	return &Recording{Time: time, Traces: make(map[int][]float64)}
}

// Engine runs a simulation over a model. Run blocks until the full
// recording is available.
type Engine interface {
	Run(ctx context.Context, m *Model, cfg EngineConfig) (*Recording, error)
}

// Simulate runs the engine, checks the recording against the model and
// stores it.
func Simulate(ctx context.Context, m *Model, e Engine, cfg EngineConfig) (*Recording, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rec, err := e.Run(ctx, m, cfg)
	if err != nil {
		return nil, fmt.Errorf("engine run: %w", err)
	}
	if err := m.StoreRecording(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// StoreRecording attaches engine output to the model.
func (m *Model) StoreRecording(rec *Recording) error {
	if rec == nil {
		return fmt.Errorf("%w: nil recording", ErrIncompatibleRecording)
	}
	if len(rec.Time) == 0 {
		return fmt.Errorf("%w: empty time vector", ErrIncompatibleRecording)
	}
	for id := range rec.Traces {
		if _, ok := m.Section(id); !ok {
			return fmt.Errorf("%w: trace for unknown section %d", ErrIncompatibleRecording, id)
		}
	}
	m.recording = rec
	return nil
}

func (m *Model) Recording() *Recording { return m.recording }

// Trace returns the recorded voltage for a section.
func (m *Model) Trace(id int) ([]float64, bool) {
	if m.recording == nil {
		return nil, false
	}
	tr, ok := m.recording.Traces[id]
	return tr, ok
}
