package pipeline

import (
	"fmt"
	"sort"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/engine"
)

const (
	EngineAnalytic = "analytic"
	EngineReplay   = "replay"
)

// Registry maps engine names to constructors. Constructors see the job so
// file-backed engines can find their input.
type Registry struct {
	engines map[string]func(Job) (cell.Engine, error)
}

func NewRegistry() *Registry {
	r := &Registry{engines: make(map[string]func(Job) (cell.Engine, error))}

	r.engines[EngineAnalytic] = func(Job) (cell.Engine, error) { return engine.NewAnalytic(), nil }
	r.engines[EngineReplay] = func(j Job) (cell.Engine, error) {
		if j.Traces == "" {
			return nil, fmt.Errorf("replay engine needs a traces file")
		}
		r, err := engine.ReadTracesFile(j.Traces)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	return r
}

// Register adds or replaces an engine constructor.
func (r *Registry) Register(name string, fn func(Job) (cell.Engine, error)) {
	r.engines[name] = fn
}

func (r *Registry) GetEngine(name string, j Job) (cell.Engine, error) {
	fn, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown engine: %s (available: %v)", name, r.ListEngines())
	}
	return fn(j)
}

func (r *Registry) ListEngines() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
