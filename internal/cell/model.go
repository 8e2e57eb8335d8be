package cell

import (
	"fmt"

	"github.com/san-kum/neuroanim/internal/morph"
)

// DistalEnd is where every child section attaches on its parent.
const DistalEnd = 1.0

// Section is one compartment of the model.
type Section struct {
	ID       int
	Name     string
	Type     morph.SampleType
	Geometry morph.Geometry
	Parent   int
	Children []int
	// NSeg is the segment count hint for engines that discretize sections.
	NSeg int
}

// Connection attaches Child at Fraction along Parent.
type Connection struct {
	Child    int
	Parent   int
	Fraction float64
}

// Stimulus is a current clamp placed at Pos along a section.
type Stimulus struct {
	Section int     `json:"section"`
	Pos     float64 `json:"pos"`
	Amp     float64 `json:"amp"`   // nA
	Delay   float64 `json:"delay"` // ms
	Dur     float64 `json:"dur"`   // ms
}

// Probe records membrane voltage at Pos along a section.
type Probe struct {
	Section int
	Pos     float64
}

// Model is the assembled compartment graph. Topology is fixed after
// Assemble; only stimuli, probes and recordings change afterwards.
type Model struct {
	sections    []*Section
	byName      map[string]int
	connections []Connection
	stimuli     []Stimulus
	probes      []Probe
	recording   *Recording
}

// Assemble derives geometry for every section and connects each child to
// the distal end of the section owning its first sample's parent.
func Assemble(t *morph.Table, f *morph.Forest) (*Model, error) {
	m := &Model{
		sections: make([]*Section, 0, f.Len()),
		byName:   make(map[string]int, f.Len()),
	}

	for _, s := range f.Sections() {
		geom, err := morph.Derive(t, s)
		if err != nil {
			return nil, err
		}
		m.byName[s.Name] = len(m.sections)
		m.sections = append(m.sections, &Section{
			ID:       s.Index,
			Name:     s.Name,
			Type:     s.Type,
			Geometry: geom,
			Parent:   -1,
			NSeg:     max(1, len(s.SampleIDs)/5),
		})
	}

	for _, s := range f.Sections() {
		first, _ := t.Get(s.First())
		if first.IsRoot() {
			continue
		}
		owner, ok := f.FindOwningSection(first.Parent)
		if !ok {
			continue
		}
		m.connect(s.Index, owner.Index)
	}

	return m, nil
}

func (m *Model) connect(child, parent int) {
	m.connections = append(m.connections, Connection{Child: child, Parent: parent, Fraction: DistalEnd})
	m.sections[child].Parent = parent
	m.sections[parent].Children = append(m.sections[parent].Children, child)
}

func (m *Model) Len() int { return len(m.sections) }

// Sections returns sections ordered by ID.
func (m *Model) Sections() []*Section { return m.sections }

func (m *Model) Section(id int) (*Section, bool) {
	if id < 0 || id >= len(m.sections) {
		return nil, false
	}
	return m.sections[id], true
}

func (m *Model) SectionByName(name string) (*Section, bool) {
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.sections[id], true
}

func (m *Model) Connections() []Connection { return m.connections }

func (m *Model) TotalLength() float64 {
	total := 0.0
	for _, s := range m.sections {
		total += s.Geometry.EngineLength()
	}
	return total
}

// PathLength is the distance along the tree from the proximal end of the
// section's root to the midpoint of the section.
func (m *Model) PathLength(id int) float64 {
	s, ok := m.Section(id)
	if !ok {
		return 0
	}
	d := s.Geometry.EngineLength() / 2
	for p := s.Parent; p >= 0; p = m.sections[p].Parent {
		d += m.sections[p].Geometry.EngineLength() * DistalEnd
	}
	return d
}

func (m *Model) AttachStimulus(st Stimulus) error {
	if _, ok := m.Section(st.Section); !ok {
		return fmt.Errorf("stimulus: unknown section %d", st.Section)
	}
	if st.Pos < 0 || st.Pos > 1 {
		return fmt.Errorf("stimulus: position %g outside [0,1]", st.Pos)
	}
	m.stimuli = append(m.stimuli, st)
	return nil
}

func (m *Model) AttachProbe(id int, pos float64) error {
	if _, ok := m.Section(id); !ok {
		return fmt.Errorf("probe: unknown section %d", id)
	}
	if pos < 0 || pos > 1 {
		return fmt.Errorf("probe: position %g outside [0,1]", pos)
	}
	m.probes = append(m.probes, Probe{Section: id, Pos: pos})
	return nil
}

// ProbeAll places a probe at pos on every section that has none.
func (m *Model) ProbeAll(pos float64) {
	probed := make(map[int]bool, len(m.probes))
	for _, p := range m.probes {
		probed[p.Section] = true
	}
	for _, s := range m.sections {
		if !probed[s.ID] {
			m.probes = append(m.probes, Probe{Section: s.ID, Pos: pos})
		}
	}
}

func (m *Model) Stimuli() []Stimulus { return m.stimuli }

func (m *Model) Probes() []Probe { return m.probes }

// DefaultStimulus returns the standard current clamp on the first soma
// section, or on section 0 when the morphology has no soma.
func DefaultStimulus(m *Model) Stimulus {
	target := 0
	for _, s := range m.sections {
		if s.Type == morph.Soma {
			target = s.ID
			break
		}
	}
	return Stimulus{Section: target, Pos: 0.5, Amp: 0.5, Delay: 5, Dur: 2}
}
