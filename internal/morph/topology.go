package morph

import (
	"fmt"
	"log/slog"
)

// Section is a maximal unbranched run of same-type samples. Sections are
// read-only once Build returns.
type Section struct {
	Index     int
	Name      string
	Type      SampleType
	SampleIDs []int
	Parent    int
	Children  []int
}

func (s *Section) IsRoot() bool { return s.Parent < 0 }

func (s *Section) First() int { return s.SampleIDs[0] }

func (s *Section) Last() int { return s.SampleIDs[len(s.SampleIDs)-1] }

// Forest is the section tree set built from one morphology.
type Forest struct {
	sections    []*Section
	roots       []int
	owner       map[int]int
	diagnostics []Diagnostic
}

func (f *Forest) Len() int { return len(f.sections) }

// Sections returns sections in creation (pre-order) order; a section's index
// equals its position.
func (f *Forest) Sections() []*Section { return f.sections }

func (f *Forest) Section(i int) *Section {
	if i < 0 || i >= len(f.sections) {
		return nil
	}
	return f.sections[i]
}

// Roots returns the indices of sections without a parent section.
func (f *Forest) Roots() []int { return f.roots }

func (f *Forest) Diagnostics() []Diagnostic { return f.diagnostics }

// FindOwningSection returns the section whose sample list contains id.
func (f *Forest) FindOwningSection(id int) (*Section, bool) {
	i, ok := f.owner[id]
	if !ok {
		return nil, false
	}
	return f.sections[i], true
}

// Walk visits sections depth first from each root. Returning false from fn
// skips the section's subtree.
func (f *Forest) Walk(fn func(s *Section, depth int) bool) {
	var visit func(i, depth int)
	visit = func(i, depth int) {
		s := f.sections[i]
		if !fn(s, depth) {
			return
		}
		for _, c := range s.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range f.roots {
		visit(r, 0)
	}
}

type BuildOptions struct {
	Logger *slog.Logger
}

type pendingSection struct {
	start  int
	parent int
}

// Build splits the table's parent-pointer forest into sections. A section
// ends at a leaf, at a branch sample (inclusive), or just before a child of a
// different type. Names are {type}_{ordinal} with one counter per type for
// the whole build, assigned in pre-order.
func Build(t *Table, opts BuildOptions) (*Forest, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discard
	}

	f := &Forest{owner: make(map[int]int, t.Len())}

	for _, id := range t.Unresolved() {
		s, _ := t.Get(id)
		reason := fmt.Sprintf("parent %d not defined, treating sample as root", s.Parent)
		logger.Warn("unresolved swc parent", "sample", id, "parent", s.Parent)
		f.diagnostics = append(f.diagnostics, Diagnostic{SampleID: id, Reason: reason})
	}

	children := t.Children()
	visited := make(map[int]bool, t.Len())
	counters := make(map[SampleType]int)

	roots := t.Roots()
	stack := make([]pendingSection, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, pendingSection{start: roots[i], parent: -1})
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		first, _ := t.Get(p.start)
		counters[first.Type]++
		sec := &Section{
			Index:  len(f.sections),
			Name:   fmt.Sprintf("%s_%d", first.Type, counters[first.Type]),
			Type:   first.Type,
			Parent: p.parent,
		}
		f.sections = append(f.sections, sec)
		if p.parent < 0 {
			f.roots = append(f.roots, sec.Index)
		} else {
			parent := f.sections[p.parent]
			parent.Children = append(parent.Children, sec.Index)
		}

		cur := p.start
		for {
			if visited[cur] {
				return nil, &TopologyError{SampleID: cur, Wrapped: ErrRevisit}
			}
			visited[cur] = true
			sec.SampleIDs = append(sec.SampleIDs, cur)
			f.owner[cur] = sec.Index

			kids := children[cur]
			if len(kids) == 0 {
				break
			}
			if len(kids) == 1 {
				next, _ := t.Get(kids[0])
				if next.Type == sec.Type {
					cur = kids[0]
					continue
				}
				stack = append(stack, pendingSection{start: kids[0], parent: sec.Index})
				break
			}
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, pendingSection{start: kids[i], parent: sec.Index})
			}
			break
		}
	}

	if len(visited) < t.Len() {
		return nil, unreachedError(t, visited)
	}

	logger.Debug("built topology", "sections", len(f.sections), "roots", len(f.roots))
	return f, nil
}

// unreachedError explains samples no root could reach. Every such sample sits
// on, or descends from, a parent cycle.
func unreachedError(t *Table, visited map[int]bool) error {
	for _, s := range t.Samples() {
		if visited[s.ID] {
			continue
		}
		return &TopologyError{SampleID: s.ID, Cycle: findCycle(t, s.ID), Wrapped: ErrCycle}
	}
	return nil
}

func findCycle(t *Table, start int) []int {
	pos := make(map[int]int)
	var chain []int
	cur := start
	for {
		if i, seen := pos[cur]; seen {
			return chain[i:]
		}
		s, ok := t.Get(cur)
		if !ok || s.IsRoot() {
			return nil
		}
		pos[cur] = len(chain)
		chain = append(chain, cur)
		cur = s.Parent
	}
}
