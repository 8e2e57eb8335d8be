package morph

// Diagnostic is a recoverable anomaly noticed while reading or tracing a
// morphology.
type Diagnostic struct {
	Line     int
	SampleID int
	Reason   string
}

// Table holds every parsed sample in file order. It is read-only once Parse
// returns.
type Table struct {
	samples     []Sample
	index       map[int]int
	diagnostics []Diagnostic
}

func newTable(capacity int) *Table {
	return &Table{
		samples: make([]Sample, 0, capacity),
		index:   make(map[int]int, capacity),
	}
}

// NewTable builds a table from already validated samples. Duplicate ids keep
// the first occurrence.
func NewTable(samples []Sample) *Table {
	t := newTable(len(samples))
	for _, s := range samples {
		if _, dup := t.index[s.ID]; dup {
			continue
		}
		t.add(s)
	}
	return t
}

func (t *Table) add(s Sample) {
	t.index[s.ID] = len(t.samples)
	t.samples = append(t.samples, s)
}

func (t *Table) Len() int { return len(t.samples) }

func (t *Table) Get(id int) (Sample, bool) {
	i, ok := t.index[id]
	if !ok {
		return Sample{}, false
	}
	return t.samples[i], true
}

func (t *Table) Has(id int) bool {
	_, ok := t.index[id]
	return ok
}

// Samples returns the samples in file order. The slice must not be modified.
func (t *Table) Samples() []Sample { return t.samples }

func (t *Table) Diagnostics() []Diagnostic { return t.diagnostics }

// Roots returns, in file order, every sample without a parent plus every
// sample whose parent id was never defined.
func (t *Table) Roots() []int {
	var roots []int
	for _, s := range t.samples {
		if s.IsRoot() || !t.Has(s.Parent) {
			roots = append(roots, s.ID)
		}
	}
	return roots
}

// Unresolved returns the ids of samples that name a parent missing from the
// table.
func (t *Table) Unresolved() []int {
	var ids []int
	for _, s := range t.samples {
		if !s.IsRoot() && !t.Has(s.Parent) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Children builds the parent id -> child ids index in one pass. Child order
// follows the file.
func (t *Table) Children() map[int][]int {
	children := make(map[int][]int, len(t.samples))
	for _, s := range t.samples {
		if s.IsRoot() || !t.Has(s.Parent) {
			continue
		}
		children[s.Parent] = append(children[s.Parent], s.ID)
	}
	return children
}
