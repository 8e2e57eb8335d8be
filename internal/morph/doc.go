// Package morph reconstructs neuron morphology from SWC sample points.
//
// The package covers the three leaf stages of the pipeline:
//
//   - [Parse]: SWC lines into a [Table] of samples (lenient or strict)
//   - [Build]: the table's parent-pointer forest into named [Section]s
//   - [Derive]: per-section arc length and diameter profile
//
// # Sections
//
// A section ends at a leaf, at a branch sample (inclusive) or just before a
// child of a different type:
//
//	table, err := morph.ParseFile("cell.swc", morph.ParseOptions{})
//	forest, err := morph.Build(table, morph.BuildOptions{})
//	for _, s := range forest.Sections() {
//	    g, _ := morph.Derive(table, s)
//	    fmt.Println(s.Name, g.Length)
//	}
package morph
