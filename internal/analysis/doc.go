// Package analysis summarizes recorded voltage traces.
//
//   - [Summarize]: per-section peak, trough and spike counts
//   - [Crossings]: upward threshold crossings of one trace
//   - [Propagation]: sections ordered by first spike time
//
// A spike is an upward crossing of [DefaultThreshold] (0 mV), the same
// criterion the record verifier uses for action potentials.
package analysis
