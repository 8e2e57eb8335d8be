// Package engine provides [cell.Engine] implementations.
//
//   - [Analytic]: closed-form propagating spike, no differential equations
//   - [Replay]: traces recorded by another simulator, read from CSV
//
// # Example
//
//	m.AttachStimulus(cell.DefaultStimulus(m))
//	rec, err := cell.Simulate(ctx, m, engine.NewAnalytic(), cell.DefaultEngineConfig())
//
// Engines keep no state between runs and may be shared.
package engine
