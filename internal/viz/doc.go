// Package viz renders neuron morphologies and their voltage animations in
// the terminal.
//
//   - [Player]: Bubble Tea frame player over a payload and its records
//   - [Canvas]: Braille pixel canvas with per-cell color levels
//   - [Ramp]: quantized colormap built from a payload's material config
//   - [RenderTree]: section hierarchy for inspection
//   - [WriteGIF]: offline animation export
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step one frame back/forward
//	Tab   - Cycle the traced section
//	x y z - Rotate the camera
//	+ -   - Zoom
package viz
