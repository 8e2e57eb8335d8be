package codec

import "math"

// Resample maps a trace of any length onto exactly frames values.
//
// Longer traces keep the samples nearest (by truncation) to frames evenly
// spaced positions over [0, n-1]; this drops data. Shorter traces are
// linearly interpolated at the same positions, so the first and last raw
// values pass through unchanged. Equal lengths are copied.
func Resample(trace []float64, frames int) []float64 {
	n := len(trace)
	if n == 0 || frames <= 0 {
		return nil
	}

	out := make([]float64, frames)
	switch {
	case n == frames:
		copy(out, trace)
	case n > frames:
		if frames == 1 {
			out[0] = trace[0]
			break
		}
		for i := range out {
			out[i] = trace[i*(n-1)/(frames-1)]
		}
	default:
		for i := range out {
			x := float64(i*(n-1)) / float64(frames-1)
			lo := int(math.Floor(x))
			if lo >= n-1 {
				out[i] = trace[n-1]
				continue
			}
			frac := x - float64(lo)
			out[i] = trace[lo] + frac*(trace[lo+1]-trace[lo])
		}
	}
	return out
}

// Span returns the min and max of values. ok is false for an empty slice.
func Span(values []float64) (lo, hi float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}
