// Package orbit is the numeric kernel of the renderer: bailout-iteration
// detection and orbit replay over the quadratic map z <- z*z + c.
//
// Grounded on original_source/src/math.rs (calculate_bailout_iteration,
// calculate_iteration_values), kept as two passes deliberately: a combined
// detect-and-record pass measurably slows the hot path, which is almost
// always the early-bailout majority that never records anything.
package orbit

// Box is the bailout rectangle [Min.re, Max.re] x [Min.im, Max.im], tested
// exclusive on both ends (spec.md "exclusive on both sides").
type Box struct {
	Min, Max complex128
}

// InBox reports whether z lies strictly inside box.
func InBox(box Box, z complex128) bool {
	return real(box.Min) < real(z) && real(z) < real(box.Max) &&
		imag(box.Min) < imag(z) && imag(z) < imag(box.Max)
}

// step applies the per-sample quadratic map.
func step(c, z complex128) complex128 {
	return z*z + c
}

// BailoutIteration iterates z <- z*z + c starting from z0 and reports the
// number of successful iterations performed before z left box. It returns
// (0, false) if the orbit never escapes within max iterations; a z0 that
// already lies outside box reports (0, true) — callers distinguish "escaped"
// from "bounded" via the second return value, not the count.
//
// A fixed point (step(c, z) == z, checked by bit-exact equality, no epsilon)
// is treated identically to "bounded": the orbit is assumed to cycle forever
// without leaving box.
func BailoutIteration(c, z0 complex128, box Box, max int) (iterations int, escaped bool) {
	z := z0
	iterations = 0

	for InBox(box, z) && iterations < max {
		newZ := step(c, z)
		if newZ == z {
			// Fixed point: behaves as bounded, never escapes.
			return 0, false
		}
		z = newZ
		iterations++
	}

	if InBox(box, z) {
		return 0, false
	}
	return iterations, true
}

// Replay iterates z <- z*z + c from z0, appending each *successor* (never
// z0 itself) to out whenever the iteration it was produced on is >=
// minIter, stopping when z leaves box or the iteration count reaches
// maxIter.
//
// On fixed-point detection, the (unchanged) current z is replicated into
// out for every remaining iteration slot up to maxIter (spec.md §4.1 / §9:
// this concentrates density at cycle fixed points and is a documented,
// preserved behavior, not a bug).
func Replay(c, z0 complex128, box Box, minIter, maxIter int, out *[]complex128) {
	z := z0
	iterations := 0

	for InBox(box, z) && iterations < maxIter {
		newZ := step(c, z)
		if newZ == z {
			for j := iterations; j < maxIter; j++ {
				*out = append(*out, z)
			}
			return
		}
		z = newZ
		if iterations >= minIter {
			*out = append(*out, z)
		}
		iterations++
	}
}
