// Package pixel maps complex-plane points to integer pixel coordinates and
// implements the cheap pre-iteration bulb-rejection filter.
//
// Grounded on original_source/src/math.rs (complex_to_image,
// is_inside_mandelbrot_bulb).
package pixel

import "math"

// InRange reports whether c lies in the half-open box [min, max) used by a
// histogram bucket. Unlike orbit.InBox this is NOT the bailout rectangle
// test: it is half-open, matching the bucket's own min/max.
func InRange(c, min, max complex128) bool {
	return real(c) >= real(min) && real(c) < real(max) &&
		imag(c) >= imag(min) && imag(c) < imag(max)
}

// ToPixel maps c into an integer pixel within a w x h grid spanning
// [min, max). Callers MUST apply InRange first: the mapping itself is not
// clamped, because floating-point rounding can push a sample exactly at
// max.re to x == w, which ToPixel reports as out of bounds rather than
// silently clamping to w-1.
func ToPixel(c, min, max complex128, w, h int) (x, y int, ok bool) {
	fx := (real(c) - real(min)) / (real(max) - real(min)) * float64(w)
	fy := (imag(c) - imag(min)) / (imag(max) - imag(min)) * float64(h)

	x = int(math.Floor(fx))
	y = int(math.Floor(fy))

	if x < 0 || x >= w || y < 0 || y >= h {
		return 0, 0, false
	}
	return x, y, true
}

// InBulb rejects points known to lie inside the main cardioid or the
// period-2 bulb of the Mandelbrot set, so the caller can skip iterating
// them entirely.
//
// The two tests are combined with AND rather than the textbook OR: this is
// stricter — it rejects strictly fewer points than the textbook union — but
// is faithful to the original source and preserved deliberately (spec.md §9
// Open Question: whether this conjunction is a bug). Because it rejects
// fewer points than the safe textbook form, it never discards a sample that
// would have contributed output; it is simply less efficient than the
// textbook version would be.
func InBulb(c complex128) bool {
	x := real(c)
	y := imag(c)

	p := (x-0.25)*(x-0.25) + y*y
	cardioid := x < p-2*p*p+0.25
	bulb2 := (x+1)*(x+1)+y*y < 1.0/16.0

	return cardioid && bulb2
}
