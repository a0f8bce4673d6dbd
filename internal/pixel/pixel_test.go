package pixel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// S2 from spec.md §8: 100x100 grid centred on [-2,2]^2, images of 0 and -1.
// spec.md §8 pairs "pixel (25,50)" with 0's image and "(75,50)" with -1's,
// but the stated formula maps 0 -> x=50 (the grid centre) and -1 -> x=25;
// (75,50) would instead be the image of +1. Treated as the same kind of
// narrative slip as S3's "4+0i" (see orbit_test.go): the formula is the
// real contract, and this test follows it.
func TestToPixelCenteredGrid(t *testing.T) {
	min, max := complex(-2, -2), complex(2, 2)

	x, y, ok := ToPixel(complex(0, 0), min, max, 100, 100)
	require.True(t, ok)
	require.Equal(t, 50, x)
	require.Equal(t, 50, y)

	x, y, ok = ToPixel(complex(-1, 0), min, max, 100, 100)
	require.True(t, ok)
	require.Equal(t, 25, x)
	require.Equal(t, 50, y)
}

func TestToPixelOutOfBounds(t *testing.T) {
	min, max := complex(-2, -2), complex(2, 2)

	// Exactly at max.re: floating rounding can push this to x == w.
	_, _, ok := ToPixel(complex(2, 0), min, max, 100, 100)
	require.False(t, ok)

	_, _, ok = ToPixel(complex(-3, 0), min, max, 100, 100)
	require.False(t, ok)
}

func TestInRangeHalfOpen(t *testing.T) {
	min, max := complex(-2, -2), complex(2, 2)
	require.True(t, InRange(complex(-2, -2), min, max))
	require.False(t, InRange(complex(2, 2), min, max))
	require.False(t, InRange(complex(2, 0), min, max))
}

// Property 6 from spec.md §8 / §9: the conjunction of the cardioid and
// period-2-bulb tests is stricter than their textbook union, so it rejects
// strictly fewer points — the two regions only touch at -0.75+0i, which the
// strict inequalities exclude, so InBulb never fires. That is intentional
// (never discards a contributing sample) even though it is conservative to
// the point of being inefficient. Points at the centre of either region individually therefore
// still fail the conjunction.
func TestInBulbConjunctionNeverFiresAtEitherCentre(t *testing.T) {
	require.False(t, InBulb(complex(0, 0)))   // cardioid centre
	require.False(t, InBulb(complex(-1, 0)))  // period-2 bulb centre
	require.False(t, InBulb(complex(-0.1, 0)))
}

func TestInBulbAcceptsEscapingPoint(t *testing.T) {
	require.False(t, InBulb(complex(2, 0)))
	require.False(t, InBulb(complex(-1.8, 0)))
}
