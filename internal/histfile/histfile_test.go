package histfile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// S1 from spec.md §8: empty bucket, 100x100, zero samples.
func TestEmptyBucket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mbh")

	h, err := Create(path, 100, 100, complex(-2, -2), complex(2, 2), 100*100, 1000)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(100*100*4), info.Size())

	counters, err := ReadCounters(path, 100, 100)
	require.NoError(t, err)
	for _, c := range counters {
		require.Equal(t, uint32(0), c)
	}
}

// S4 from spec.md §8: region flush triggered mid-stream, final count is 3.
func TestRegionFlushMidStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flush.mbh")

	h, err := Create(path, 10, 10, complex(0, 0), complex(10, 10), 25, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, h.Aggregate(complex(0.5, 0.5))) // maps to pixel (0,0), region 0
	}
	require.NoError(t, h.Close())

	counters, err := ReadCounters(path, 10, 10)
	require.NoError(t, err)
	require.Equal(t, uint32(3), counters[0])
	for i := 1; i < len(counters); i++ {
		require.Equal(t, uint32(0), counters[i])
	}
}

// In-range closure (property 3): out-of-box points are silently discarded.
func TestAggregateDiscardsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oor.mbh")
	h, err := Create(path, 10, 10, complex(0, 0), complex(10, 10), 50, 10)
	require.NoError(t, err)

	require.NoError(t, h.Aggregate(complex(-1, -1)))   // below min
	require.NoError(t, h.Aggregate(complex(10, 10)))   // == max, half-open excludes it
	require.NoError(t, h.Aggregate(complex(100, 100))) // well out of range
	require.NoError(t, h.Close())

	counters, err := ReadCounters(path, 10, 10)
	require.NoError(t, err)
	var sum uint64
	for _, c := range counters {
		sum += uint64(c)
	}
	require.Equal(t, uint64(0), sum)
}

// Conservation (property 1): every accepted increment lands exactly once.
func TestConservation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cons.mbh")
	h, err := Create(path, 20, 20, complex(0, 0), complex(20, 20), 37, 3)
	require.NoError(t, err)

	accepted := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			for k := 0; k < 5; k++ {
				require.NoError(t, h.Aggregate(complex(float64(x)+0.5, float64(y)+0.5)))
				accepted++
			}
		}
	}
	require.NoError(t, h.Close())

	counters, err := ReadCounters(path, 20, 20)
	require.NoError(t, err)
	var sum uint64
	for _, c := range counters {
		sum += uint64(c)
	}
	require.Equal(t, uint64(accepted), sum)
}

// Close writes a "<path>.sha256" sidecar: 64 hex chars plus a newline.
func TestChecksumSidecarWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sum.mbh")
	h, err := Create(path, 4, 4, complex(0, 0), complex(4, 4), 16, 10)
	require.NoError(t, err)
	require.NoError(t, h.Aggregate(complex(0.5, 0.5)))
	require.NoError(t, h.Close())

	data, err := os.ReadFile(path + ".sha256")
	require.NoError(t, err)
	require.Len(t, string(data), 65) // 64 hex chars + newline
}

// spec.md §7's IO-flush failure path: a region flush that fails (here,
// forced by closing the underlying file out from under the histogram) must
// be surfaced to the caller through Aggregate's return value rather than
// silently dropped.
func TestAggregateSurfacesFlushError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failing.mbh")
	h, err := Create(path, 10, 10, complex(0, 0), complex(10, 10), 25, 2)
	require.NoError(t, err)
	require.NoError(t, h.file.Close())

	require.NoError(t, h.Aggregate(complex(0.5, 0.5)))
	require.NoError(t, h.Aggregate(complex(0.5, 0.5)))
	err = h.Aggregate(complex(0.5, 0.5)) // third increment crosses pixelBufferCut, triggers the flush
	require.Error(t, err)
}

func TestSaturatingAddNeverWraps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sat.mbh")
	h, err := Create(path, 1, 1, complex(0, 0), complex(1, 1), 1, 1000)
	require.NoError(t, err)

	// Pre-seed the single counter at MaxUint32 via a direct buffer write.
	h.regionScratch[0] = 0xff
	h.regionScratch[1] = 0xff
	h.regionScratch[2] = 0xff
	h.regionScratch[3] = 0xff
	require.NoError(t, h.file.Truncate(0))
	require.NoError(t, h.file.Truncate(int64(len(h.regionScratch))))
	_, err = h.file.WriteAt(h.regionScratch, 0)
	require.NoError(t, err)

	require.NoError(t, h.Aggregate(complex(0.5, 0.5)))
	require.NoError(t, h.Close())

	counters, err := ReadCounters(path, 1, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(math.MaxUint32), counters[0])
}
