// Package location implements the sample-point sources that feed the
// pipeline workers (spec.md §4.2, C3).
//
// Grounded on original_source/src/location_generators/{uniform_random,array}.rs
// and, for the sectioning idiom, on the teacher's own job-queue pattern in
// data.go's runData (many goroutines drawing work from one shared source),
// with the shared claim counter made a sync/atomic value here.
package location

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// Generator is a thread-unsafe, lazily-evaluated source of sample points.
// A single Generator value is never shared between goroutines directly;
// instead each worker holds its own Clone(), all of which share the
// underlying claimed counter.
type Generator interface {
	// NextLocation returns the next sample point, or ok=false once the
	// generator is exhausted (UniformRandom: the global claimed count has
	// reached its total; Array: every seed point has been used).
	NextLocation() (c complex128, ok bool)
	// Clone returns an independent per-worker copy: same shared counter,
	// independent local section state and independent RNG.
	Clone() Generator
}

// cloneSeedCounter gives every Clone() call a distinct seed component even
// when two clones are created within the same clock tick, avoiding
// correlated per-worker PRNGs (spec.md §4.2).
var cloneSeedCounter atomic.Int64

func newSeed() int64 {
	const goldenRatio64 = uint64(0x9E3779B97F4A7C15)
	mixed := uint64(cloneSeedCounter.Add(1)) * goldenRatio64
	return time.Now().UnixNano() ^ int64(mixed)
}

// UniformRandom draws samples uniformly from [Min, Max) in the complex
// plane, amortising contention on the shared claimed counter by having each
// clone claim a whole section (SectionTotal samples) at a time.
type UniformRandom struct {
	Min, Max complex128

	total   uint64
	section uint64
	claimed *atomic.Uint64

	localRemaining uint64
	rng            *rand.Rand

	onSection func(claimed, total, section uint64)
}

// NewUniformRandom creates the shared root generator. total is the overall
// sample budget; section is how many samples a clone claims per atomic
// fetch-add (spec.md §4.2: "amortises atomic contention ... produces evenly
// paced progress events"). onSection, if non-nil, is invoked once per
// claimed section with (claimed-so-far, total, section) — the generator's
// hook for progress reporting; it must not block.
func NewUniformRandom(min, max complex128, total, section uint64, onSection func(claimed, total, section uint64)) *UniformRandom {
	if section == 0 {
		section = 1
	}
	return &UniformRandom{
		Min:       min,
		Max:       max,
		total:     total,
		section:   section,
		claimed:   &atomic.Uint64{},
		onSection: onSection,
		rng:       rand.New(rand.NewSource(newSeed())),
	}
}

// claimSection attempts to claim the next section of the shared budget. It
// returns false once a prior claim already reached total — spec.md §4.2:
// "if the pre-add value is already >= total, the generator reports
// End-of-stream". The claim only succeeds, and only then advances the
// shared counter, while the pre-claim value is still below total — a plain
// unconditional Add would keep growing claimed by a whole section on every
// post-exhaustion call from every clone, unboundedly violating the "claimed
// never exceeds total+section" invariant.
func (u *UniformRandom) claimSection() bool {
	for {
		prev := u.claimed.Load()
		if prev >= u.total {
			return false
		}
		if !u.claimed.CompareAndSwap(prev, prev+u.section) {
			continue
		}

		if u.onSection != nil {
			u.onSection(prev+u.section, u.total, u.section)
		}

		u.localRemaining = u.section
		return true
	}
}

// NextLocation implements Generator.
func (u *UniformRandom) NextLocation() (complex128, bool) {
	if u.localRemaining == 0 {
		if !u.claimSection() {
			return 0, false
		}
	}
	u.localRemaining--

	re := real(u.Min) + u.rng.Float64()*(real(u.Max)-real(u.Min))
	im := imag(u.Min) + u.rng.Float64()*(imag(u.Max)-imag(u.Min))
	return complex(re, im), true
}

// Clone implements Generator.
func (u *UniformRandom) Clone() Generator {
	return &UniformRandom{
		Min:       u.Min,
		Max:       u.Max,
		total:     u.total,
		section:   u.section,
		claimed:   u.claimed,
		onSection: u.onSection,
		rng:       rand.New(rand.NewSource(newSeed())),
	}
}

// Array jitters around a fixed list of seed points by +/-delta, spending
// perPoint samples on each seed before moving to the next.
//
// This is a supplemental generator with no counterpart in spec.md's
// distillation; it is grounded directly on
// original_source/src/location_generators/array.rs's ArrayLocationGenerator,
// which the original project used to zoom in on a hand-picked set of
// interesting coordinates instead of scanning a whole rectangle. It is
// useful for exactly the deterministic single-point scenarios spec.md §8
// describes (S2, S3): a delta of 0 turns Array into the "delta-distribution
// generator" those scenarios assume.
type Array struct {
	points *sharedPoints
	delta  float64

	current  complex128
	have     bool
	count    uint64
	perPoint uint64
	rng      *rand.Rand
}

// sharedPoints is the Mutex-protected remaining-seed-point stack shared by
// all clones of an Array generator, mirroring ArrayLocationGenerator's
// Arc<Mutex<Vec<Complex64>>>.
type sharedPoints struct {
	mu     sync.Mutex
	points []complex128
}

func NewArray(points []complex128, perPoint uint64, delta float64) *Array {
	cp := make([]complex128, len(points))
	copy(cp, points)

	return &Array{
		points:   &sharedPoints{points: cp},
		delta:    delta,
		perPoint: perPoint,
		rng:      rand.New(rand.NewSource(newSeed())),
	}
}

func (a *Array) popPoint() (complex128, bool) {
	a.points.mu.Lock()
	defer a.points.mu.Unlock()

	n := len(a.points.points)
	if n == 0 {
		return 0, false
	}
	p := a.points.points[n-1]
	a.points.points = a.points.points[:n-1]
	return p, true
}

// NextLocation implements Generator.
func (a *Array) NextLocation() (complex128, bool) {
	if !a.have || a.count >= a.perPoint {
		p, ok := a.popPoint()
		if !ok {
			return 0, false
		}
		a.current = p
		a.have = true
		a.count = 0
	}
	a.count++

	if a.delta == 0 {
		return a.current, true
	}

	dre := (a.rng.Float64()*2 - 1) * a.delta
	dim := (a.rng.Float64()*2 - 1) * a.delta
	return a.current + complex(dre, dim), true
}

// Clone implements Generator.
func (a *Array) Clone() Generator {
	return &Array{
		points:   a.points,
		delta:    a.delta,
		perPoint: a.perPoint,
		rng:      rand.New(rand.NewSource(newSeed())),
	}
}
