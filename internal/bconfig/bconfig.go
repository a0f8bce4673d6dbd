// Package bconfig holds the in-process configuration structures the
// orchestrator is built from. spec.md §6 puts CLI/config-file parsing out
// of scope for the core; this package is the generalization of the
// teacher's hardcoded `const` block (common.go, shared.go) into a struct a
// caller fills in by hand, the way cmd/buddhabrot's main does.
package bconfig

import "github.com/dylansiegel/buddhabrot/internal/orbit"

// ImageConfig is one output histogram bucket (spec.md §3).
type ImageConfig struct {
	// Name identifies this bucket in logs and in the render result; output
	// paths come from OutputPath alone.
	Name string

	// MinIter, MaxIter define the half-open bailout range [MinIter, MaxIter)
	// this bucket accepts.
	MinIter, MaxIter int

	// Width, Height are the pixel dimensions of the histogram.
	Width, Height int

	// Min, Max are the bucket's own bounding box in the complex plane.
	Min, Max complex128

	// OutputPath is the .mbh file path this bucket's histogram is written
	// to; the PNG post-pass derives "<OutputPath>.png" from it.
	OutputPath string
}

// Config is the complete in-process render configuration.
type Config struct {
	// Threads is the worker goroutine count (spec.md §5: "threads ~=
	// physical-core count").
	Threads int

	// ScanMin, ScanMax bound the rectangle samples are drawn from.
	ScanMin, ScanMax complex128

	// BailoutBox is the rectangle used to detect orbit escape.
	BailoutBox orbit.Box

	// InitialZ is z0, the orbit's starting point (0 for the classic
	// Buddhabrot; non-zero values let the renderer explore related
	// Julia-set-adjacent escape structures).
	InitialZ complex128

	// Samples is the total sample budget (N in spec.md §3).
	Samples uint64

	// Section is the location generator's claim-section size (spec.md
	// §4.2) and the ETA batcher's flush threshold (spec.md §4.3).
	Section uint64

	// CheckIterations is the bailout pass's iteration budget (spec.md
	// §4.4 step 3: "Run bailout_iteration up to check_iterations").
	CheckIterations int

	// ThreadBuffer is the per-bucket, per-worker local cache size above
	// which a worker flushes a batch onto the bucket's channel (spec.md
	// §4.4 step 5).
	ThreadBuffer int

	// ChannelBuffer is the number of in-flight batches each bucket's
	// channel can hold before a send blocks (spec.md §4.5).
	ChannelBuffer int

	// FileBufferSize is the region size, in counters, of the disk-backed
	// histogram's I/O unit (spec.md §3, §4.6).
	FileBufferSize int

	// PixelBufferCutoffSize is the per-region in-memory buffer capacity
	// above which a region is flushed (spec.md §3, §4.6).
	PixelBufferCutoffSize int

	// ETAIntervalMillis is the counter service's print cadence, in
	// milliseconds (spec.md §3).
	ETAIntervalMillis int

	// Images are the output histogram buckets.
	Images []ImageConfig
}
