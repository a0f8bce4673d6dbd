// Package pipeline implements the sample pipeline's worker (C5) and the
// bounded hand-off batch type (C6) from spec.md §4.4-§4.5.
//
// Grounded on the teacher's runData job-queue worker pool in data.go: many
// goroutines pulling from a shared source and pushing results onto a
// channel, generalized from "one job per day" to "one orbit per sample,
// fanned out to one channel per output bucket".
package pipeline

import (
	"github.com/dylansiegel/buddhabrot/internal/bconfig"
	"github.com/dylansiegel/buddhabrot/internal/blog"
	"github.com/dylansiegel/buddhabrot/internal/eta"
	"github.com/dylansiegel/buddhabrot/internal/location"
	"github.com/dylansiegel/buddhabrot/internal/orbit"
	"github.com/dylansiegel/buddhabrot/internal/pixel"
)

// Batch is the element type carried over a bucket's channel: either a
// non-empty list of orbit points, or an end-of-worker sentinel (spec.md
// §4.5: "element type is either a batch ... or an end-of-worker sentinel").
type Batch struct {
	Points   []complex128
	Sentinel bool
}

// Worker runs the per-sample pipeline of spec.md §4.4: pull, bulb-reject,
// detect bailout, replay into every matching bucket, batch onto that
// bucket's channel.
type Worker struct {
	ID int

	Gen      location.Generator
	Box      orbit.Box
	InitialZ complex128

	CheckIterations int
	ThreadBuffer    int

	Images []bconfig.ImageConfig
	ETA    *eta.Batcher
	Log    *blog.Logger
}

// Run drains Gen until exhaustion, sending batches on channels (one per
// Images entry, same order/length) and exactly one sentinel per channel
// when the generator is exhausted (spec.md §4.4, §4.8).
func (w *Worker) Run(channels []chan Batch) {
	caches := make([][]complex128, len(w.Images))

	for {
		c, ok := w.Gen.NextLocation()
		if !ok {
			break
		}
		w.ETA.Count()

		if pixel.InBulb(c) {
			continue
		}

		k, escaped := orbit.BailoutIteration(c, w.InitialZ, w.Box, w.CheckIterations)
		if !escaped {
			continue
		}

		for i, img := range w.Images {
			if k < img.MinIter || k >= img.MaxIter {
				continue
			}
			orbit.Replay(c, w.InitialZ, w.Box, img.MinIter, img.MaxIter, &caches[i])
			if len(caches[i]) > w.ThreadBuffer {
				w.send(channels[i], Batch{Points: caches[i]})
				caches[i] = nil
			}
		}
	}

	for i := range caches {
		if len(caches[i]) > 0 {
			w.send(channels[i], Batch{Points: caches[i]})
		}
		w.send(channels[i], Batch{Sentinel: true})
	}
	w.ETA.Flush()
}

// send implements spec.md §4.4's backpressure policy: a non-blocking probe
// logs a one-line warning if the channel is already full, then the send
// blocks until space is available. Workers never drop batches.
func (w *Worker) send(ch chan Batch, b Batch) {
	select {
	case ch <- b:
		return
	default:
	}
	if w.Log != nil {
		w.Log.Warn("worker %d: channel full, blocking", w.ID)
	}
	ch <- b
}
