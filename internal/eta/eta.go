// Package eta is the counter service of spec.md §4.3 (C4): a shared total
// target, an atomic running count, and a background goroutine that prints
// rate/ETA lines on a fixed cadence.
//
// Grounded on original_source/src/eta.rs's ETA/ETAStore split (a per-worker
// local accumulator batching into a shared Arc<AtomicUsize>, with a
// dedicated reporting thread). Go has no equivalent of Rust's
// Arc::strong_count-based auto-termination, so the reporting goroutine is
// stopped explicitly via Close() instead of implicitly when all clones are
// dropped (see SPEC_FULL.md §7, Open Question 4).
package eta

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dylansiegel/buddhabrot/internal/blog"
)

// Counter is the shared ETA state (spec.md §3: "total target count N,
// atomic current count ... start timestamp, print cadence").
type Counter struct {
	total   uint64
	current atomic.Uint64
	start   time.Time

	log *blog.Logger

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewCounter starts the background reporting goroutine, which wakes every
// interval and prints one progress line until Close is called.
func NewCounter(total uint64, interval time.Duration, log *blog.Logger) *Counter {
	c := &Counter{
		total: total,
		start: time.Now(),
		log:   log,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	go c.run(interval)
	return c
}

func (c *Counter) run(interval time.Duration) {
	defer close(c.done)
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.print()
		}
	}
}

func (c *Counter) print() {
	if c.log == nil {
		return
	}
	current := c.current.Load()
	elapsed := time.Since(c.start).Seconds()

	var rate, etaSeconds float64
	if elapsed > 0 && current > 0 {
		rate = float64(current) / elapsed
		etaSeconds = (elapsed * (float64(c.total) / float64(current))) - elapsed
		if etaSeconds < 0 {
			etaSeconds = 0
		}
	}

	pct := 0.0
	if c.total > 0 {
		pct = float64(current) / float64(c.total) * 100
	}

	etaDur := time.Duration(etaSeconds) * time.Second
	c.log.Printf("eta", "%s; %d / %d; %.5f%%; %.2f samples/s",
		etaDur, current, c.total, pct, rate)
}

// CountN atomically adds n to the current count (relaxed semantics: the
// only requirement is monotonic progress, spec.md §5).
func (c *Counter) CountN(n uint64) {
	c.current.Add(n)
}

// Current returns the current count (for tests / orchestrator summaries).
func (c *Counter) Current() uint64 { return c.current.Load() }

// Close stops the reporting goroutine and waits for it to exit. Safe to
// call more than once.
func (c *Counter) Close() {
	c.once.Do(func() { close(c.stop) })
	<-c.done
}

// Batcher is a per-worker local accumulator that forwards to a shared
// Counter in coarse chunks, minimising cache-line contention on the
// underlying atomic (spec.md §4.3: "Per-thread batching").
type Batcher struct {
	counter *Counter
	section uint64
	local   uint64
}

// NewBatcher returns a Batcher that flushes into counter every time the
// local accumulator reaches section.
func NewBatcher(counter *Counter, section uint64) *Batcher {
	if section == 0 {
		section = 1
	}
	return &Batcher{counter: counter, section: section}
}

// Count increments the local accumulator by one, flushing to the shared
// Counter once it reaches the configured section size.
func (b *Batcher) Count() { b.CountN(1) }

// CountN increments the local accumulator by n, flushing as needed.
func (b *Batcher) CountN(n uint64) {
	b.local += n
	if b.local >= b.section {
		b.counter.CountN(b.local)
		b.local = 0
	}
}

// Flush forwards any remaining local count to the shared Counter. Workers
// must call this once on termination so no counted samples are lost.
func (b *Batcher) Flush() {
	if b.local > 0 {
		b.counter.CountN(b.local)
		b.local = 0
	}
}
