// Package histfile is the file-backed histogram aggregator of spec.md §4.6
// (C7): a write-optimised, random-access 32-bit counter array that keeps
// the bulk of its state on disk, buffers per-region pixel increments in
// memory, and flushes them in coarse contiguous chunks.
//
// Grounded on the teacher's own binary-row-on-disk idiom: common.go's
// PutRow/AggHeader (fixed little-endian layout) and data.go's processDay,
// which seeks to a known offset, reads a counter, mutates it in memory, and
// seeks back to write it — exactly the read-mutate-write shape a region
// flush performs here, generalized from a single uint64 index counter to a
// whole region of uint32 pixel counters.
package histfile

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"math"
	"os"

	"github.com/dylansiegel/buddhabrot/internal/pixel"
)

const counterSize = 4 // bytes per on-disk uint32 counter

// pixelXY is a pending (x, y) increment awaiting flush.
type pixelXY struct {
	X, Y int
}

// Histogram is a single bucket's disk-backed counter array (spec.md §3 "File
// region", "Pixel buffer"; §4.6). It is owned exclusively by whichever
// goroutine calls Aggregate/Close — no internal locking is used, matching
// spec.md §5's "mutated only by its owning aggregator thread".
type Histogram struct {
	file *os.File

	width, height int
	min, max      complex128

	fileBufferSize int
	pixelBufferCut int
	numRegions     int
	regionScratch  []byte
	pixelBuffers   [][]pixelXY
}

// Create opens path for read+write, truncating any existing content, and
// pre-extends it to cover the full W*H grid rounded up to a whole number of
// fileBufferSize-counter regions (spec.md §4.6 Construction, §6 on-disk
// format). Every byte beyond what has been written is implicitly zero —
// the same guarantee spec.md §3 describes ("uninitialised bytes are
// zero").
func Create(path string, width, height int, min, max complex128, fileBufferSize, pixelBufferCutoff int) (*Histogram, error) {
	if fileBufferSize <= 0 {
		fileBufferSize = width * height
		if fileBufferSize == 0 {
			fileBufferSize = 1
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	total := width * height
	numRegions := (total + fileBufferSize - 1) / fileBufferSize
	if numRegions == 0 {
		numRegions = 1
	}
	sizeBytes := int64(numRegions) * int64(fileBufferSize) * counterSize

	if err := f.Truncate(sizeBytes); err != nil {
		f.Close()
		return nil, err
	}

	h := &Histogram{
		file:           f,
		width:          width,
		height:         height,
		min:            min,
		max:            max,
		fileBufferSize: fileBufferSize,
		pixelBufferCut: pixelBufferCutoff,
		numRegions:     numRegions,
		regionScratch:  make([]byte, fileBufferSize*counterSize),
		pixelBuffers:   make([][]pixelXY, numRegions),
	}
	return h, nil
}

// Aggregate applies one orbit point (spec.md §4.6 "aggregate(c)"): the
// in-range test against this histogram's own min/max, the pixel mapping,
// and a buffered increment that may trigger a region flush. It returns a
// non-nil error if that flush fails (spec.md §7: a mid-run IO failure must
// be surfaced so the caller can log it and terminate the bucket, not be
// silently retried on every subsequent point); the region's buffer is left
// un-cleared in that case, matching flushRegion's own failure behavior.
func (h *Histogram) Aggregate(c complex128) error {
	if !pixel.InRange(c, h.min, h.max) {
		return nil
	}
	x, y, ok := pixel.ToPixel(c, h.min, h.max, h.width, h.height)
	if !ok {
		return nil
	}

	flat := y*h.width + x
	region := flat / h.fileBufferSize

	h.pixelBuffers[region] = append(h.pixelBuffers[region], pixelXY{X: x, Y: y})
	if len(h.pixelBuffers[region]) > h.pixelBufferCut {
		return h.flushRegion(region)
	}
	return nil
}

// flushRegion implements spec.md §4.6 "Region flush": seek+read one region,
// apply every buffered increment in place with saturating add, seek+write
// the region back, then clear the buffer.
func (h *Histogram) flushRegion(r int) error {
	buf := h.pixelBuffers[r]
	if len(buf) == 0 {
		return nil
	}

	offset := int64(r) * int64(h.fileBufferSize) * counterSize
	if _, err := h.file.ReadAt(h.regionScratch, offset); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	for _, p := range buf {
		flat := p.Y*h.width + p.X
		slot := flat % h.fileBufferSize
		off := slot * counterSize

		cur := binary.LittleEndian.Uint32(h.regionScratch[off : off+counterSize])
		if cur != math.MaxUint32 {
			cur++
		}
		binary.LittleEndian.PutUint32(h.regionScratch[off:off+counterSize], cur)
	}

	if _, err := h.file.WriteAt(h.regionScratch, offset); err != nil {
		return err
	}

	h.pixelBuffers[r] = buf[:0]
	return nil
}

// Close flushes every non-empty region buffer (spec.md §4.6 Drop), writes a
// "<path>.sha256" sidecar over the final on-disk bytes (DESIGN.md: grounded
// on the teacher's sha256.Sum256 checksum step in data.go), and closes the
// underlying file. The first error encountered, if any, is returned, but
// every remaining region is still attempted — a crash mid-flush should
// leave as much state on disk as possible (spec.md §7: "a crash mid-run
// yields a partial but well-formed histogram").
func (h *Histogram) Close() error {
	var firstErr error
	for r := range h.pixelBuffers {
		if len(h.pixelBuffers[r]) == 0 {
			continue
		}
		if err := h.flushRegion(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		if err := h.writeChecksum(); err != nil {
			firstErr = err
		}
	}

	if err := h.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Abort closes the underlying file without attempting any further flush or
// checksum write. It is for the spec.md §7 "log and terminate" path: once a
// region flush has already failed, retrying Close's own flush pass over the
// same file would just re-surface the same IO error, so the caller releases
// the descriptor directly instead.
func (h *Histogram) Abort() error {
	return h.file.Close()
}

func (h *Histogram) writeChecksum() error {
	if _, err := h.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	sum := sha256.New()
	if _, err := io.Copy(sum, h.file); err != nil {
		return err
	}
	return os.WriteFile(h.file.Name()+".sha256", []byte(hex.EncodeToString(sum.Sum(nil))+"\n"), 0644)
}

// Path returns the underlying file's path.
func (h *Histogram) Path() string { return h.file.Name() }

// ReadCounters reads back the first width*height little-endian uint32
// counters from path (spec.md §6: "the final image reader reads only the
// first W*H*4 bytes").
func ReadCounters(path string, width, height int) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := width * height
	raw := make([]byte, n*counterSize)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, err
	}

	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*counterSize : i*counterSize+counterSize])
	}
	return out, nil
}
