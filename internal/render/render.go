// Package render is the orchestrator (C8, spec.md §4.7): it builds the
// location generator, the ETA counter, one channel and one aggregator
// goroutine per bucket, spawns the workers, joins everything, and drives
// the PNG post-pass.
//
// Grounded on the teacher's runData (data.go): build a job source, spawn N
// worker goroutines over a sync.WaitGroup, drain results, report a summary
// — generalized from "N days, one result channel" to "N buckets, one
// channel + one aggregator goroutine each".
package render

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dylansiegel/buddhabrot/internal/bconfig"
	"github.com/dylansiegel/buddhabrot/internal/blog"
	"github.com/dylansiegel/buddhabrot/internal/eta"
	"github.com/dylansiegel/buddhabrot/internal/histfile"
	"github.com/dylansiegel/buddhabrot/internal/location"
	"github.com/dylansiegel/buddhabrot/internal/pipeline"
	"github.com/dylansiegel/buddhabrot/internal/rasterio"
)

// BucketResult summarizes one finished image bucket.
type BucketResult struct {
	Name         string
	Accepted     uint64
	FileSizeByte int64
	MBHPath      string
	PNGPath      string
}

// Result is what Run returns once every bucket has been fully flushed and
// (optionally) rendered to PNG.
type Result struct {
	Buckets          []BucketResult
	RAMEstimateBytes int64
}

const (
	complex128Size = 16 // bytes per complex128 sample point
	counterSize    = 4  // bytes per on-disk uint32 region counter
)

// estimateRAM implements spec.md §4.7's worst-case memory formula:
// "threads x buffer x bucket count + channel buffers x batch size +
// regions x per-region cutoff x 4".
func estimateRAM(cfg bconfig.Config) int64 {
	threads := int64(cfg.Threads)
	buckets := int64(len(cfg.Images))
	threadBuf := int64(cfg.ThreadBuffer) * complex128Size
	channelBuf := int64(cfg.ChannelBuffer) * threadBuf

	var regionBytes int64
	for _, img := range cfg.Images {
		total := int64(img.Width) * int64(img.Height)
		fb := int64(cfg.FileBufferSize)
		if fb <= 0 {
			fb = total
		}
		regions := (total + fb - 1) / fb
		regionBytes += regions * int64(cfg.PixelBufferCutoffSize) * counterSize
	}

	return threads*threadBuf*buckets + channelBuf*buckets + regionBytes
}

// Run executes one complete render: sampling, aggregation, and the PNG
// post-pass for every configured bucket.
func Run(cfg bconfig.Config, log *blog.Logger) (Result, error) {
	if log == nil {
		log = blog.New(os.Stdout)
	}

	ramEstimate := estimateRAM(cfg)
	log.Job("worst-case RAM estimate: %d bytes (%d buckets, %d threads)", ramEstimate, len(cfg.Images), cfg.Threads)

	gen := location.NewUniformRandom(cfg.ScanMin, cfg.ScanMax, cfg.Samples, cfg.Section, func(claimed, total, section uint64) {
		log.Job("section %d/%d claimed", claimed/section, (total+section-1)/section)
	})

	counter := eta.NewCounter(cfg.Samples, time.Duration(cfg.ETAIntervalMillis)*time.Millisecond, log)
	defer counter.Close()

	channels := make([]chan pipeline.Batch, len(cfg.Images))
	histograms := make([]*histfile.Histogram, len(cfg.Images))
	for i, img := range cfg.Images {
		channels[i] = make(chan pipeline.Batch, cfg.ChannelBuffer)

		h, err := histfile.Create(img.OutputPath, img.Width, img.Height, img.Min, img.Max, cfg.FileBufferSize, cfg.PixelBufferCutoffSize)
		if err != nil {
			return Result{}, fmt.Errorf("creating histogram for bucket %q: %w", img.Name, err)
		}
		histograms[i] = h
	}

	results := make([]BucketResult, len(cfg.Images))
	var aggWG sync.WaitGroup
	for i, img := range cfg.Images {
		aggWG.Add(1)
		go func(i int, img bconfig.ImageConfig) {
			defer aggWG.Done()
			results[i] = runAggregator(img, channels[i], histograms[i], cfg.Threads, log)
		}(i, img)
	}

	var workerWG sync.WaitGroup
	for t := 0; t < cfg.Threads; t++ {
		workerWG.Add(1)
		go func(id int) {
			defer workerWG.Done()
			w := &pipeline.Worker{
				ID:              id,
				Gen:             gen.Clone(),
				Box:             cfg.BailoutBox,
				InitialZ:        cfg.InitialZ,
				CheckIterations: cfg.CheckIterations,
				ThreadBuffer:    cfg.ThreadBuffer,
				Images:          cfg.Images,
				ETA:             eta.NewBatcher(counter, cfg.Section),
				Log:             log,
			}
			w.Run(channels)
		}(t)
	}

	workerWG.Wait()
	aggWG.Wait()

	var postWG sync.WaitGroup
	for i, img := range cfg.Images {
		postWG.Add(1)
		go func(i int, img bconfig.ImageConfig) {
			defer postWG.Done()

			pngPath := img.OutputPath + ".png"
			if err := rasterio.RenderHistogramToPNG(results[i].MBHPath, img.Width, img.Height, rasterio.ExpToneCurve, pngPath); err != nil {
				log.Error("bucket %q: png post-pass failed: %v", img.Name, err)
				return
			}
			results[i].PNGPath = pngPath

			if err := rasterio.ArchiveHistogram(results[i].MBHPath); err != nil {
				log.Error("bucket %q: gzip archive failed: %v", img.Name, err)
			}
		}(i, img)
	}
	postWG.Wait()

	log.Done("render complete: %d buckets", len(cfg.Images))
	return Result{Buckets: results, RAMEstimateBytes: ramEstimate}, nil
}

// runAggregator is C7's per-bucket thread (spec.md §4.8): apply every batch,
// count sentinels, and close (final-flush) the histogram once every
// worker has reported in.
//
// spec.md §7's IO-flush failure path ("log and terminate") applies here: a
// failed Aggregate stops this bucket from aggregating or closing any
// further — but the loop keeps draining the channel until every worker's
// sentinel has arrived, since workers block on a full channel and must
// still be allowed to finish (spec.md §4.4/§4.5's backpressure policy).
func runAggregator(img bconfig.ImageConfig, ch chan pipeline.Batch, h *histfile.Histogram, threads int, log *blog.Logger) BucketResult {
	var accepted uint64
	sentinels := 0
	failed := false

	for sentinels < threads {
		b := <-ch
		if b.Sentinel {
			sentinels++
			continue
		}
		if failed {
			continue
		}
		for _, c := range b.Points {
			if err := h.Aggregate(c); err != nil {
				log.Error("bucket %q: aggregate failed, terminating bucket: %v", img.Name, err)
				failed = true
				break
			}
			accepted++
		}
	}

	if failed {
		if err := h.Abort(); err != nil {
			log.Error("bucket %q: abort failed: %v", img.Name, err)
		}
	} else if err := h.Close(); err != nil {
		log.Error("bucket %q: close failed: %v", img.Name, err)
	}

	info, _ := os.Stat(img.OutputPath)
	var size int64
	if info != nil {
		size = info.Size()
	}

	return BucketResult{
		Name:         img.Name,
		Accepted:     accepted,
		FileSizeByte: size,
		MBHPath:      img.OutputPath,
	}
}
