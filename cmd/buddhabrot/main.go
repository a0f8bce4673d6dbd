// Command buddhabrot is the thin launcher of spec.md §5.10/C8: it parses a
// single subcommand off the command line, builds a bconfig.Config, and
// hands off to render.Run.
//
// Grounded on the teacher's main.go: os.Args[1] dispatcher switch,
// runtime.GOMAXPROCS pinning, and an elapsed-time footer printed after the
// command returns.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dylansiegel/buddhabrot/internal/bconfig"
	"github.com/dylansiegel/buddhabrot/internal/blog"
	"github.com/dylansiegel/buddhabrot/internal/orbit"
	"github.com/dylansiegel/buddhabrot/internal/render"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	start := time.Now()
	log := blog.New(os.Stdout)

	switch os.Args[1] {
	case "render":
		if err := runRender(log); err != nil {
			log.Error("render failed: %v", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}

	log.Done("total elapsed: %s | mem: %s", time.Since(start), memUsage())
}

func printHelp() {
	fmt.Println("Usage: buddhabrot [command]")
	fmt.Println("  render  - sample the plane and write histogram + PNG buckets")
}

func memUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return fmt.Sprintf("%d MB", m.Alloc/1024/1024)
}

// runRender wires a default three-bucket Buddhabrot configuration (the
// conventional red/green/blue split by bailout-iteration range, spec.md
// §9's "Further Work") and runs it to completion.
func runRender(log *blog.Logger) error {
	cfg := bconfig.Config{
		Threads:               runtime.NumCPU(),
		ScanMin:               complex(-2, -1.5),
		ScanMax:               complex(1, 1.5),
		BailoutBox:            orbit.Box{Min: complex(-2, -2), Max: complex(2, 2)},
		InitialZ:              0,
		Samples:               20_000_000,
		Section:               10_000,
		CheckIterations:       5000,
		ThreadBuffer:          4096,
		ChannelBuffer:         64,
		FileBufferSize:        1 << 16,
		PixelBufferCutoffSize: 1024,
		ETAIntervalMillis:     2000,
		Images: []bconfig.ImageConfig{
			{
				Name: "blue", MinIter: 0, MaxIter: 50,
				Width: 1000, Height: 1000,
				Min: complex(-2, -1.5), Max: complex(1, 1.5),
				OutputPath: "blue.mbh",
			},
			{
				Name: "green", MinIter: 50, MaxIter: 500,
				Width: 1000, Height: 1000,
				Min: complex(-2, -1.5), Max: complex(1, 1.5),
				OutputPath: "green.mbh",
			},
			{
				Name: "red", MinIter: 500, MaxIter: 5000,
				Width: 1000, Height: 1000,
				Min: complex(-2, -1.5), Max: complex(1, 1.5),
				OutputPath: "red.mbh",
			},
		},
	}

	result, err := render.Run(cfg, log)
	if err != nil {
		return err
	}

	for _, b := range result.Buckets {
		log.Done("bucket %q: %d accepted, %d bytes -> %s", b.Name, b.Accepted, b.FileSizeByte, b.PNGPath)
	}
	return nil
}
