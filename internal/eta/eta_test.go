package eta

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dylansiegel/buddhabrot/internal/blog"
)

func TestCounterAccumulatesAndReports(t *testing.T) {
	var buf bytes.Buffer
	log := blog.New(&buf)

	c := NewCounter(100, 10*time.Millisecond, log)
	defer c.Close()

	c.CountN(40)
	require.Equal(t, uint64(40), c.Current())

	time.Sleep(30 * time.Millisecond)
	c.Close()

	require.Contains(t, buf.String(), "[eta]")
}

func TestBatcherFlushesAtSectionSize(t *testing.T) {
	c := NewCounter(1000, time.Hour, nil)
	defer c.Close()

	b := NewBatcher(c, 10)
	for i := 0; i < 9; i++ {
		b.Count()
	}
	require.Equal(t, uint64(0), c.Current())

	b.Count()
	require.Equal(t, uint64(10), c.Current())
}

func TestBatcherFlushOnTermination(t *testing.T) {
	c := NewCounter(1000, time.Hour, nil)
	defer c.Close()

	b := NewBatcher(c, 100)
	b.CountN(37)
	require.Equal(t, uint64(0), c.Current())

	b.Flush()
	require.Equal(t, uint64(37), c.Current())

	// Flushing again with nothing pending must not double-count.
	b.Flush()
	require.Equal(t, uint64(37), c.Current())
}

func TestCloseIsIdempotent(t *testing.T) {
	c := NewCounter(10, time.Hour, nil)
	c.Close()
	c.Close()
}
