package client

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitFires polls until the counter reaches want or the deadline passes.
func waitFires(t *testing.T, fires *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fires.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("callback fired %d times, want %d", fires.Load(), want)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { fires.Add(1) })
	defer d.Close()

	assert.Equal(t, StateIdle, d.State())

	for i := 0; i < 10; i++ {
		d.Signal()
		time.Sleep(2 * time.Millisecond)
	}
	assert.Equal(t, StatePending, d.State())

	waitFires(t, &fires, 1)

	// Quiet afterwards: no second invocation sneaks in.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load())
	assert.Equal(t, StateIdle, d.State())
}

func TestDebouncerSignalDuringFetchQueuesOneRerun(t *testing.T) {
	var fires atomic.Int32
	fetching := make(chan struct{})
	release := make(chan struct{})

	d := NewDebouncer(10*time.Millisecond, func() {
		if fires.Add(1) == 1 {
			close(fetching)
			<-release
		}
	})
	defer d.Close()

	d.Signal()
	<-fetching
	require.Equal(t, StateFetching, d.State())

	// Several signals while the fetch is in flight collapse into one rerun.
	d.Signal()
	d.Signal()
	d.Signal()
	close(release)

	waitFires(t, &fires, 2)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), fires.Load())
}

func TestDebouncerPendingSignalResetsDeadline(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() { fires.Add(1) })
	defer d.Close()

	d.Signal()
	time.Sleep(30 * time.Millisecond)
	d.Signal() // deadline pushed out; the original one must not fire
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())

	waitFires(t, &fires, 1)
}

func TestDebouncerCloseStopsEverything(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { fires.Add(1) })

	d.Signal()
	d.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())
	assert.Equal(t, StateIdle, d.State())

	// Signals after Close are ignored.
	d.Signal()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())
}
