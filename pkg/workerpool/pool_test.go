package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAndExecute(t *testing.T) {
	pool := New(4)
	defer pool.Shutdown(context.Background())

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.Eventually(t, func() bool {
			return pool.Submit("count", func(context.Context) {
				defer wg.Done()
				count.Add(1)
			}) == nil
		}, time.Second, time.Millisecond)
	}
	wg.Wait()
	assert.Equal(t, int64(n), count.Load())
}

func TestErrPoolFull(t *testing.T) {
	pool := New(1)
	blocker := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, pool.Submit("block", func(context.Context) {
		close(started)
		<-blocker
	}))
	<-started

	// queue holds 2×size
	require.NoError(t, pool.Submit("a", func(context.Context) {}))
	require.NoError(t, pool.Submit("b", func(context.Context) {}))
	assert.ErrorIs(t, pool.Submit("c", func(context.Context) {}), ErrPoolFull)

	close(blocker)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := New(2)
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.NoError(t, pool.Shutdown(context.Background()), "idempotent")

	assert.ErrorIs(t, pool.Submit("x", func(context.Context) {}), ErrPoolClosed)
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown(context.Background())

	require.NoError(t, pool.Submit("panic", func(context.Context) { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, pool.Submit("after", func(context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}
}

func TestShutdownDrainsQueue(t *testing.T) {
	pool := New(1)
	var ran atomic.Int32
	for i := 0; i < 2; i++ {
		require.NoError(t, pool.Submit("job", func(context.Context) {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
		}))
	}
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, int32(2), ran.Load())
}

func TestShutdownCancelsTaskContext(t *testing.T) {
	pool := New(1)
	started := make(chan struct{})
	require.NoError(t, pool.Submit("wait", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, pool.Shutdown(ctx))
}

func TestShutdownHonoursDeadline(t *testing.T) {
	pool := New(1)
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	require.NoError(t, pool.Submit("stuck", func(context.Context) {
		close(started)
		<-release
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	returned := make(chan error, 1)
	go func() { returned <- pool.Shutdown(ctx) }()

	select {
	case err := <-returned:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("Shutdown outlived its deadline")
	}
}
