package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2, nil)
	require.NoError(t, pool.Start())
	defer pool.Stop()

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pool.Submit(context.Background(), func(ctx context.Context) error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 2, pool.Size())
}

func TestWorkerPoolReturnsTaskError(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	require.NoError(t, pool.Start())
	defer pool.Stop()

	boom := errors.New("decoder failed")
	err := pool.Submit(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestWorkerPoolRecoversPanic(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	require.NoError(t, pool.Start())
	defer pool.Stop()

	err := pool.Submit(context.Background(), func(context.Context) error { panic("bad input") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad input")

	// the worker survives the panic
	assert.NoError(t, pool.Submit(context.Background(), func(context.Context) error { return nil }))
}

func TestWorkerPoolSubmitHonoursContextWhileQueued(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	require.NoError(t, pool.Start())
	defer pool.Stop()

	release := make(chan struct{})
	busy := make(chan struct{})
	go func() {
		_ = pool.Submit(context.Background(), func(context.Context) error {
			close(busy)
			<-release
			return nil
		})
	}()
	<-busy

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestWorkerPoolLifecycle(t *testing.T) {
	pool := NewWorkerPool(0, nil)
	assert.Equal(t, 1, pool.Size())

	assert.ErrorIs(t, pool.Submit(context.Background(), func(context.Context) error { return nil }), ErrPoolStopped)

	require.NoError(t, pool.Start())
	assert.Error(t, pool.Start())

	pool.Stop()
	pool.Stop()
	assert.ErrorIs(t, pool.Submit(context.Background(), func(context.Context) error { return nil }), ErrPoolStopped)
}
