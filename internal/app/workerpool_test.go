package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsEveryJob(t *testing.T) {
	p := NewWorkerPool(4, 0, nil)
	p.Start(context.Background())

	var done atomic.Int32
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Submit(context.Background(), func(ctx context.Context) error {
			done.Add(1)
			return nil
		}))
	}
	p.Close()
	assert.Equal(t, int32(100), done.Load())
}

func TestWorkerPool_ReportsErrors(t *testing.T) {
	var mu sync.Mutex
	var errs []error
	p := NewWorkerPool(2, 0, func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})
	p.Start(context.Background())

	boom := errors.New("boom")
	for i := 0; i < 6; i++ {
		i := i
		require.NoError(t, p.Submit(context.Background(), func(ctx context.Context) error {
			if i%2 == 0 {
				return boom
			}
			return nil
		}))
	}
	p.Close()

	assert.Len(t, errs, 3)
	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	p := NewWorkerPool(1, 1, nil)
	p.Start(context.Background())
	p.Close()
	p.Close()

	err := p.Submit(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestWorkerPool_SubmitHonoursContext(t *testing.T) {
	// Not started: the queue fills and stays full.
	p := NewWorkerPool(1, 1, nil)
	require.NoError(t, p.Submit(context.Background(), func(ctx context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Submit(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	p.Start(context.Background())
	p.Close()
}

func TestWorkerPool_Defaults(t *testing.T) {
	p := NewWorkerPool(0, 0, nil)
	assert.Equal(t, 1, p.workers)
	assert.Equal(t, 2, cap(p.jobs))
}
