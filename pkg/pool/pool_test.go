package pool

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minifold/minifold/pkg/minify"
)

// upper is a trivial minifier for concurrency tests.
var upper = minify.Func(func(_ context.Context, task *minify.Task) (*minify.Result, error) {
	return &minify.Result{Code: []byte(strings.ToUpper(string(task.Input)))}, nil
})

// ============================================================================
// Width Policy Tests
// ============================================================================

func TestAvailableWidth(t *testing.T) {
	tests := []struct {
		name   string
		p      Parallelism
		numCPU int
		want   int
	}{
		{"DefaultLeavesOneCPU", Parallelism{}, 8, 7},
		{"CapBelowHost", Parallelism{Workers: 3}, 8, 3},
		{"CapAboveHostClamped", Parallelism{Workers: 32}, 8, 7},
		{"Disabled", Parallelism{Disabled: true}, 8, 0},
		{"DisabledIgnoresWorkers", Parallelism{Disabled: true, Workers: 4}, 8, 0},
		{"SingleCPUMeansNoPool", Parallelism{}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AvailableWidth(tt.p, tt.numCPU))
		})
	}
}

func TestPoolWidth(t *testing.T) {
	assert.Equal(t, 3, PoolWidth(3, 7), "few tasks bound the pool")
	assert.Equal(t, 7, PoolWidth(100, 7), "many tasks use full width")
	assert.Equal(t, 0, PoolWidth(0, 7))
}

// ============================================================================
// Limiter Tests
// ============================================================================

func TestLimiterBoundsInFlight(t *testing.T) {
	l := NewLimiter(2)
	ctx := context.Background()

	var inFlight, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Acquire(ctx))
			defer l.Release()

			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestLimiterUnbounded(t *testing.T) {
	l := NewLimiter(0)
	assert.Equal(t, 0, l.Width())
	require.NoError(t, l.Acquire(context.Background()))
	l.Release()
}

func TestLimiterAcquireHonorsContext(t *testing.T) {
	l := NewLimiter(1)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ============================================================================
// Transformer Tests
// ============================================================================

func TestPoolTransforms(t *testing.T) {
	p := New(4, upper)
	defer p.Close()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Transform(context.Background(), &minify.Task{Name: "a.js", Input: []byte("abc")})
			require.NoError(t, err)
			assert.Equal(t, "ABC", string(res.Code))
		}()
	}
	wg.Wait()
}

func TestPoolPropagatesTaskError(t *testing.T) {
	boom := errors.New("boom")
	failing := minify.Func(func(context.Context, *minify.Task) (*minify.Result, error) {
		return nil, boom
	})

	p := New(1, failing)
	defer p.Close()

	_, err := p.Transform(context.Background(), &minify.Task{Name: "a.js"})
	assert.ErrorIs(t, err, boom)
}

func TestPoolCloseIsIdempotent(t *testing.T) {
	p := New(2, upper)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err := p.Transform(context.Background(), &minify.Task{Name: "a.js"})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolTransformHonorsContext(t *testing.T) {
	blocked := make(chan struct{})
	slow := minify.Func(func(ctx context.Context, _ *minify.Task) (*minify.Result, error) {
		<-blocked
		return &minify.Result{}, nil
	})

	p := New(1, slow)
	defer func() {
		close(blocked)
		p.Close()
	}()

	// Occupy the single worker.
	go p.Transform(context.Background(), &minify.Task{Name: "busy.js"}) //nolint:errcheck

	time.Sleep(10 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Transform(ctx, &minify.Task{Name: "queued.js"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInProcess(t *testing.T) {
	p := NewInProcess(upper)

	res, err := p.Transform(context.Background(), &minify.Task{Name: "a.js", Input: []byte("xy")})
	require.NoError(t, err)
	assert.Equal(t, "XY", string(res.Code))

	require.NoError(t, p.Close())
	_, err = p.Transform(context.Background(), &minify.Task{Name: "a.js"})
	assert.ErrorIs(t, err, ErrPoolClosed)
}
