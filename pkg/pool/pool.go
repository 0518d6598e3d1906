package pool

import (
	"context"
	"errors"
	"sync"

	"github.com/minifold/minifold/internal/logger"
	"github.com/minifold/minifold/pkg/minify"
)

// ErrPoolClosed is returned by Transform after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Transformer executes minify tasks. Both the worker pool and the
// in-process fallback satisfy it, so the orchestrator is indifferent to
// where work runs.
type Transformer interface {
	// Transform runs one task and returns its result or error.
	Transform(ctx context.Context, task *minify.Task) (*minify.Result, error)

	// Close shuts the transformer down. Further Transform calls return
	// ErrPoolClosed. Close is idempotent.
	Close() error
}

// ============================================================================
// In-Process Transformer
// ============================================================================

// InProcess runs tasks on the caller's goroutine. It is the fallback when
// parallelism is disabled or the run is too small to justify workers.
type InProcess struct {
	minifier minify.Minifier
	closed   bool
	mu       sync.Mutex
}

// NewInProcess wraps a minifier as a Transformer.
func NewInProcess(m minify.Minifier) *InProcess {
	return &InProcess{minifier: m}
}

// Transform implements Transformer.
func (p *InProcess) Transform(ctx context.Context, task *minify.Task) (*minify.Result, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}
	return p.minifier.Minify(ctx, task)
}

// Close implements Transformer.
func (p *InProcess) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// ============================================================================
// Worker Pool
// ============================================================================

type job struct {
	ctx  context.Context
	task *minify.Task
	done chan jobResult
}

type jobResult struct {
	result *minify.Result
	err    error
}

// Pool runs tasks on a fixed set of worker goroutines. Workers start
// eagerly at construction and drain remaining jobs on Close.
type Pool struct {
	minifier  minify.Minifier
	jobs      chan job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts a pool of the given width. Width must be positive; callers
// resolve the width policy first and use InProcess when it yields zero.
func New(width int, m minify.Minifier) *Pool {
	p := &Pool{
		minifier: m,
		jobs:     make(chan job),
	}

	p.wg.Add(width)
	for i := 0; i < width; i++ {
		go p.worker()
	}

	logger.Debug("Started transform worker pool", logger.KeyPoolWidth, width)
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		if err := j.ctx.Err(); err != nil {
			j.done <- jobResult{err: err}
			continue
		}
		result, err := p.minifier.Minify(j.ctx, j.task)
		j.done <- jobResult{result: result, err: err}
	}
}

// Transform implements Transformer. It blocks until a worker picks the
// task up and finishes it, or the context is done. Calling Transform on a
// closed pool returns ErrPoolClosed.
func (p *Pool) Transform(ctx context.Context, task *minify.Task) (result *minify.Result, err error) {
	// Submitting to a closed pool would send on a closed channel; recover
	// that into a regular error so a shutdown race stays an error, not a
	// crash.
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, ErrPoolClosed
		}
	}()

	j := job{ctx: ctx, task: task, done: make(chan jobResult, 1)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-j.done:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements Transformer. It stops accepting work and waits for
// in-flight tasks to finish. Exactly one close takes effect.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
	return nil
}
