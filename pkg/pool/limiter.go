package pool

import "context"

// Limiter bounds the number of tasks in flight. A width of zero or less
// means unbounded: Acquire succeeds immediately.
//
// The limiter exists separately from the worker pool so scheduling
// admission is observable and testable on its own. With a pool present the
// limiter width matches the pool width, so admitted tasks never queue
// inside the pool.
type Limiter struct {
	sem chan struct{}
}

// NewLimiter creates a limiter of the given width.
func NewLimiter(width int) *Limiter {
	l := &Limiter{}
	if width > 0 {
		l.sem = make(chan struct{}, width)
	}
	return l
}

// Acquire blocks until a slot is free or the context is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.sem == nil {
		return ctx.Err()
	}
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	if l.sem == nil {
		return
	}
	<-l.sem
}

// Width returns the limiter's width, zero meaning unbounded.
func (l *Limiter) Width() int {
	if l.sem == nil {
		return 0
	}
	return cap(l.sem)
}
