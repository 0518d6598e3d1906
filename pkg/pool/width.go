// Package pool provides concurrency control for transform work: the width
// policy deciding how much parallelism a run gets, a semaphore limiter
// bounding in-flight tasks, and the transformer implementations work is
// dispatched to (a fixed-width worker pool or an in-process fallback).
package pool

import "runtime"

// Parallelism is the user-facing parallelism setting before resolution.
// The zero value means "use the default".
type Parallelism struct {
	// Disabled forces in-process execution regardless of Workers.
	Disabled bool

	// Workers caps the worker count when positive. Zero means "as many
	// as the host allows".
	Workers int
}

// AvailableWidth resolves a parallelism setting against a CPU count.
//
// One CPU is always left for the orchestrator itself, so the result is at
// most numCPU-1. A resolved width of zero or less means no pool: tasks run
// in-process.
func AvailableWidth(p Parallelism, numCPU int) int {
	if p.Disabled {
		return 0
	}
	max := numCPU - 1
	if p.Workers > 0 && p.Workers < max {
		return p.Workers
	}
	return max
}

// PoolWidth bounds the available width by the number of tasks: spawning
// more workers than tasks only wastes startup cost.
func PoolWidth(taskCount, available int) int {
	if taskCount < available {
		return taskCount
	}
	return available
}

// DefaultWidth is AvailableWidth against the host CPU count.
func DefaultWidth(p Parallelism) int {
	return AvailableWidth(p, runtime.NumCPU())
}
