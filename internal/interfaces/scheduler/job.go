package scheduler

import "context"

// Job is a unit of work run by the worker pool.
type Job interface {
	// Execute runs the job. Implementations must honor ctx cancellation.
	Execute(ctx context.Context) error

	// Target identifies what the job works on, for logs and span attributes.
	Target() string

	Description() string
}

// JobProvider produces the batch of jobs for one scheduled run.
type JobProvider func(ctx context.Context) ([]Job, error)
