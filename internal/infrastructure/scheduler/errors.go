package scheduler

import "errors"

// Submit and config errors
var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	ErrJobQueueFull        = errors.New("scheduler: task queue full")
	ErrJobPanicked         = errors.New("scheduler: task panicked")
	ErrInvalidConfig       = errors.New("scheduler: invalid configuration")
)
