package usecase

import (
	"context"
	"fmt"

	"DisruptionMonitor/internal/ports"
)

// PoolExecutor runs CPU-bound parse jobs on a fixed set of worker
// goroutines so a heavy parse never stalls a coordinator's control flow or
// its siblings.
type PoolExecutor struct {
	jobs chan *poolJob
	stop chan struct{}
}

type poolJob struct {
	run  func()
	done chan struct{}
	err  error
}

var _ ports.ParseExecutor = (*PoolExecutor)(nil)

// NewPoolExecutor starts workers goroutines; workers below 1 are clamped.
func NewPoolExecutor(workers int) *PoolExecutor {
	if workers < 1 {
		workers = 1
	}

	e := &PoolExecutor{
		jobs: make(chan *poolJob),
		stop: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go e.worker()
	}
	return e
}

func (e *PoolExecutor) worker() {
	for {
		select {
		case job := <-e.jobs:
			runJob(job)
		case <-e.stop:
			return
		}
	}
}

// runJob executes one job. A panicking job must not take the worker (and
// with it the process) down; the panic comes back to the submitter as an
// error instead.
func runJob(job *poolJob) {
	defer close(job.done)
	defer func() {
		if r := recover(); r != nil {
			job.err = fmt.Errorf("job panic: %v", r)
		}
	}()
	job.run()
}

// Do submits a job and waits for completion. If the context ends before a
// worker accepts the job, the job never runs; if it ends while the job is
// running, the job finishes but its output is abandoned by the caller. A
// job that panics is reported as an error.
func (e *PoolExecutor) Do(ctx context.Context, job func()) error {
	j := &poolJob{run: job, done: make(chan struct{})}

	select {
	case e.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stop:
		return context.Canceled
	}

	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the workers. In-flight jobs finish; queued submissions fail.
func (e *PoolExecutor) Close() {
	close(e.stop)
}
