/*
Package outbox
File: outbox.go
Description:
    A small write-behind queue in front of persistence.

    Game operations never wait on SQLite. Sessions enqueue writes here and a
    single worker drains them in order, retrying failures with exponential
    backoff until the retry window closes. A job that still fails is logged
    and dropped; in-memory state is not rolled back.
*/

package outbox

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Job is one persistence write.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Stats counts what the worker has done so far.
type Stats struct {
	Done    int64 `json:"done"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"` // Rejected because the queue was full or closed
}

// Outbox queues jobs for a single background worker.
type Outbox struct {
	jobs       chan Job
	maxElapsed time.Duration
	initial    time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	done    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// New creates an outbox holding up to size pending jobs. Each job is retried
// for at most maxElapsed.
func New(size int, maxElapsed time.Duration) *Outbox {
	if size <= 0 {
		size = 1
	}
	return &Outbox{
		jobs:       make(chan Job, size),
		maxElapsed: maxElapsed,
		initial:    200 * time.Millisecond,
	}
}

// Start runs the worker until the outbox is closed. ctx bounds every retry
// loop; cancelling it makes pending jobs fail fast.
func (o *Outbox) Start(ctx context.Context) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for job := range o.jobs {
			o.run(ctx, job)
		}
	}()
}

// Enqueue adds a job without blocking. It reports false when the job was
// dropped because the queue is full or closed.
func (o *Outbox) Enqueue(name string, run func(ctx context.Context) error) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		log.Printf("OUTBOX: closed, dropping %s", name)
		return false
	}
	select {
	case o.jobs <- Job{Name: name, Run: run}:
		return true
	default:
		o.dropped.Add(1)
		log.Printf("OUTBOX: queue full, dropping %s", name)
		return false
	}
}

// Close stops accepting jobs and waits for the queue to drain.
func (o *Outbox) Close() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.jobs)
	}
	o.mu.Unlock()
	o.wg.Wait()
}

// Stats returns a snapshot of the worker counters.
func (o *Outbox) Stats() Stats {
	return Stats{Done: o.done.Load(), Failed: o.failed.Load(), Dropped: o.dropped.Load()}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func (o *Outbox) run(ctx context.Context, job Job) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.initial

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		return struct{}{}, job.Run(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(o.maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Printf("OUTBOX: %s retry in %s: %v", job.Name, next, err)
		}),
	)
	if err != nil {
		o.failed.Add(1)
		log.Printf("OUTBOX: %s failed after %d attempts: %v", job.Name, attempts, err)
		return
	}
	o.done.Add(1)
}
