package auth

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Job is a unit of background work handed off the request path.
type Job func(ctx context.Context)

// Dispatcher runs fire-and-forget jobs on a small worker pool. Enqueue never
// blocks the caller; Close drains the queue and any overflow jobs before
// returning so shutdown does not lose pending verification tokens or emails.
type Dispatcher struct {
	jobs   chan Job
	logger Logger
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	unpooled sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given queue size and worker
// count and starts its workers.
func NewDispatcher(queueSize, workers int, logger Logger) *Dispatcher {
	if logger == nil {
		logger = defLogger{}
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	d := &Dispatcher{
		jobs:   make(chan Job, queueSize),
		logger: logger,
		group:  group,
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		group.Go(d.work)
	}

	return d
}

func (d *Dispatcher) work() error {
	for job := range d.jobs {
		d.run(d.ctx, job)
	}
	return nil
}

func (d *Dispatcher) run(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("background job panicked", "panic", r)
		}
	}()
	job(ctx)
}

// Enqueue hands a job to the pool. When the queue is full the job runs on
// its own goroutine, tracked so Close still waits for it. After Close the
// job runs inline on the caller so nothing is silently dropped.
func (d *Dispatcher) Enqueue(job Job) {
	if job == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dispatcher closed, running job inline")
		d.run(context.Background(), job)
		return
	}

	select {
	case d.jobs <- job:
		d.mu.Unlock()
	default:
		d.unpooled.Add(1)
		d.mu.Unlock()
		d.logger.Warn("dispatch queue full, running job unpooled")
		go func() {
			defer d.unpooled.Done()
			d.run(d.ctx, job)
		}()
	}
}

// Close stops accepting pooled work and waits for queued and unpooled jobs
// to finish. Safe to call more than once.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	err := d.group.Wait()
	d.unpooled.Wait()
	d.cancel()
	return err
}
