// Package dispatch runs list commands on a fixed pool of workers fed by
// a bounded queue. Each worker processes one command to completion on a
// store bound to one exclusive connection.
package dispatch

import (
	"context"
	"log"
	"sync"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

const (
	// DefaultWorkers is the stock worker count.
	DefaultWorkers = 4
	// DefaultQueueDepth bounds how many commands may wait for a worker.
	DefaultQueueDepth = 32
)

// Pool yields stores bound to one exclusive connection per command.
type Pool interface {
	Acquire(ctx context.Context) (storage.Store, func(), error)
}

// Command is one unit of work. Execute runs to completion on a single
// worker. Composite commands call the logic of other commands directly;
// resubmitting through the queue from inside a worker can deadlock a
// saturated pool against itself.
type Command[R any] interface {
	Name() string
	Execute(ctx context.Context, rc reqctx.Context) (R, error)
}

type result struct {
	value any
	err   error
}

type task struct {
	ctx  context.Context
	data reqctx.Data
	name string
	run  func(ctx context.Context, rc reqctx.Context) (any, error)
	done chan result
}

// Dispatcher owns the command queue and its workers.
type Dispatcher struct {
	pool    Pool
	workers int
	queue   chan task

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// New builds a dispatcher. Call Start to launch the workers.
func New(pool Pool, workers, queueDepth int) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}
	return &Dispatcher{
		pool:    pool,
		workers: workers,
		queue:   make(chan task, queueDepth),
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Stop rejects further submissions, lets the workers drain everything
// already queued, and returns once the last command finished.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for t := range d.queue {
		t.done <- d.process(t)
	}
}

func (d *Dispatcher) process(t task) result {
	store, release, err := d.pool.Acquire(t.ctx)
	if err != nil {
		log.Printf("command %s: no database connection: %v", t.name, err)
		return result{err: apperrors.Wrap(apperrors.CodeDatabaseUnavailable, "no database connection available", err)}
	}
	defer release()

	value, err := t.run(t.ctx, t.data.Bind(store))
	return result{value: value, err: err}
}

// enqueue hands the task to a worker. The read lock spans the queue
// send so Stop cannot close the channel under an in-flight submission.
func (d *Dispatcher) enqueue(ctx context.Context, t task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return apperrors.New(apperrors.CodeDispatchUnavailable, "dispatcher is stopped")
	}

	select {
	case d.queue <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues one command for the given caller and waits for its
// typed result. A canceled context abandons the wait; the command may
// still run to completion on its worker.
func Submit[R any](ctx context.Context, d *Dispatcher, data reqctx.Data, cmd Command[R]) (R, error) {
	var zero R
	t := task{
		ctx:  ctx,
		data: data,
		name: cmd.Name(),
		run: func(ctx context.Context, rc reqctx.Context) (any, error) {
			return cmd.Execute(ctx, rc)
		},
		done: make(chan result, 1),
	}

	if err := d.enqueue(ctx, t); err != nil {
		return zero, err
	}

	select {
	case r := <-t.done:
		if r.err != nil {
			return zero, r.err
		}
		value, ok := r.value.(R)
		if !ok {
			return zero, apperrors.New(apperrors.CodeUnknown, "command produced a result of the wrong type")
		}
		return value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
