package dispatch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/reqctx"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
)

type fakePool struct {
	err      error
	acquired atomic.Int32
	released atomic.Int32
}

func (p *fakePool) Acquire(ctx context.Context) (storage.Store, func(), error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	p.acquired.Add(1)
	return nil, func() { p.released.Add(1) }, nil
}

type fakeCommand[R any] struct {
	name string
	fn   func(ctx context.Context, rc reqctx.Context) (R, error)
}

func (c fakeCommand[R]) Name() string {
	return c.name
}

func (c fakeCommand[R]) Execute(ctx context.Context, rc reqctx.Context) (R, error) {
	return c.fn(ctx, rc)
}

func startDispatcher(t *testing.T, pool Pool, workers int) *Dispatcher {
	t.Helper()
	d := New(pool, workers, 0)
	d.Start()
	t.Cleanup(d.Stop)
	return d
}

func TestSubmitReturnsTypedResult(t *testing.T) {
	pool := &fakePool{}
	d := startDispatcher(t, pool, 1)

	cmd := fakeCommand[int]{
		name: "answer",
		fn: func(ctx context.Context, rc reqctx.Context) (int, error) {
			return 42, nil
		},
	}

	got, err := Submit(context.Background(), d, reqctx.Internal(), cmd)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Submit() = %d, want 42", got)
	}
}

func TestSubmitReportsPoolExhaustion(t *testing.T) {
	pool := &fakePool{err: context.DeadlineExceeded}
	d := startDispatcher(t, pool, 1)

	cmd := fakeCommand[int]{
		name: "starved",
		fn: func(ctx context.Context, rc reqctx.Context) (int, error) {
			t.Error("command must not run without a connection")
			return 0, nil
		},
	}

	_, err := Submit(context.Background(), d, reqctx.Internal(), cmd)
	if got := apperrors.GetCode(err); got != apperrors.CodeDatabaseUnavailable {
		t.Errorf("Submit() error code = %v, want %v", got, apperrors.CodeDatabaseUnavailable)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	pool := &fakePool{}
	d := New(pool, 1, 0)
	d.Start()
	d.Stop()

	cmd := fakeCommand[int]{
		name: "late",
		fn: func(ctx context.Context, rc reqctx.Context) (int, error) {
			return 0, nil
		},
	}

	_, err := Submit(context.Background(), d, reqctx.Internal(), cmd)
	if got := apperrors.GetCode(err); got != apperrors.CodeDispatchUnavailable {
		t.Errorf("Submit() error code = %v, want %v", got, apperrors.CodeDispatchUnavailable)
	}
}

func TestStopDrainsQueuedCommands(t *testing.T) {
	pool := &fakePool{}
	d := New(pool, 1, 8)
	d.Start()

	started := make(chan struct{})
	gate := make(chan struct{})

	// Occupy the only worker.
	holderErr := make(chan error, 1)
	go func() {
		_, err := Submit(context.Background(), d, reqctx.Internal(), fakeCommand[int]{
			name: "holder",
			fn: func(ctx context.Context, rc reqctx.Context) (int, error) {
				close(started)
				<-gate
				return 0, nil
			},
		})
		holderErr <- err
	}()
	<-started

	// Queue two more behind it.
	var ran atomic.Int32
	queued := make([]chan result, 2)
	for i := range queued {
		done := make(chan result, 1)
		queued[i] = done
		err := d.enqueue(context.Background(), task{
			ctx:  context.Background(),
			data: reqctx.Internal(),
			name: "queued",
			run: func(ctx context.Context, rc reqctx.Context) (any, error) {
				ran.Add(1)
				return 0, nil
			},
			done: done,
		})
		if err != nil {
			t.Fatalf("enqueue() error = %v", err)
		}
	}

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a command still held the worker")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)
	<-stopped

	if err := <-holderErr; err != nil {
		t.Errorf("holder command error = %v", err)
	}
	for _, done := range queued {
		select {
		case r := <-done:
			if r.err != nil {
				t.Errorf("queued command error = %v", r.err)
			}
		default:
			t.Error("queued command was dropped during Stop")
		}
	}
	if got := ran.Load(); got != 2 {
		t.Errorf("queued commands run = %d, want 2", got)
	}
	if pool.acquired.Load() != pool.released.Load() {
		t.Errorf("connections acquired = %d, released = %d", pool.acquired.Load(), pool.released.Load())
	}
}

func TestWorkersRunInParallel(t *testing.T) {
	pool := &fakePool{}
	d := startDispatcher(t, pool, 2)

	partner := make(chan struct{})
	meet := func(ctx context.Context, rc reqctx.Context) (int, error) {
		select {
		case partner <- struct{}{}:
		case <-partner:
		case <-time.After(2 * time.Second):
			return 0, context.DeadlineExceeded
		}
		return 0, nil
	}

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := Submit(context.Background(), d, reqctx.Internal(), fakeCommand[int]{name: "meet", fn: meet})
			errs <- err
		}()
	}

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("parallel command error = %v", err)
		}
	}
}

func TestSubmitAbandonsWaitOnCancel(t *testing.T) {
	pool := &fakePool{}
	d := startDispatcher(t, pool, 1)

	release := make(chan struct{})
	started := make(chan struct{})
	blocked := fakeCommand[int]{
		name: "blocked",
		fn: func(ctx context.Context, rc reqctx.Context) (int, error) {
			close(started)
			<-release
			return 0, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := Submit(ctx, d, reqctx.Internal(), blocked)
		errs <- err
	}()

	<-started
	cancel()
	if err := <-errs; err != context.Canceled {
		t.Errorf("Submit() error = %v, want context.Canceled", err)
	}

	// Unblock the worker so Stop can drain.
	close(release)
}
