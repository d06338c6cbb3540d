package secctx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is returned by Do after Close.
var ErrPoolClosed = errors.New("secctx: pool closed")

type task struct {
	caller context.Context
	snap   Snapshot
	fn     func(ctx context.Context) error
	done   chan error
}

// Pool runs work on a fixed set of long-lived worker goroutines. Each task
// runs with the submitting caller's snapshot restored on the worker's own
// base context; once the task returns the worker pops back to the snapshot
// it held before.
type Pool struct {
	tasks  chan task
	stop   context.CancelFunc
	base   context.Context
	group  *errgroup.Group
	closed chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewPool starts size workers. size below 1 is treated as 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}

	base, stop := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(base)

	p := &Pool{
		tasks:  make(chan task),
		stop:   stop,
		base:   gctx,
		group:  g,
		closed: make(chan struct{}),
	}

	for range size {
		g.Go(p.work)
	}

	return p
}

func (p *Pool) work() error {
	for {
		select {
		case <-p.base.Done():
			return nil
		case t := <-p.tasks:
			// Push the caller's snapshot for the duration of the task. Dropping
			// ctx afterwards pops the worker back onto its own base snapshot.
			ctx, _ := Restore(p.base, t.snap)
			t.done <- runTask(ctx, t)
		}
	}
}

func runTask(ctx context.Context, t task) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(t.caller, cancel)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("secctx: task panicked: %v", r)
		}
	}()

	return t.fn(ctx)
}

// Do runs fn on a worker and waits for it. Submission blocks while every
// worker is busy; if ctx ends first, ctx.Err() is returned without running fn.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t := task{
		caller: ctx,
		snap:   Capture(ctx),
		fn:     fn,
		done:   make(chan error, 1),
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-p.closed:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- t:
	}

	// The worker always answers once it has picked the task up; fn itself
	// observes ctx cancellation.
	return <-t.done
}

// Close stops the workers and waits for in-flight tasks to finish. It is
// safe to call more than once and from several goroutines.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.stop()
		p.closeErr = p.group.Wait()
	})
	return p.closeErr
}
