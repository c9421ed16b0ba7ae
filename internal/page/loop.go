package page

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrLoopStopped is returned when work is handed to a loop that has exited.
	ErrLoopStopped = errors.New("page loop stopped")

	// ErrLoopRunning is returned by Run when the loop is already running.
	ErrLoopRunning = errors.New("page loop already running")
)

// Loop runs page work one task at a time on a single goroutine. Each task
// runs to completion before the next starts, so tasks never interleave.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	running bool
	stopped bool
	done    chan struct{}

	readyFired bool
	readyFns   []func()
}

// NewLoop creates a loop. Nothing runs until Run or RunPending is called.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues a task. It reports false if the loop has stopped.
func (l *Loop) Post(task func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// AfterFunc queues task once after d has elapsed. There is no way to cancel it.
func (l *Loop) AfterFunc(d time.Duration, task func()) {
	time.AfterFunc(d, func() {
		l.Post(task)
	})
}

// Do runs task on the loop and waits for it to finish. If the loop stops
// before the task runs, Do returns ErrLoopStopped.
func (l *Loop) Do(ctx context.Context, task func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		task()
	}) {
		return ErrLoopStopped
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case <-done:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}

// OnReady registers fn to run when the page becomes ready. Handlers
// registered after the ready event has fired never run, and OnReady
// reports false for them.
func (l *Loop) OnReady(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readyFired {
		return false
	}
	l.readyFns = append(l.readyFns, fn)
	return true
}

// FireReady queues the ready handlers. Only the first call has any effect.
func (l *Loop) FireReady() bool {
	l.mu.Lock()
	if l.readyFired {
		l.mu.Unlock()
		return false
	}
	l.readyFired = true
	fns := l.readyFns
	l.readyFns = nil
	l.mu.Unlock()

	return l.Post(func() {
		for _, fn := range fns {
			fn()
		}
	})
}

// Run processes tasks until ctx is done. Tasks still queued at that point
// are dropped.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	if l.stopped {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.stopped = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			for {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				task, ok := l.next()
				if !ok {
					break
				}
				task()
			}
		}
	}
}

// RunPending runs queued tasks on the calling goroutine until the queue is
// empty, including tasks queued by the tasks themselves. It must not be
// used while Run is active.
func (l *Loop) RunPending() int {
	n := 0
	for {
		task, ok := l.next()
		if !ok {
			return n
		}
		task()
		n++
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}
