// Package task gives goroutines a task identity carried in their context,
// plus the cooperative yield and sleep primitives the compositor's cross-task
// calls are built on.
package task

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ErrKilled is the cancellation cause of a task stopped with Kill.
var ErrKilled = errors.New("task killed")

// ID is a process-unique task identity.
type ID uint64

var nextID atomic.Uint64

type ctxKey struct{}

// Task is a cooperatively scheduled unit of work.
type Task struct {
	id     ID
	name   string
	ctx    context.Context
	cancel context.CancelCauseFunc

	once sync.Once
	done chan struct{}
	err  error
}

// New registers a task identity for the calling goroutine. The returned
// context carries the task and is cancelled by Kill; Finish must be called
// when the goroutine stops running as this task.
func New(parent context.Context, name string) (*Task, context.Context) {
	ctx, cancel := context.WithCancelCause(parent)
	t := &Task{
		id:     ID(nextID.Add(1)),
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	t.ctx = context.WithValue(ctx, ctxKey{}, t)
	return t, t.ctx
}

// Spawn runs fn on a new goroutine as a new task. A panic in fn ends the task
// with an error instead of crashing the process.
func Spawn(parent context.Context, name string, fn func(ctx context.Context) error) *Task {
	t, ctx := New(parent, name)
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task %s panicked: %v", name, r)
			}
			t.Finish(err)
		}()
		err = fn(ctx)
	}()
	return t
}

// FromContext returns the task carried by ctx, or nil.
func FromContext(ctx context.Context) *Task {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(ctxKey{}).(*Task)
	return t
}

func (t *Task) ID() ID                   { return t.id }
func (t *Task) Name() string             { return t.name }
func (t *Task) Context() context.Context { return t.ctx }

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Alive reports whether the task has not finished yet.
func (t *Task) Alive() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Err returns the task's result once it has finished.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Kill cancels the task's context. The task stops at its next yield, sleep
// or context check.
func (t *Task) Kill() {
	t.cancel(ErrKilled)
}

// Finish marks the task as finished and releases its context.
func (t *Task) Finish(err error) {
	t.once.Do(func() {
		t.err = err
		t.cancel(context.Canceled)
		close(t.done)
	})
}

func (t *Task) String() string {
	return fmt.Sprintf("%s#%d", t.name, t.id)
}

// Yield gives other goroutines a chance to run. It returns the context's
// cancellation cause once ctx is done, so spin-waits end when their task is
// killed.
func Yield(ctx context.Context) error {
	runtime.Gosched()
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}
	return nil
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return Yield(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}
