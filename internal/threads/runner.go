package threads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/smazurov/capturehost/internal/logging"
)

// Runner errors.
var (
	ErrStopped    = errors.New("runner stopped")
	ErrNotStarted = errors.New("runner not started")
	ErrQueueFull  = errors.New("runner queue full")
)

const defaultQueueSize = 256

// Task is a unit of work executed on a runner's thread.
type Task func(ctx context.Context)

type queuedTask struct {
	ctx context.Context
	fn  Task
}

// Runner executes posted tasks one at a time on a dedicated goroutine.
type Runner struct {
	id      ID
	tasks   chan queuedTask
	done    chan struct{}
	mu      sync.RWMutex
	started bool
	stopped bool
	logger  *slog.Logger
}

// NewRunner creates a runner for thread id. A non-positive queueSize selects
// the default.
func NewRunner(id ID, queueSize int) *Runner {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Runner{
		id:     id,
		tasks:  make(chan queuedTask, queueSize),
		done:   make(chan struct{}),
		logger: logging.GetLogger("threads").With("thread", id.String()),
	}
}

// ID returns the thread this runner represents.
func (r *Runner) ID() ID {
	return r.id
}

// Start launches the runner goroutine. Calling Start twice is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started || r.stopped {
		return
	}
	r.started = true
	go r.loop()
}

// Stop rejects new tasks, waits for queued tasks to finish, then returns.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.stopped = true
	close(r.tasks)
	if !r.started {
		close(r.done)
	}
	r.mu.Unlock()

	<-r.done
}

// PostTask queues task for execution on the runner's thread. It never
// blocks: a full queue returns ErrQueueFull, so tasks may post follow-ups to
// their own thread.
func (r *Runner) PostTask(task Task) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return ErrStopped
	}
	select {
	case r.tasks <- queuedTask{ctx: withThread(context.Background(), r.id), fn: task}:
		return nil
	default:
		return ErrQueueFull
	}
}

// postWait queues task, waiting for queue space until ctx is done. Only
// callers off the runner's thread may wait.
func (r *Runner) postWait(ctx context.Context, task Task) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return ErrStopped
	}
	if !r.started {
		return ErrNotStarted
	}
	select {
	case r.tasks <- queuedTask{ctx: withThread(ctx, r.id), fn: task}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invoke runs fn on the runner's thread and waits for its result. When ctx
// already belongs to this thread fn runs inline. A runner that was never
// started returns ErrNotStarted.
func (r *Runner) Invoke(ctx context.Context, fn func(ctx context.Context) error) error {
	if CurrentlyOn(ctx, r.id) {
		return fn(ctx)
	}

	result := make(chan error, 1)
	err := r.postWait(ctx, func(taskCtx context.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				result <- fmt.Errorf("task panicked on %s thread: %v", r.id, rec)
			}
		}()
		if taskCtx.Err() != nil {
			result <- taskCtx.Err()
			return
		}
		result <- fn(taskCtx)
	})
	if err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) loop() {
	defer close(r.done)

	r.logger.Debug("Thread started")
	for t := range r.tasks {
		r.run(t)
	}
	r.logger.Debug("Thread stopped")
}

func (r *Runner) run(t queuedTask) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Task panicked", "panic", rec)
		}
	}()
	t.fn(t.ctx)
}
