package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mash-protocol/mash-logic/pkg/metrics"
)

// DefaultShutdownTimeout is used when RunnerConfig.ShutdownTimeout is zero.
const DefaultShutdownTimeout = 5 * time.Second

// ErrShutdownTimeout is matched by *ShutdownError.
var ErrShutdownTimeout = errors.New("device shutdown timed out")

// ShutdownError names the tasks that had not returned when the shutdown
// timeout expired.
type ShutdownError struct {
	Timeout time.Duration
	Pending []string
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("%s after %s: %s", ErrShutdownTimeout, e.Timeout, strings.Join(e.Pending, ", "))
}

// Unwrap lets errors.Is match ErrShutdownTimeout.
func (e *ShutdownError) Unwrap() error {
	return ErrShutdownTimeout
}

// Task is a long-lived function run next to the device tasks, typically
// the exchanger. A non-nil error is fatal and cancels every device.
type Task func(ctx context.Context) (Exited, error)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// ShutdownTimeout bounds how long Run waits for tasks after
	// cancellation.
	ShutdownTimeout time.Duration

	// Logger is used for operational logging.
	Logger *slog.Logger

	// Metrics records task starts and exits. Nil disables metrics.
	Metrics *metrics.Runtime
}

// Runner runs every device task of a Set plus a supervising task.
type Runner struct {
	set  *Set
	task Task
	cfg  RunnerConfig

	mu      sync.Mutex
	running map[string]bool
}

// NewRunner creates a Runner. task may be nil.
func NewRunner(set *Set, task Task, cfg RunnerConfig) *Runner {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		set:     set,
		task:    task,
		cfg:     cfg,
		running: make(map[string]bool),
	}
}

// Run starts all tasks and blocks until ctx is cancelled or the supervising
// task fails, then waits for every task to return. If some task does not
// return within the shutdown timeout, Run returns a *ShutdownError; the
// stuck goroutines are abandoned.
func (r *Runner) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, entry := range r.set.Entries() {
		r.started(entry.Name)
		r.cfg.Metrics.DeviceStarted(entry.Device.Class())
		g.Go(func() error {
			entry.Device.Run(gctx)
			r.exited(entry.Name)
			r.cfg.Metrics.DeviceExited(entry.Device.Class())
			if gctx.Err() == nil {
				r.cfg.Logger.Warn("device task exited before shutdown", "device", entry.String())
			}
			return nil
		})
	}

	if r.task != nil {
		const name = "exchange"
		r.started(name)
		g.Go(func() error {
			defer r.exited(name)
			_, err := r.task(gctx)
			return err
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-gctx.Done():
	}

	r.cfg.Logger.Info("shutting down", "timeout", r.cfg.ShutdownTimeout)
	timer := time.NewTimer(r.cfg.ShutdownTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		err := &ShutdownError{Timeout: r.cfg.ShutdownTimeout, Pending: r.Pending()}
		r.cfg.Logger.Error("shutdown incomplete", "pending", err.Pending)
		return err
	}
}

// Pending returns the names of tasks that have not returned, sorted.
func (r *Runner) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.running))
	for name := range r.running {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (r *Runner) started(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running[name] = true
}

func (r *Runner) exited(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, name)
}
