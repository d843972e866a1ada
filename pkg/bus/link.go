package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mash-protocol/mash-logic/pkg/retry"
)

// DefaultOpenTimeout bounds a single reopen attempt.
const DefaultOpenTimeout = 5 * time.Second

// State represents the link state.
type State uint8

const (
	// StateDisconnected indicates no open session.
	StateDisconnected State = iota

	// StateOpening indicates an Open call is in progress.
	StateOpening

	// StateOpen indicates an open session.
	StateOpen

	// StateReopening indicates the line was lost and the reopen loop is
	// retrying with backoff.
	StateReopening

	// StateClosed indicates the link has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateOpening:
		return "OPENING"
	case StateOpen:
		return "OPEN"
	case StateReopening:
		return "REOPENING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// LinkConfig configures a Link.
type LinkConfig struct {
	Backoff     retry.Config
	OpenTimeout time.Duration
	Logger      *slog.Logger
}

// Link owns a Port and keeps a session open on it.
type Link struct {
	mu sync.RWMutex

	port    Port
	state   State
	session Session
	backoff *retry.Backoff

	openTimeout time.Duration
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	reopenCh chan struct{}

	onStateChange func(oldState, newState State)
}

// NewLink creates a link for port. The link starts disconnected; call Open
// and Start.
func NewLink(port Port, cfg LinkConfig) *Link {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultOpenTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &Link{
		port:        port,
		state:       StateDisconnected,
		backoff:     retry.NewBackoffWithConfig(cfg.Backoff),
		openTimeout: cfg.OpenTimeout,
		logger:      cfg.Logger,
		ctx:         ctx,
		cancel:      cancel,
		reopenCh:    make(chan struct{}, 1),
	}
}

// State returns the current link state.
func (l *Link) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// IsOpen returns true if a session is open.
func (l *Link) IsOpen() bool {
	return l.State() == StateOpen
}

// Attempts returns the number of reopen attempts since the last success.
func (l *Link) Attempts() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.backoff.Attempts()
}

// Open opens a session on the port. Opening an open link is a no-op.
func (l *Link) Open(ctx context.Context) error {
	l.mu.Lock()
	switch l.state {
	case StateOpen:
		l.mu.Unlock()
		return nil
	case StateClosed:
		l.mu.Unlock()
		return ErrLinkClosed
	}
	oldState := l.state
	l.state = StateOpening
	l.mu.Unlock()
	l.notify(oldState, StateOpening)

	sess, err := l.port.Open(ctx)

	l.mu.Lock()
	if l.state == StateClosed {
		l.mu.Unlock()
		if sess != nil {
			_ = sess.Close()
		}
		return ErrLinkClosed
	}
	if err != nil {
		l.state = StateDisconnected
		l.mu.Unlock()
		l.notify(StateOpening, StateDisconnected)
		return err
	}
	l.session = sess
	l.state = StateOpen
	l.backoff.Reset()
	l.mu.Unlock()
	l.notify(StateOpening, StateOpen)
	return nil
}

// NotifyLost drops the current session and schedules a reopen.
func (l *Link) NotifyLost() {
	l.lose(nil)
}

// lose drops the session if it is failed, or the current one if failed is
// nil. A stale failure from an already replaced session is ignored.
func (l *Link) lose(failed Session) {
	l.mu.Lock()
	if l.state != StateOpen || (failed != nil && failed != l.session) {
		l.mu.Unlock()
		return
	}
	sess := l.session
	l.session = nil
	l.state = StateReopening
	l.mu.Unlock()

	if sess != nil {
		_ = sess.Close()
	}
	l.notify(StateOpen, StateReopening)
	l.logger.Warn("bus link lost, reopening")

	select {
	case l.reopenCh <- struct{}{}:
	default:
		// Already pending
	}
}

// Start starts the background reopen loop. Must be called once before
// reopening will work.
func (l *Link) Start() {
	l.wg.Add(1)
	go l.reopenLoop()
}

// Close shuts the link down and closes the session.
func (l *Link) Close() error {
	l.mu.Lock()
	if l.state == StateClosed {
		l.mu.Unlock()
		return nil
	}
	oldState := l.state
	sess := l.session
	l.session = nil
	l.state = StateClosed
	l.mu.Unlock()

	l.notify(oldState, StateClosed)
	l.cancel()
	l.wg.Wait()

	if sess != nil {
		return sess.Close()
	}
	return nil
}

// OnStateChange sets a callback for state changes.
func (l *Link) OnStateChange(fn func(oldState, newState State)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onStateChange = fn
}

// ReadInputs implements Bus.
func (l *Link) ReadInputs(ctx context.Context, addr Address) ([]bool, error) {
	sess, err := l.current()
	if err != nil {
		return nil, err
	}
	values, err := sess.ReadInputs(ctx, addr)
	l.check(sess, err)
	return values, err
}

// WriteOutputs implements Bus.
func (l *Link) WriteOutputs(ctx context.Context, addr Address, values []bool) error {
	sess, err := l.current()
	if err != nil {
		return err
	}
	err = sess.WriteOutputs(ctx, addr, values)
	l.check(sess, err)
	return err
}

func (l *Link) current() (Session, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch l.state {
	case StateOpen:
		return l.session, nil
	case StateClosed:
		return nil, ErrLinkClosed
	default:
		return nil, ErrNotOpen
	}
}

func (l *Link) check(sess Session, err error) {
	if errors.Is(err, ErrLinkLost) || errors.Is(err, ErrSessionDone) {
		l.lose(sess)
	}
}

func (l *Link) notify(oldState, newState State) {
	l.mu.RLock()
	fn := l.onStateChange
	l.mu.RUnlock()
	if fn != nil {
		fn(oldState, newState)
	}
}

func (l *Link) reopenLoop() {
	defer l.wg.Done()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.reopenCh:
			l.reopen()
		}
	}
}

func (l *Link) reopen() {
	for {
		l.mu.Lock()
		if l.state != StateReopening {
			l.mu.Unlock()
			return
		}
		delay := l.backoff.Next()
		attempt := l.backoff.Attempts()
		l.mu.Unlock()

		l.logger.Debug("bus reopen scheduled", "attempt", attempt, "delay", delay)

		select {
		case <-l.ctx.Done():
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(l.ctx, l.openTimeout)
		sess, err := l.port.Open(ctx)
		cancel()

		if err != nil {
			l.logger.Debug("bus reopen failed", "attempt", attempt, "error", err)
			continue
		}

		l.mu.Lock()
		if l.state != StateReopening {
			l.mu.Unlock()
			_ = sess.Close()
			return
		}
		l.session = sess
		l.state = StateOpen
		l.backoff.Reset()
		l.mu.Unlock()

		l.logger.Info("bus link reopened", "attempts", attempt)
		l.notify(StateReopening, StateOpen)
		return
	}
}

var _ Bus = (*Link)(nil)
