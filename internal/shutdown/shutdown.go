package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/glefebvre/moviedesk/internal/logger"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Handler ends a session cleanly: it cancels the session context on
// SIGINT/SIGTERM and runs the registered hooks in reverse order.
type Handler struct {
	mu             sync.Mutex
	hooks          []hook
	timeout        time.Duration
	log            *logger.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	isShuttingDown bool
	stopSignals    func()
}

// New creates a handler whose hooks must all finish within timeout
func New(timeout time.Duration) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		timeout: timeout,
		log:     logger.AppLogger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds a named hook. Hooks run in reverse order of registration.
func (h *Handler) Register(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// Context is cancelled once a signal arrives or Shutdown starts
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Listen cancels the session context on SIGINT or SIGTERM
func (h *Handler) Listen() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopSignals != nil {
		return
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	h.stopSignals = func() {
		signal.Stop(signals)
		close(done)
	}

	go func() {
		select {
		case sig := <-signals:
			h.log.Info(fmt.Sprintf("received %s, ending session", sig))
			h.cancel()
		case <-done:
		}
	}()
}

// Shutdown cancels the session context and runs every hook, newest first.
// It returns the first hook error, or the context error when the timeout
// expires. Later calls do nothing.
func (h *Handler) Shutdown() error {
	h.mu.Lock()
	if h.isShuttingDown {
		h.mu.Unlock()
		return nil
	}
	h.isShuttingDown = true
	hooks := append([]hook(nil), h.hooks...)
	stop := h.stopSignals
	h.mu.Unlock()

	h.cancel()
	if stop != nil {
		stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var first error
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i].fn(ctx); err != nil {
				h.log.Error("shutdown hook failed: "+hooks[i].name, err)
				if first == nil {
					first = err
				}
			}
		}
		done <- first
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsShuttingDown returns true once Shutdown has been called
func (h *Handler) IsShuttingDown() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isShuttingDown
}

// Trigger ends the session as if a signal had arrived
func (h *Handler) Trigger() {
	h.cancel()
}
