package shutdown

import (
	"context"
	"errors"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	h := New(5 * time.Second)

	if h.timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", h.timeout)
	}
	if h.IsShuttingDown() {
		t.Error("expected IsShuttingDown to be false")
	}
	if h.Context().Err() != nil {
		t.Error("expected a live session context")
	}
}

func TestShutdown_ReverseOrder(t *testing.T) {
	h := New(5 * time.Second)

	var order []string
	for _, name := range []string{"logger", "metrics", "session"} {
		name := name
		h.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := h.Shutdown(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := []string{"session", "metrics", "logger"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d hooks to run, got %d", len(expected), len(order))
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("hook %d: expected %s, got %s", i, expected[i], order[i])
		}
	}
	if h.Context().Err() == nil {
		t.Error("expected session context to be cancelled")
	}
}

func TestShutdown_FirstErrorWins(t *testing.T) {
	h := New(5 * time.Second)

	first := errors.New("first")
	var ran int32
	h.Register("a", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return errors.New("second")
	})
	h.Register("b", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return first
	})

	if err := h.Shutdown(); err != first {
		t.Errorf("expected error %v, got %v", first, err)
	}
	if atomic.LoadInt32(&ran) != 2 {
		t.Errorf("expected every hook to run, got %d", ran)
	}
}

func TestShutdown_Timeout(t *testing.T) {
	h := New(50 * time.Millisecond)

	h.Register("slow", func(ctx context.Context) error {
		time.Sleep(300 * time.Millisecond)
		return nil
	})

	if err := h.Shutdown(); err != context.DeadlineExceeded {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	h := New(5 * time.Second)

	var counter int32
	h.Register("count", func(ctx context.Context) error {
		atomic.AddInt32(&counter, 1)
		return nil
	})

	h.Shutdown()
	h.Shutdown()

	if atomic.LoadInt32(&counter) != 1 {
		t.Errorf("expected hook to run once, got %d", counter)
	}
}

func TestTrigger(t *testing.T) {
	h := New(time.Second)
	h.Trigger()

	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("expected session context to be cancelled")
	}
	if h.IsShuttingDown() {
		t.Error("trigger alone should not run the hooks")
	}
}

func TestListen_Signal(t *testing.T) {
	h := New(time.Second)
	h.Listen()
	defer h.Shutdown()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("failed to send signal: %v", err)
	}

	select {
	case <-h.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected SIGTERM to cancel the session context")
	}
}
