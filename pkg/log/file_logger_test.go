package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mtrace")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("trace file was not created")
	}
	if logger.Path() != path {
		t.Errorf("Path: got %q, want %q", logger.Path(), path)
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mtrace")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		RunID:     "run-123",
		Settle:    1,
		Category:  CategoryInvoke,
		Device:    "inv1",
		Invoke:    &InvokeEvent{Class: "logic/inverter", Targets: 1},
	}
	logger.Log(event)
	if logger.Written() != 1 {
		t.Errorf("Written: got %d, want 1", logger.Written())
	}
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace file: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.RunID != event.RunID {
		t.Errorf("RunID: got %q, want %q", decoded.RunID, event.RunID)
	}
	if decoded.Invoke == nil || decoded.Invoke.Class != "logic/inverter" {
		t.Errorf("Invoke: got %+v", decoded.Invoke)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mtrace")

	for i := range 2 {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), Settle: uint64(i + 1), Category: CategorySettle})
		logger.Close()
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	for want := uint64(1); want <= 2; want++ {
		event, err := reader.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if event.Settle != want {
			t.Errorf("Settle: got %d, want %d", event.Settle, want)
		}
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "test.mtrace"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	// Logging after close is ignored.
	logger.Log(Event{Category: CategorySettle})
	if logger.Written() != 0 {
		t.Errorf("Written after close: got %d, want 0", logger.Written())
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "test.mtrace"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				logger.Log(Event{Settle: uint64(g*50 + i), Category: CategoryPush})
			}
		}()
	}
	wg.Wait()

	if logger.Written() != 400 {
		t.Errorf("Written: got %d, want 400", logger.Written())
	}
}
