package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestTraceFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mtrace")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test trace: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func sampleEvents(base time.Time) []Event {
	return []Event{
		{Timestamp: base, RunID: "r1", Settle: 1, Round: 1, Category: CategoryPush,
			Push: &PushEvent{Kind: SignalKindState, Source: "const1/0", Target: "inv1/0", Count: 1, Changed: true}},
		{Timestamp: base.Add(time.Second), RunID: "r1", Settle: 1, Round: 1, Category: CategoryInvoke, Device: "inv1",
			Invoke: &InvokeEvent{Class: "logic/inverter", Targets: 1}},
		{Timestamp: base.Add(2 * time.Second), RunID: "r1", Settle: 1, Category: CategorySettle,
			SettleInfo: &SettleEvent{Rounds: 2, Pushes: 1, Invocations: 1}},
		{Timestamp: base.Add(3 * time.Second), RunID: "r2", Settle: 1, Category: CategoryError,
			Error: &ErrorEventData{Message: "round limit", Armed: []string{"a", "b"}}},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents(time.Now()))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 4 {
		t.Fatalf("got %d events, want 4", len(read))
	}
	if read[0].Category != CategoryPush || read[3].Category != CategoryError {
		t.Error("events out of order")
	}
	if len(read[3].Error.Armed) != 2 {
		t.Errorf("Armed: got %v", read[3].Error.Armed)
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	path := createTestTraceFile(t, sampleEvents(base))

	invoke := CategoryInvoke
	one := uint64(1)
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"run", Filter{RunID: "r2"}, 1},
		{"category", Filter{Category: &invoke}, 1},
		{"device matches invocations and pushes", Filter{Device: "inv1"}, 2},
		{"settle", Filter{Settle: &one}, 4},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{RunID: "r1", Device: "const1"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			if got := len(readAll(t, reader)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.mtrace")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEndpointDevice(t *testing.T) {
	if got := endpointDevice("board/a/3"); got != "board/a" {
		t.Errorf("got %q", got)
	}
	if got := endpointDevice("plain"); got != "plain" {
		t.Errorf("got %q", got)
	}
}
