// Package commands implements the mash-trace CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mash-protocol/mash-logic/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category *log.Category
	Device   string
	Settle   *uint64
}

func (f ViewFilter) toLog() log.Filter {
	return log.Filter{Category: f.Category, Device: f.Device, Settle: f.Settle}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [run:id] #settle.round CATEGORY
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [run:%s] #%d.%d %s", ts, shortenRunID(event.RunID), event.Settle, event.Round, event.Category)
	if event.Device != "" {
		fmt.Fprintf(w, " %s", event.Device)
	}
	fmt.Fprintln(w)

	switch {
	case event.SettleInfo != nil:
		formatSettleDetails(w, event.SettleInfo)
	case event.Push != nil:
		formatPushDetails(w, event.Push)
	case event.Invoke != nil:
		fmt.Fprintf(w, "  Class: %s  Targets: %d\n", event.Invoke.Class, event.Invoke.Targets)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenRunID returns the first 8 characters of the run ID.
func shortenRunID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatSettleDetails(w io.Writer, s *log.SettleEvent) {
	fmt.Fprintf(w, "  Rounds: %d  Pushes: %d  Invocations: %d  Duration: %s\n",
		s.Rounds, s.Pushes, s.Invocations, formatDuration(s.Duration))
	if s.Initial {
		fmt.Fprintln(w, "  Initial settle")
	}
}

func formatPushDetails(w io.Writer, p *log.PushEvent) {
	fmt.Fprintf(w, "  %s %s -> %s", p.Kind, p.Source, p.Target)
	if p.Kind == log.SignalKindEvent {
		fmt.Fprintf(w, " (%d events)", p.Count)
	}
	if !p.Changed {
		fmt.Fprint(w, " unchanged")
	}
	fmt.Fprintln(w)
	if p.Value != nil {
		if b, err := json.Marshal(p.Value); err == nil {
			fmt.Fprintf(w, "  Value: %s\n", b)
		}
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
	if len(e.Armed) > 0 {
		fmt.Fprintf(w, "  Armed: %s\n", strings.Join(e.Armed, ", "))
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be settle, push, invoke, or error)", s)
	}
	return c, nil
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.toLog())
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
