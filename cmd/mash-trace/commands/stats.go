package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mash-protocol/mash-logic/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	FileSize         uint64
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Runs             map[string]*RunSummary
	Invocations      map[string]int
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// RunSummary holds statistics for a single run.
type RunSummary struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Settles    int
	Rounds     int
	MaxRounds  int
	Pushes     int
	Slowest    time.Duration
	TotalSpent time.Duration
}

// Collect reads the whole trace file and aggregates it.
func Collect(path string) (*Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		FileSize:         uint64(info.Size()),
		EventsByCategory: make(map[log.Category]int),
		Runs:             make(map[string]*RunSummary),
		Invocations:      make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		run, ok := stats.Runs[event.RunID]
		if !ok {
			run = &RunSummary{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
			stats.Runs[event.RunID] = run
		}
		if event.Timestamp.After(run.LastSeen) {
			run.LastSeen = event.Timestamp
		}

		switch {
		case event.SettleInfo != nil:
			s := event.SettleInfo
			run.Settles++
			run.Rounds += s.Rounds
			run.Pushes += s.Pushes
			run.TotalSpent += s.Duration
			run.MaxRounds = max(run.MaxRounds, s.Rounds)
			run.Slowest = max(run.Slowest, s.Duration)
		case event.Invoke != nil:
			stats.Invocations[event.Device]++
		case event.Error != nil:
			stats.Errors++
		}
	}

	return stats, nil
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Exchange Trace Statistics ===")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "File Size:  %s\n", humanize.Bytes(stats.FileSize))
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total Events: %s\n", humanize.Comma(int64(stats.TotalEvents)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategorySettle, log.CategoryPush, log.CategoryInvoke, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %s\n", cat.String()+":", humanize.Comma(int64(count)))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Runs: %d\n", len(stats.Runs))
	type runInfo struct {
		id    string
		stats *RunSummary
	}
	runs := make([]runInfo, 0, len(stats.Runs))
	for id, rs := range stats.Runs {
		runs = append(runs, runInfo{id, rs})
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].stats.FirstSeen.Before(runs[j].stats.FirstSeen)
	})
	for _, r := range runs {
		fmt.Fprintf(w, "  [%s] %s settles, %s rounds (max %d), %s pushes\n",
			shortenRunID(r.id),
			humanize.Comma(int64(r.stats.Settles)),
			humanize.Comma(int64(r.stats.Rounds)),
			r.stats.MaxRounds,
			humanize.Comma(int64(r.stats.Pushes)))
		if r.stats.Settles > 0 {
			avg := r.stats.TotalSpent / time.Duration(r.stats.Settles)
			fmt.Fprintf(w, "           settle avg %s, slowest %s\n", formatDuration(avg), formatDuration(r.stats.Slowest))
		}
	}

	if len(stats.Invocations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Invocations by Device:")
		names := make([]string, 0, len(stats.Invocations))
		for name := range stats.Invocations {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-16s %s\n", name+":", humanize.Comma(int64(stats.Invocations[name])))
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
