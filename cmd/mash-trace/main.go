// Command mash-trace is a tool for viewing and analyzing exchange trace files.
//
// Trace files are written by mash-logic when runtime.trace_file is set in
// its configuration.
//
// Usage:
//
//	mash-trace <command> [flags] <file.mtrace>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	mash-trace view run.mtrace
//
//	# View everything that touched one device
//	mash-trace view --device relays run.mtrace
//
//	# Export to JSONL
//	mash-trace export --format jsonl run.mtrace
//
//	# Keep only one run
//	mash-trace filter --run-id 5f1c2a3b-... -o one.mtrace run.mtrace
//
//	# Show statistics
//	mash-trace stats run.mtrace
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mash-protocol/mash-logic/cmd/mash-trace/commands"
)

const usage = `mash-trace - Exchange Trace Analyzer

Usage:
  mash-trace <command> [flags] <file.mtrace>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "mash-trace <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parseFile parses the flags and returns the single positional trace path.
func parseFile(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

// settleFlag returns a pointer to the settle number, or nil if unset.
func settleFlag(v int64) *uint64 {
	if v < 0 {
		return nil
	}
	s := uint64(v)
	return &s
}

func newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "mash-trace %s - %s\n\nUsage:\n  mash-trace %s [flags] <file.mtrace>\n\nFlags:\n", name, synopsis, name)
		fs.PrintDefaults()
	}
	return fs
}

func runView(args []string) {
	fs := newFlagSet("view", "View trace file in human-readable format")
	category := fs.String("category", "", "Filter by category (settle, push, invoke, error)")
	device := fs.String("device", "", "Filter by device name")
	settle := fs.Int64("settle", -1, "Filter by settle number")
	path := parseFile(fs, args)

	filter := commands.ViewFilter{Device: *device, Settle: settleFlag(*settle)}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export trace file to JSONL or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parseFile(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter trace file and write to new file")
	output := fs.String("o", "", "Output file (required)")
	runID := fs.String("run-id", "", "Filter by run ID")
	device := fs.String("device", "", "Filter by device name")
	settle := fs.Int64("settle", -1, "Filter by settle number")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	category := fs.String("category", "", "Filter by category (settle, push, invoke, error)")
	path := parseFile(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		RunID:     *runID,
		Device:    *device,
		Settle:    settleFlag(*settle),
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Category:  *category,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the trace file")
	path := parseFile(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
