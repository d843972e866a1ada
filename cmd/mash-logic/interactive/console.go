// Package interactive provides the interactive command-line interface
// for mash-logic.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"

	"github.com/mash-protocol/mash-logic/pkg/bus"
	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/inspect"
	"github.com/mash-protocol/mash-logic/pkg/runtime"
)

// DefaultWatchTimeout bounds how long watch waits for one change.
const DefaultWatchTimeout = 30 * time.Second

// Console handles interactive mode for mash-logic.
type Console struct {
	rt        *runtime.Runtime
	inspector *inspect.Inspector
	formatter *inspect.Formatter
	out       io.Writer
	rl        *readline.Instance
	started   time.Time

	// WatchTimeout bounds how long watch waits for one change.
	WatchTimeout time.Duration
}

// New creates a console that writes to out and reads nothing by itself;
// lines are fed through Exec.
func New(out io.Writer) *Console {
	return &Console{
		formatter:    inspect.NewFormatter(),
		out:          out,
		started:      time.Now(),
		WatchTimeout: DefaultWatchTimeout,
	}
}

// NewReadline creates a console reading from the terminal. historyFile may
// be empty.
func NewReadline(historyFile string) (*Console, error) {
	c := New(nil)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "logic> ",
		HistoryFile:     historyFile,
		AutoComplete:    c.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	c.rl = rl
	c.out = rl.Stdout()
	return c, nil
}

// Attach binds the console to a built runtime. It must be called before
// Run or Exec.
func (c *Console) Attach(rt *runtime.Runtime) {
	c.rt = rt
	c.inspector = rt.Inspector()
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	if c.rl != nil {
		return c.rl.Stdout()
	}
	return c.out
}

// Run starts the interactive command loop. It calls cancel when the user
// quits.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if !c.Exec(ctx, line) {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Exec runs one command line. It returns false if the line asked to quit.
func (c *Console) Exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "list", "ls":
		fmt.Fprint(c.out, c.inspector.FormatDevices(c.inspector.Devices(), c.formatter))

	case "show", "s":
		c.cmdShow(args)

	case "read", "r":
		c.cmdRead(args)

	case "request", "req":
		c.cmdRequest(ctx, args)

	case "watch", "w":
		c.cmdWatch(ctx, args)

	case "stats":
		c.cmdStats()

	case "bus":
		c.cmdBus(args)

	case "quit", "exit", "q":
		return false

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
mash-logic Commands:
  Inspection:
    list                      - List devices
    show <device>             - Show a device's signals and values
    read <device>/<signal>    - Read a state source value
    watch <device> [count]    - Wait for changes of a device and print them
    stats                     - Show exchange and bus statistics

  Control:
    request <device> <method> [args...] - Send a request to a device

  Simulated Bus:
    bus show [addr]           - Show board channels
    bus set <addr> <bits>     - Set input channels, e.g. bus set 1 0110
    bus drop                  - Simulate losing the line

  General:
    help                      - Show this help
    quit                      - Exit

  Signals can be named or numbered: relays/out0 or relays/0`)
}

func (c *Console) cmdShow(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: show <device>")
		return
	}
	info, err := c.inspector.InspectDevice(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(c.out, c.inspector.FormatDevice(info, c.formatter))
}

func (c *Console) cmdRead(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: read <device>/<signal>")
		return
	}
	path, err := inspect.ParsePath(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid path: %v\n", err)
		return
	}
	sig, err := c.inspector.ReadSignal(path)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%s = %s\n", path, c.formatter.FormatValue(sig.Value))
}

func (c *Console) cmdRequest(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: request <device> <method> [args...]")
		return
	}
	resp, err := c.inspector.Request(ctx, args[0], device.Request{Method: args[1], Args: args[2:]})
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if resp.Status != device.StatusSuccess {
		fmt.Fprintf(c.out, "%s: %s\n", resp.Status, resp.Message)
		return
	}
	if resp.Payload == nil {
		fmt.Fprintln(c.out, "OK")
		return
	}
	fmt.Fprintf(c.out, "OK %s\n", c.formatPayload(resp.Payload))
}

func (c *Console) formatPayload(v any) string {
	switch v.(type) {
	case bool, string, int64, float64, nil:
		return c.formatter.FormatValue(v)
	default:
		return fmt.Sprintf("%+v", v)
	}
}

func (c *Console) cmdWatch(ctx context.Context, args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: watch <device> [count]")
		return
	}
	count := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			fmt.Fprintf(c.out, "Invalid count: %s\n", args[1])
			return
		}
		count = n
	}

	for i := 0; i < count; i++ {
		wctx, cancel := context.WithTimeout(ctx, c.WatchTimeout)
		summary, err := c.inspector.WaitChange(wctx, args[0])
		cancel()
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "[%s] %s %s\n", time.Now().Format("15:04:05.000"), args[0], c.formatPayload(summary))
	}
}

func (c *Console) cmdStats() {
	st := c.rt.Exchanger().Stats()
	fmt.Fprintf(c.out, "Run:         %s (up %s)\n", c.rt.RunID(), humanize.RelTime(c.started, time.Now(), "", ""))
	fmt.Fprintf(c.out, "Devices:     %d\n", c.rt.Set().Len())
	fmt.Fprintf(c.out, "Connections: %d\n", c.rt.Running().Len())
	fmt.Fprintf(c.out, "Settles:     %s\n", humanize.Comma(int64(st.Settles)))
	fmt.Fprintf(c.out, "Rounds:      %s\n", humanize.Comma(int64(st.Rounds)))
	fmt.Fprintf(c.out, "Pushes:      %s\n", humanize.Comma(int64(st.Pushes)))
	fmt.Fprintf(c.out, "Invocations: %s\n", humanize.Comma(int64(st.Invocations)))

	if link := c.rt.Link(); link != nil {
		fmt.Fprintf(c.out, "Bus:         %s", link.State())
		if n := link.Attempts(); n > 0 {
			fmt.Fprintf(c.out, " (%d reopen attempts)", n)
		}
		fmt.Fprintln(c.out)
	}
	if sim := c.rt.Simulated(); sim != nil {
		fmt.Fprintf(c.out, "Bus txns:    %s\n", humanize.Comma(int64(sim.Transactions())))
	}
}

func (c *Console) cmdBus(args []string) {
	sim := c.rt.Simulated()
	if sim == nil {
		fmt.Fprintln(c.out, "No simulated bus configured")
		return
	}
	if len(args) == 0 {
		args = []string{"show"}
	}

	switch args[0] {
	case "show":
		addrs := sim.Addresses()
		if len(args) > 1 {
			addr, err := parseAddress(args[1])
			if err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
				return
			}
			addrs = []bus.Address{addr}
		}
		for _, addr := range addrs {
			in, err := sim.Inputs(addr)
			if err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
				return
			}
			out, _ := sim.Outputs(addr)
			fmt.Fprintf(c.out, "board %s  in: %-16s out: %s\n", addr, formatBits(in), formatBits(out))
		}

	case "set":
		if len(args) != 3 {
			fmt.Fprintln(c.out, "Usage: bus set <addr> <bits>")
			return
		}
		addr, err := parseAddress(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		bits, err := parseBits(args[2])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		if err := sim.SetInputs(addr, bits); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "board %s inputs = %s\n", addr, formatBits(bits))

	case "drop":
		sim.Drop()
		fmt.Fprintln(c.out, "Line dropped")

	default:
		fmt.Fprintf(c.out, "Unknown bus command: %s\n", args[0])
	}
}

func (c *Console) completer() *readline.PrefixCompleter {
	devices := readline.PcItemDynamic(func(string) []string {
		if c.rt == nil {
			return nil
		}
		var names []string
		for _, e := range c.rt.Set().Entries() {
			names = append(names, e.Name)
		}
		return names
	})
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("list"),
		readline.PcItem("show", devices),
		readline.PcItem("read", devices),
		readline.PcItem("request", devices),
		readline.PcItem("watch", devices),
		readline.PcItem("stats"),
		readline.PcItem("bus",
			readline.PcItem("show"),
			readline.PcItem("set"),
			readline.PcItem("drop"),
		),
		readline.PcItem("quit"),
	)
}

// parseAddress accepts decimal or 0x-prefixed hex.
func parseAddress(s string) (bus.Address, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid board address: %s", s)
	}
	return bus.Address(n), nil
}

// parseBits parses a string of 0 and 1 characters, first channel first.
func parseBits(s string) ([]bool, error) {
	bits := make([]bool, 0, len(s))
	for _, r := range s {
		switch r {
		case '0':
			bits = append(bits, false)
		case '1':
			bits = append(bits, true)
		default:
			return nil, fmt.Errorf("invalid bits: %s (use 0 and 1)", s)
		}
	}
	return bits, nil
}

func formatBits(bits []bool) string {
	if len(bits) == 0 {
		return "-"
	}
	var sb strings.Builder
	for _, b := range bits {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
