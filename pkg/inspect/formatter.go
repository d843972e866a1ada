package inspect

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes role and value type information
	ShowMetadata bool

	// ShowIDs includes numeric IDs alongside names
	ShowIDs bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata: true,
		ShowIDs:      false,
		IndentWidth:  2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a signal value for display. Large integers get digit
// grouping; floats are trimmed to significant digits.
func (f *Formatter) FormatValue(value any) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"

	case string:
		return fmt.Sprintf("%q", v)

	case int64:
		return humanize.Comma(v)

	case int32:
		return humanize.Comma(int64(v))

	case int:
		return humanize.Comma(int64(v))

	case uint64:
		return humanize.Comma(int64(v))

	case uint32:
		return humanize.Comma(int64(v))

	case uint16:
		return humanize.Comma(int64(v))

	case uint8:
		return humanize.Comma(int64(v))

	case float64:
		return humanize.FtoaWithDigits(v, 4)

	case float32:
		return humanize.FtoaWithDigits(float64(v), 4)

	case []byte:
		return fmt.Sprintf("0x%x", v)

	case fmt.Stringer:
		return v.String()

	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatRole formats a signal role for display.
func FormatRole(r signal.Role) string {
	switch r {
	case signal.RoleStateSource:
		return "state out"
	case signal.RoleStateTarget:
		return "state in"
	case signal.RoleEventSource:
		return "event out"
	case signal.RoleEventTarget:
		return "event in"
	default:
		return fmt.Sprintf("role(%d)", r)
	}
}

// SignalRow represents a formatted signal for display.
type SignalRow struct {
	ID    signal.ID
	Name  string
	Value string
	Role  string
	Type  string
}

// FormatSignalTable formats a list of signals as a table.
func (f *Formatter) FormatSignalTable(rows []SignalRow) string {
	if len(rows) == 0 {
		return "  (no signals)\n"
	}

	var sb strings.Builder
	for _, row := range rows {
		if f.ShowIDs {
			sb.WriteString(fmt.Sprintf("  [%d] %s", row.ID, row.Name))
		} else {
			sb.WriteString("  " + row.Name)
		}
		if row.Value != "" {
			sb.WriteString(" = " + row.Value)
		}
		if f.ShowMetadata && row.Type != "" {
			sb.WriteString(fmt.Sprintf(" (%s, %s)", row.Role, row.Type))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
