package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// MessageOut is the output of a message source.
const MessageOut signal.ID = 0

// Message emits text messages on request.
type Message struct {
	device.Base
	out *signal.EventSource[string]
}

// NewMessage creates a message source.
func NewMessage() *Message {
	return &Message{out: signal.NewEventSource[string]()}
}

func (m *Message) Class() string { return ClassMessage }

func (m *Message) Signals() signal.Map {
	return signal.Map{MessageOut: m.out}
}

func (m *Message) SignalNames() map[signal.ID]string {
	return map[signal.ID]string{MessageOut: "out"}
}

func (m *Message) TargetsChanged() {}

func (m *Message) Run(ctx context.Context) device.Exited {
	return device.Idle(ctx)
}

// Send emits each message in order.
func (m *Message) Send(messages ...string) {
	m.NotifySources(m.out.PushMany(messages...))
}

// HandleRequest implements device.RequestHandler.
//
//	send <text...>  emits the arguments joined by spaces
func (m *Message) HandleRequest(_ context.Context, req device.Request) device.Response {
	switch req.Method {
	case "send":
		if len(req.Args) == 0 {
			return device.Fail(device.StatusInvalidParameter, "send needs a message")
		}
		m.Send(strings.Join(req.Args, " "))
		return device.OK(nil)
	default:
		return device.Fail(device.StatusInvalidMethod, fmt.Sprintf("unknown method %q", req.Method))
	}
}
