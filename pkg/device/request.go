package device

import (
	"context"

	"github.com/mash-protocol/mash-logic/pkg/wake"
)

// Status is the outcome of a device request.
type Status uint8

const (
	// StatusSuccess indicates the request was applied.
	StatusSuccess Status = iota

	// StatusInvalidMethod indicates the device does not know the method.
	StatusInvalidMethod

	// StatusInvalidParameter indicates the arguments could not be used.
	StatusInvalidParameter

	// StatusUnsupported indicates the device does not handle requests.
	StatusUnsupported

	// StatusFailure indicates a device-internal failure.
	StatusFailure
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInvalidMethod:
		return "INVALID_METHOD"
	case StatusInvalidParameter:
		return "INVALID_PARAMETER"
	case StatusUnsupported:
		return "UNSUPPORTED"
	case StatusFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Request is an external command addressed to one device.
type Request struct {
	Method string
	Args   []string
}

// Response answers a Request.
type Response struct {
	Status  Status
	Message string
	Payload any
}

// OK builds a successful response.
func OK(payload any) Response {
	return Response{Status: StatusSuccess, Payload: payload}
}

// Fail builds an error response.
func Fail(status Status, message string) Response {
	return Response{Status: status, Message: message}
}

// RequestHandler is implemented by devices that accept external commands.
type RequestHandler interface {
	HandleRequest(ctx context.Context, req Request) Response
}

// ChangeStreamer is implemented by devices that publish a presentation
// summary. The returned signal fires whenever Summary may have changed.
type ChangeStreamer interface {
	ChangeStream() *wake.Signal
	Summary() any
}

// Dispatch sends req to dev if it implements RequestHandler.
func Dispatch(ctx context.Context, dev Device, req Request) Response {
	h, ok := dev.(RequestHandler)
	if !ok {
		return Fail(StatusUnsupported, "device does not handle requests")
	}
	return h.HandleRequest(ctx, req)
}
