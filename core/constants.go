package core

// PollResult classifies one poll tick.
type PollResult uint8

const (
	// NoRequest means no pending connection or no usable work this tick.
	NoRequest PollResult = iota
	// ConnectionTimedOut means a connection was accepted but sent nothing
	// before the read timeout elapsed.
	ConnectionTimedOut
	// RequestHandledNoResponse means a handler ran and deliberately
	// produced no response.
	RequestHandledNoResponse
	// RequestHandledResponseSent means a response was written.
	RequestHandledResponseSent
)

func (r PollResult) String() string {
	switch r {
	case NoRequest:
		return "no-request"
	case ConnectionTimedOut:
		return "connection-timed-out"
	case RequestHandledNoResponse:
		return "request-handled-no-response"
	case RequestHandledResponseSent:
		return "request-handled-response-sent"
	default:
		return "unknown"
	}
}
