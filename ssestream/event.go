// Package ssestream implements an incremental parser for the WHATWG
// Server-Sent Events wire format, used by the Streamable-HTTP transport for
// both its GET stream and SSE-typed POST responses so neither has to assume
// a particular chunking of the underlying byte stream.
package ssestream

// Event is a single dispatched server-sent event.
type Event struct {
	// Type is the event's type, defaulting to "message" when the stream
	// never sends an explicit "event:" field.
	Type string
	// Data is the event payload, with multi-line "data:" fields joined by LF.
	Data string
	// ID is the event id, when present. Once set it persists as LastEventID
	// across subsequent events that omit their own id.
	ID string
	// RetryMS is the reconnection delay requested by the server, when the
	// "retry:" field held a valid non-negative integer.
	RetryMS  int
	HasRetry bool
}
