package ssestream

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parser incrementally decodes a byte stream into Events per the WHATWG SSE
// grammar. Feed may be called with any chunking of the underlying stream -
// a single byte at a time or the whole stream at once produces the same
// sequence of events.
type Parser struct {
	buf              []byte // unterminated partial line, carried across Feed calls
	eventType        string
	dataLines        []string
	id               string
	lastEventID      string
	haveData         bool
	haveEvent        bool
	pendingRetry     int
	havePendingRetry bool
}

// NewParser creates an empty Parser.
func NewParser() *Parser {
	return &Parser{}
}

// LastEventID returns the most recently seen event id, persisting across
// events that did not set one themselves.
func (p *Parser) LastEventID() string {
	return p.lastEventID
}

// Feed appends chunk to the internal buffer and returns every Event that
// becomes dispatchable as a result (i.e. every blank line boundary found).
func (p *Parser) Feed(chunk []byte) []Event {
	p.buf = append(p.buf, chunk...)
	var events []Event
	for {
		line, rest, ok := splitLine(p.buf)
		if !ok {
			break
		}
		p.buf = rest
		if ev, dispatched := p.consumeLine(line); dispatched {
			events = append(events, ev)
		}
	}
	return events
}

// Pending reports whether a trailing, not-yet-terminated line is sitting in
// the overflow buffer. Per the EOF semantics in the spec this partial line
// is deliberately NOT force-dispatched - an unterminated line is incomplete,
// not a short event - it is simply preserved for the next Feed call, which
// is already what happens since Feed never discards unconsumed bytes.
func (p *Parser) Pending() bool {
	return len(p.buf) > 0
}

// splitLine extracts the first complete line from buf, recognizing LF, CR,
// and CRLF as terminators (a lone CR terminates; a following LF is consumed
// as part of the same terminator). Returns ok=false when buf holds no
// complete terminated line yet.
func splitLine(buf []byte) (line []byte, rest []byte, ok bool) {
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '\n':
			return buf[:i], buf[i+1:], true
		case '\r':
			if i+1 < len(buf) {
				if buf[i+1] == '\n' {
					return buf[:i], buf[i+2:], true
				}
				return buf[:i], buf[i+1:], true
			}
			// Could still be a CRLF pair split across Feed calls; wait for
			// more data before deciding.
			return nil, buf, false
		}
	}
	return nil, buf, false
}

func (p *Parser) consumeLine(line []byte) (Event, bool) {
	if !utf8.Valid(line) {
		return Event{}, false
	}
	text := string(line)

	if text == "" {
		return p.dispatch()
	}
	if strings.HasPrefix(text, ":") {
		return Event{}, false // comment line
	}

	var field, value string
	if idx := strings.IndexByte(text, ':'); idx >= 0 {
		field = text[:idx]
		value = text[idx+1:]
		if strings.HasPrefix(value, " ") {
			value = value[1:]
		}
	} else {
		field = text
		value = ""
	}

	switch field {
	case "event":
		p.eventType = value
		p.haveEvent = true
	case "data":
		p.dataLines = append(p.dataLines, value)
		p.haveData = true
	case "id":
		if !strings.ContainsRune(value, 0) {
			p.id = value
		}
	case "retry":
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			// recorded but only surfaced on dispatch via the pending event's
			// fields, consistent with "retry sets reconnection delay" being a
			// per-event observation rather than a persistent parser field.
			p.pendingRetry = ms
			p.havePendingRetry = true
		}
	}
	return Event{}, false
}

// dispatch is invoked on every blank line. Per WHATWG, an event with an
// empty data buffer is not dispatched; lastEventID is updated from its id
// regardless, and all per-event state (including a pending retry) resets.
func (p *Parser) dispatch() (Event, bool) {
	if p.id != "" {
		p.lastEventID = p.id
	}

	shouldFire := p.haveData
	var ev Event
	if shouldFire {
		eventType := p.eventType
		if eventType == "" {
			eventType = "message"
		}
		ev = Event{
			Type:     eventType,
			Data:     strings.Join(p.dataLines, "\n"),
			ID:       p.id,
			RetryMS:  p.pendingRetry,
			HasRetry: p.havePendingRetry,
		}
	}

	p.eventType = ""
	p.dataLines = nil
	p.id = ""
	p.haveData = false
	p.haveEvent = false
	p.pendingRetry = 0
	p.havePendingRetry = false

	return ev, shouldFire
}
