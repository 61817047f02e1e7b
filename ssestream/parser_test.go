package ssestream

import "testing"

func TestParser_BasicEvent(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("event: update\ndata: hello\ndata: world\nid: e1\n\n"))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Type != "update" || ev.Data != "hello\nworld" || ev.ID != "e1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if p.LastEventID() != "e1" {
		t.Fatalf("expected lastEventID e1, got %q", p.LastEventID())
	}
}

func TestParser_DefaultEventType(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("data: hi\n\n"))
	if len(events) != 1 || events[0].Type != "message" {
		t.Fatalf("expected default message type, got %+v", events)
	}
}

func TestParser_CommentLinesIgnored(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte(": this is a comment\ndata: hi\n\n"))
	if len(events) != 1 || events[0].Data != "hi" {
		t.Fatalf("unexpected: %+v", events)
	}
}

func TestParser_CRAndCRLFLineEndings(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("data: a\r\ndata: b\r\r\n"))
	if len(events) != 1 || events[0].Data != "a\nb" {
		t.Fatalf("unexpected: %+v", events)
	}
}

func TestParser_ChunkBoundaryInvariant(t *testing.T) {
	whole := "event: msg\ndata: line1\ndata: line2\nid: abc\n\ndata: second\n\n"
	pWhole := NewParser()
	wholeEvents := pWhole.Feed([]byte(whole))

	pChunked := NewParser()
	var chunkedEvents []Event
	for i := 0; i < len(whole); i++ {
		chunkedEvents = append(chunkedEvents, pChunked.Feed([]byte{whole[i]})...)
	}

	if len(wholeEvents) != len(chunkedEvents) {
		t.Fatalf("event count mismatch: whole=%d chunked=%d", len(wholeEvents), len(chunkedEvents))
	}
	for i := range wholeEvents {
		if wholeEvents[i] != chunkedEvents[i] {
			t.Fatalf("event %d mismatch: whole=%+v chunked=%+v", i, wholeEvents[i], chunkedEvents[i])
		}
	}
}

func TestParser_IdWithNulIgnored(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("id: ok1\n\n"))
	events := p.Feed([]byte("id: bad\x00id\ndata: x\n\n"))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID != "" {
		t.Fatalf("expected id to be rejected due to NUL, got %q", events[0].ID)
	}
	if p.LastEventID() != "ok1" {
		t.Fatalf("expected lastEventID to remain ok1, got %q", p.LastEventID())
	}
}

func TestParser_RetryField(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("retry: 5000\ndata: x\n\n"))
	if len(events) != 1 || !events[0].HasRetry || events[0].RetryMS != 5000 {
		t.Fatalf("unexpected: %+v", events)
	}
}

func TestParser_PendingTrailingPartialLine(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("data: partial"))
	if len(events) != 0 {
		t.Fatalf("expected no events yet, got %+v", events)
	}
	if !p.Pending() {
		t.Fatalf("expected Pending() to report a buffered partial line")
	}
	// Feeding the rest later completes the line and the event.
	events = p.Feed([]byte(" line\n\n"))
	if len(events) != 1 || events[0].Data != "partial line" {
		t.Fatalf("unexpected completion: %+v", events)
	}
	if p.Pending() {
		t.Fatalf("expected no pending data after full dispatch")
	}
}
