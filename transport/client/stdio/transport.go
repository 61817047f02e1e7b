package stdio

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/viant/mcpcore/corerr"
)

// Transport writes framed JSON-RPC messages to a child process's stdin.
// Unlike the teacher's gosh-runner-backed Transport, this one owns the raw
// io.WriteCloser directly so it can enforce the newline-framing invariant
// from spec §4.D itself rather than delegating to a shell runner.
type Transport struct {
	stdin io.WriteCloser
	sync.Mutex
}

// SendData writes data verbatim to the child's stdin. data is expected to
// be newline-terminated by the caller (base.Client.sendRequest/sendResponse
// appends a trailing '\n'); any '\n' that is not the final byte is rejected
// per the "outbound messages containing embedded \n are rejected" rule.
func (t *Transport) SendData(ctx context.Context, data []byte) error {
	t.Lock()
	defer t.Unlock()
	if t.stdin == nil {
		return corerr.New(corerr.KindNotConnected, "stdio", "transport is not initialized")
	}
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 && idx != len(data)-1 {
		return corerr.New(corerr.KindEmbeddedNewlines, "stdio", "message contains embedded newlines")
	}
	if _, err := t.stdin.Write(data); err != nil {
		return corerr.Wrap(corerr.KindTransportIO, "stdio", "failed to write to child stdin", err)
	}
	return nil
}

func (t *Transport) closeStdin() error {
	t.Lock()
	defer t.Unlock()
	if t.stdin == nil {
		return nil
	}
	err := t.stdin.Close()
	t.stdin = nil
	return err
}
