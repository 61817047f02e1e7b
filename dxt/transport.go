package dxt

import (
	"context"
	"sync"

	"github.com/viant/gosh/runner"
	"github.com/viant/mcpcore/corerr"
)

// Transport forwards JSON-RPC message data to the extension process's
// pipeline through the gosh runner's Send. Unlike
// transport/client/stdio.Transport it does not check for embedded newlines.
type Transport struct {
	client runner.Runner
	sync.Mutex
}

// SendData sends data to the running extension process's stdin pipeline.
func (t *Transport) SendData(ctx context.Context, data []byte) error {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()
	if t.client == nil {
		return corerr.New(corerr.KindTransportIO, "dxt", "transport is not initialized")
	}
	_, err := t.client.Send(ctx, data)
	if err != nil {
		return corerr.Wrap(corerr.KindTransportIO, "dxt", "failed to send data to extension process", err)
	}
	return nil
}
