package base

import (
	"context"
	"errors"
	"fmt"
	"github.com/viant/mcpcore"
)

// Handler represents a default handler
type Handler struct{}

func (h *Handler) Serve(_ context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = request.Jsonrpc
	anError := jsonrpc.NewMethodNotFound(request.Id, errors.New(fmt.Sprintf("method %v not found", request.Method)), nil)
	response.Error = &anError.Error
}

func (h *Handler) OnNotification(_ context.Context, _ *jsonrpc.Notification) {
	//ignore
}
