// Package gateway is the single entry point that classifies inbound requests
// and routes them to the tool invoker or the generic protocol handler.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/gamemaster/gamemaster-mcp-server/internal/invoker"
	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
	"github.com/gamemaster/gamemaster-mcp-server/internal/registry"
)

// GenericHandler is the session-oriented fallback collaborator for requests
// that carry no recognized action.
type GenericHandler interface {
	Handle(ctx context.Context, sessionID string, req protocol.RPCRequest) protocol.ResponseEnvelope
}

// Dispatcher classifies one inbound request and yields exactly one envelope.
// It holds no per-request mutable state; the registry is read-only after
// startup.
type Dispatcher struct {
	registry *registry.Registry
	invoker  *invoker.Invoker
	generic  GenericHandler
	logger   *logrus.Entry
}

// NewDispatcher wires the registry, invoker, and generic fallback.
func NewDispatcher(reg *registry.Registry, inv *invoker.Invoker, generic GenericHandler, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{registry: reg, invoker: inv, generic: generic, logger: logger}
}

// Dispatch parses the body and routes it. An absent or unparsable body and
// any body without a recognized action fall through to the generic path.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID string, body []byte) protocol.ResponseEnvelope {
	var ctrl protocol.ControlRequest
	if err := json.Unmarshal(body, &ctrl); err != nil {
		return d.dispatchGeneric(ctx, sessionID, body)
	}

	switch ctrl.Action {
	case protocol.ActionPing:
		d.logger.Debug("ping")
		return protocol.ResponseEnvelope{
			StatusCode: http.StatusNoContent,
			Headers:    map[string]string{protocol.ProtocolVersionHeader: protocol.ProtocolVersion},
		}
	case protocol.ActionListTools:
		return protocol.ResponseEnvelope{
			StatusCode: http.StatusOK,
			Body:       protocol.ListResult{Tools: d.registry.List()},
		}
	case protocol.ActionCallTool:
		return d.invoker.Invoke(ctx, ctrl.Name, ctrl.Arguments)
	default:
		return d.dispatchGeneric(ctx, sessionID, body)
	}
}

func (d *Dispatcher) dispatchGeneric(ctx context.Context, sessionID string, body []byte) protocol.ResponseEnvelope {
	var req protocol.RPCRequest
	// A body that fails to parse is handed off as an empty request; the
	// generic handler reports the protocol error.
	_ = json.Unmarshal(body, &req)
	return d.generic.Handle(ctx, sessionID, req)
}
