// Package session implements the generic session-oriented protocol handler
// behind the gateway's fallback path. Requests use a JSON-RPC method/params
// envelope with the session identifier carried in a dedicated header.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gamemaster/gamemaster-mcp-server/internal/invoker"
	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
	"github.com/gamemaster/gamemaster-mcp-server/internal/registry"
	"github.com/gamemaster/gamemaster-mcp-server/internal/storage/sqlite"
	"github.com/gamemaster/gamemaster-mcp-server/internal/version"
)

// SessionStore persists protocol sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, id string, now time.Time) error
	TouchSession(ctx context.Context, id string, now time.Time) error
}

// ServerName identifies this server during initialize.
const ServerName = "gamemaster-mcp-server"

// Handler serves the method/params protocol over the shared registry.
type Handler struct {
	registry *registry.Registry
	invoker  *invoker.Invoker
	store    SessionStore
	logger   *logrus.Entry
}

// NewHandler wires the registry, invoker, and session store.
func NewHandler(reg *registry.Registry, inv *invoker.Invoker, store SessionStore, logger *logrus.Entry) *Handler {
	return &Handler{registry: reg, invoker: inv, store: store, logger: logger}
}

// Handle processes one protocol request and returns one envelope.
//
// initialize mints a new session and returns its id in the session header.
// Other methods touch the session's last-used time when a header is present;
// an unknown session id yields a 404 envelope.
func (h *Handler) Handle(ctx context.Context, sessionID string, req protocol.RPCRequest) protocol.ResponseEnvelope {
	if req.Method == "" {
		return rpcEnvelope(protocol.RPCResponse{
			JSONRPC: "2.0",
			ID:      normalizeID(req.ID),
			Error:   &protocol.RPCError{Code: -32600, Message: "invalid request"},
		}, nil)
	}
	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		return rpcEnvelope(protocol.RPCResponse{
			JSONRPC: "2.0",
			ID:      normalizeID(req.ID),
			Error:   &protocol.RPCError{Code: -32600, Message: "invalid jsonrpc version"},
		}, nil)
	}

	if req.Method == "initialize" {
		return h.initialize(ctx, req)
	}

	if sessionID != "" && h.store != nil {
		err := h.store.TouchSession(ctx, sessionID, time.Now())
		if errors.Is(err, sqlite.ErrSessionNotFound) {
			return protocol.ResponseEnvelope{
				StatusCode: http.StatusNotFound,
				Body:       protocol.ErrorBody{Error: fmt.Sprintf("Session '%s' not found", sessionID)},
			}
		}
		if err != nil {
			h.logger.Warnf("touch session %s: %v", sessionID, err)
		}
	}

	switch req.Method {
	case "ping":
		return rpcEnvelope(protocol.RPCResponse{JSONRPC: "2.0", ID: normalizeID(req.ID), Result: map[string]any{}}, nil)
	case "tools/list":
		return rpcEnvelope(protocol.RPCResponse{
			JSONRPC: "2.0",
			ID:      normalizeID(req.ID),
			Result:  protocol.ListResult{Tools: h.registry.List()},
		}, nil)
	case "tools/call":
		return h.callTool(ctx, req)
	default:
		return rpcEnvelope(protocol.RPCResponse{
			JSONRPC: "2.0",
			ID:      normalizeID(req.ID),
			Error:   &protocol.RPCError{Code: -32601, Message: "method not found"},
		}, nil)
	}
}

func (h *Handler) initialize(ctx context.Context, req protocol.RPCRequest) protocol.ResponseEnvelope {
	id := uuid.NewString()
	if h.store != nil {
		if err := h.store.CreateSession(ctx, id, time.Now()); err != nil {
			h.logger.Errorf("create session: %v", err)
			return rpcEnvelope(protocol.RPCResponse{
				JSONRPC: "2.0",
				ID:      normalizeID(req.ID),
				Error:   &protocol.RPCError{Code: -32603, Message: "failed to create session"},
			}, nil)
		}
	}
	h.logger.WithField("session", id).Info("session initialized")

	return rpcEnvelope(protocol.RPCResponse{
		JSONRPC: "2.0",
		ID:      normalizeID(req.ID),
		Result: map[string]any{
			"protocolVersion": protocol.ProtocolVersion,
			"serverInfo": map[string]string{
				"name":    ServerName,
				"version": version.Get().Version,
			},
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
		},
	}, map[string]string{protocol.SessionHeader: id})
}

func (h *Handler) callTool(ctx context.Context, req protocol.RPCRequest) protocol.ResponseEnvelope {
	var params protocol.CallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return rpcEnvelope(protocol.RPCResponse{
				JSONRPC: "2.0",
				ID:      normalizeID(req.ID),
				Error:   &protocol.RPCError{Code: -32602, Message: "invalid params"},
			}, nil)
		}
	}
	if params.Name == "" {
		return rpcEnvelope(protocol.RPCResponse{
			JSONRPC: "2.0",
			ID:      normalizeID(req.ID),
			Error:   &protocol.RPCError{Code: -32602, Message: "tool name required"},
		}, nil)
	}

	env := h.invoker.Invoke(ctx, params.Name, params.Args)
	resp := protocol.RPCResponse{JSONRPC: "2.0", ID: normalizeID(req.ID)}
	switch env.StatusCode {
	case http.StatusOK:
		resp.Result = env.Body
	case http.StatusNotFound:
		resp.Error = &protocol.RPCError{Code: -32601, Message: errorText(env.Body)}
	default:
		resp.Error = &protocol.RPCError{Code: -32603, Message: errorText(env.Body)}
	}
	return rpcEnvelope(resp, nil)
}

// rpcEnvelope wraps a JSON-RPC response in a 200 envelope.
func rpcEnvelope(resp protocol.RPCResponse, headers map[string]string) protocol.ResponseEnvelope {
	return protocol.ResponseEnvelope{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       resp,
	}
}

func errorText(body any) string {
	if eb, ok := body.(protocol.ErrorBody); ok {
		return eb.Error
	}
	return fmt.Sprintf("%v", body)
}

func normalizeID(id any) any {
	if id == nil {
		return "0"
	}
	switch v := id.(type) {
	case string, float64, int, int32, int64, uint32, uint64:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
