package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/gamemaster/gamemaster-mcp-server/internal/invoker"
	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
	"github.com/gamemaster/gamemaster-mcp-server/internal/registry"
	"github.com/gamemaster/gamemaster-mcp-server/internal/storage/sqlite"
	"github.com/gamemaster/gamemaster-mcp-server/internal/tools"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "test")
}

func newHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "sessions.db"), "mcp_sessions", "characters")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	reg := registry.New(tools.DiceRollLegacy(), tools.DiceRoll())
	inv := invoker.New(reg, testLogger())
	return NewHandler(reg, inv, store, testLogger())
}

func rpcBody(t *testing.T, env protocol.ResponseEnvelope) protocol.RPCResponse {
	t.Helper()
	resp, ok := env.Body.(protocol.RPCResponse)
	if !ok {
		t.Fatalf("body type = %T, want RPCResponse", env.Body)
	}
	return resp
}

func TestInitializeMintsSession(t *testing.T) {
	h := newHandler(t)

	env := h.Handle(context.Background(), "", protocol.RPCRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	if env.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.StatusCode)
	}
	id := env.Headers[protocol.SessionHeader]
	if id == "" {
		t.Fatal("expected session header on initialize response")
	}

	// The minted session is immediately usable.
	next := h.Handle(context.Background(), id, protocol.RPCRequest{JSONRPC: "2.0", ID: 2, Method: "ping"})
	if next.StatusCode != http.StatusOK {
		t.Fatalf("ping with session status = %d, want 200", next.StatusCode)
	}
	if resp := rpcBody(t, next); resp.Error != nil {
		t.Fatalf("ping returned error: %+v", resp.Error)
	}
}

func TestUnknownSessionReturns404(t *testing.T) {
	h := newHandler(t)

	env := h.Handle(context.Background(), "no-such-session", protocol.RPCRequest{JSONRPC: "2.0", ID: 1, Method: "ping"})
	if env.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", env.StatusCode)
	}
	body := env.Body.(protocol.ErrorBody)
	if !strings.Contains(body.Error, "no-such-session") {
		t.Fatalf("error %q does not name the session", body.Error)
	}
}

func TestUnknownMethod(t *testing.T) {
	h := newHandler(t)

	env := h.Handle(context.Background(), "", protocol.RPCRequest{JSONRPC: "2.0", ID: 1, Method: "resources/list"})
	resp := rpcBody(t, env)
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("error = %+v, want -32601", resp.Error)
	}
}

func TestInvalidRequestShapes(t *testing.T) {
	h := newHandler(t)

	env := h.Handle(context.Background(), "", protocol.RPCRequest{})
	if resp := rpcBody(t, env); resp.Error == nil || resp.Error.Code != -32600 {
		t.Fatalf("empty method error = %+v, want -32600", rpcBody(t, env).Error)
	}

	env = h.Handle(context.Background(), "", protocol.RPCRequest{JSONRPC: "1.0", Method: "ping"})
	if resp := rpcBody(t, env); resp.Error == nil || resp.Error.Code != -32600 {
		t.Fatalf("bad version error = %+v, want -32600", resp.Error)
	}
}

func TestToolsListIncludesDiceOverride(t *testing.T) {
	h := newHandler(t)

	env := h.Handle(context.Background(), "", protocol.RPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	resp := rpcBody(t, env)
	list, ok := resp.Result.(protocol.ListResult)
	if !ok {
		t.Fatalf("result type = %T, want ListResult", resp.Result)
	}
	found := false
	for _, desc := range list.Tools {
		if desc.Name == registry.DiceToolName {
			found = true
			if _, ok := desc.InputSchema.Properties["dice_notation"]; !ok {
				t.Fatal("diceRoll listing missing dice_notation override")
			}
		}
	}
	if !found {
		t.Fatal("diceRoll missing from tools/list")
	}
}

func TestToolsCallDelegatesToInvoker(t *testing.T) {
	h := newHandler(t)

	params, _ := json.Marshal(protocol.CallParams{
		Name: "dice_roll",
		Args: json.RawMessage(`{"dice_notation":"2d6+3"}`),
	})
	env := h.Handle(context.Background(), "", protocol.RPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	resp := rpcBody(t, env)
	if resp.Error != nil {
		t.Fatalf("tools/call returned error: %+v", resp.Error)
	}
	result, ok := resp.Result.(protocol.ResultBody)
	if !ok {
		t.Fatalf("result type = %T, want ResultBody", resp.Result)
	}
	if !strings.HasPrefix(result.Result.(string), "Rolled 2d6+3:") {
		t.Fatalf("unexpected roll result: %v", result.Result)
	}
}

func TestToolsCallUnknownTool(t *testing.T) {
	h := newHandler(t)

	params, _ := json.Marshal(protocol.CallParams{Name: "doesNotExist"})
	env := h.Handle(context.Background(), "", protocol.RPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	resp := rpcBody(t, env)
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("error = %+v, want -32601", resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "doesNotExist") {
		t.Fatalf("error %q does not name the tool", resp.Error.Message)
	}
}

func TestToolsCallMissingName(t *testing.T) {
	h := newHandler(t)

	env := h.Handle(context.Background(), "", protocol.RPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`{}`)})
	resp := rpcBody(t, env)
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("error = %+v, want -32602", resp.Error)
	}
}
