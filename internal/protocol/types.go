package protocol

import "encoding/json"

// Action names for control requests.
const (
	ActionPing      = "ping"
	ActionListTools = "listTools"
	ActionCallTool  = "callTool"
)

// ProtocolVersionHeader carries the gateway protocol version on ping responses.
const ProtocolVersionHeader = "MCP-Protocol-Version"

// ProtocolVersion is the version advertised by the gateway.
const ProtocolVersion = "2024-11-05"

// SessionHeader carries the session identifier on generic protocol requests.
const SessionHeader = "Mcp-Session-Id"

// ControlRequest is the action form of an inbound request.
type ControlRequest struct {
	Action    string          `json:"action"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ResponseEnvelope is the single response produced for every inbound request.
type ResponseEnvelope struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       any               `json:"body,omitempty"`
}

// ErrorBody is the body payload for failed tool calls.
type ErrorBody struct {
	Error string `json:"error"`
}

// ResultBody wraps a successful tool return value.
type ResultBody struct {
	Result any `json:"result"`
}

// ToolDescriptor describes a tool available from the gateway.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema *JSONSchema `json:"inputSchema,omitempty"`
}

// JSONSchema is a minimal subset to describe tool input shapes.
type JSONSchema struct {
	Type                 string                `json:"type,omitempty"`
	Properties           map[string]JSONSchema `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	Enum                 []string              `json:"enum,omitempty"`
	Description          string                `json:"description,omitempty"`
	Minimum              *int                  `json:"minimum,omitempty"`
	AdditionalProperties any                   `json:"additionalProperties,omitempty"`
}

// ListResult is the body payload for listTools.
type ListResult struct {
	Tools []ToolDescriptor `json:"tools"`
}

// RPCRequest represents a minimal JSON-RPC 2.0 request for the generic path.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// RPCResponse models a JSON-RPC 2.0 response.
type RPCResponse struct {
	JSONRPC string    `json:"jsonrpc,omitempty"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError holds JSON-RPC error data.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// CallParams represents parameters for tools/call on the generic path.
type CallParams struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"arguments,omitempty"`
}
