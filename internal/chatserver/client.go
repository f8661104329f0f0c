package chatserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
)

// GatewayClient speaks the action envelope to the tool gateway over HTTP.
type GatewayClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGatewayClient builds a client with a sane timeout.
func NewGatewayClient(baseURL string) *GatewayClient {
	trimmed := strings.TrimSuffix(baseURL, "/")
	return &GatewayClient{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *GatewayClient) post(ctx context.Context, payload any) (*http.Response, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mcp", bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gateway: %w", err)
	}
	return resp, nil
}

// Ping verifies the gateway is reachable and returns its protocol version.
func (c *GatewayClient) Ping(ctx context.Context) (string, error) {
	resp, err := c.post(ctx, protocol.ControlRequest{Action: protocol.ActionPing})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return resp.Header.Get(protocol.ProtocolVersionHeader), nil
}

// ListTools fetches the advertised tool catalog.
func (c *GatewayClient) ListTools(ctx context.Context) ([]protocol.ToolDescriptor, error) {
	resp, err := c.post(ctx, protocol.ControlRequest{Action: protocol.ActionListTools})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var result protocol.ListResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode list result: %w", err)
	}
	return result.Tools, nil
}

// CallTool invokes a tool and renders its result as text. Gateway-level
// failures (unknown tool, execution fault) come back as errors carrying the
// gateway's message.
func (c *GatewayClient) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode arguments: %w", err)
	}

	resp, err := c.post(ctx, protocol.ControlRequest{
		Action:    protocol.ActionCallTool,
		Name:      name,
		Arguments: rawArgs,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody protocol.ErrorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			return "", fmt.Errorf("gateway status %d: %s", resp.StatusCode, errBody.Error)
		}
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var body struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode call result: %w", err)
	}
	return renderResult(body.Result), nil
}

// renderResult flattens a tool return value into readable text.
func renderResult(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
