// Package collab holds clients for the external collaborators invoked by
// tool implementations. Timeout and retry policy live here, not in the core.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Agent invokes the generative lore/rules agent.
type Agent interface {
	InvokeAgent(ctx context.Context, sessionID, inputText string) (string, error)
}

// HTTPAgent calls an agent-runtime HTTP endpoint.
type HTTPAgent struct {
	baseURL string
	agentID string
	aliasID string
	region  string
	client  *http.Client
}

// NewHTTPAgent constructs an agent client against the configured runtime.
func NewHTTPAgent(baseURL, agentID, aliasID, region string) *HTTPAgent {
	return &HTTPAgent{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		agentID: agentID,
		aliasID: aliasID,
		region:  region,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type agentRequest struct {
	AgentID      string `json:"agentId"`
	AgentAliasID string `json:"agentAliasId"`
	SessionID    string `json:"sessionId"`
	InputText    string `json:"inputText"`
	Region       string `json:"region,omitempty"`
}

// agentResponse accepts both single-completion and chunked reply shapes.
type agentResponse struct {
	Completion string   `json:"completion"`
	Chunks     []string `json:"chunks"`
}

// InvokeAgent posts the query and concatenates the returned text.
func (a *HTTPAgent) InvokeAgent(ctx context.Context, sessionID, inputText string) (string, error) {
	body, err := json.Marshal(agentRequest{
		AgentID:      a.agentID,
		AgentAliasID: a.aliasID,
		SessionID:    sessionID,
		InputText:    inputText,
		Region:       a.region,
	})
	if err != nil {
		return "", fmt.Errorf("encode agent request: %w", err)
	}

	url := a.baseURL + "/invoke-agent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("agent returned status %d", resp.StatusCode)
	}

	var parsed agentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode agent response: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(parsed.Completion)
	for _, chunk := range parsed.Chunks {
		sb.WriteString(chunk)
	}
	return sb.String(), nil
}
