package tools

import (
	"context"
	"fmt"

	"github.com/gamemaster/gamemaster-mcp-server/internal/collab"
	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
)

// agentSessionID is the fixed session used for agent-backed lookups.
const agentSessionID = "mcp-session"

// retrieveLoreTool queries the generative agent for world lore.
type retrieveLoreTool struct {
	agent collab.Agent
}

// RetrieveLore constructs the retrieve_lore tool. A nil agent means the
// agent collaborator was not configured.
func RetrieveLore(agent collab.Agent) *retrieveLoreTool {
	return &retrieveLoreTool{agent: agent}
}

func (t *retrieveLoreTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "retrieve_lore",
		Description: "Retrieve world lore from the game-master agent based on the user's query.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"query": {Type: "string", Description: "The user's lore question or search string"},
			},
			Required: []string{"query"},
		},
	}
}

func (t *retrieveLoreTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if t.agent == nil {
		return "[ERROR] Lore agent configuration missing.", nil
	}
	lore, err := t.agent.InvokeAgent(ctx, agentSessionID, stringArg(args, "query"))
	if err != nil {
		return fmt.Sprintf("[ERROR] Failed to retrieve lore: %v", err), nil
	}
	if lore == "" {
		return "[ERROR] No lore returned from agent.", nil
	}
	return lore, nil
}
