package tools

import (
	"context"
	"fmt"

	"github.com/gamemaster/gamemaster-mcp-server/internal/collab"
	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
)

// askRuleExpertTool queries the generative agent for rules clarifications.
type askRuleExpertTool struct {
	agent collab.Agent
}

// AskRuleExpert constructs the ask_rule_expert tool.
func AskRuleExpert(agent collab.Agent) *askRuleExpertTool {
	return &askRuleExpertTool{agent: agent}
}

func (t *askRuleExpertTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "ask_rule_expert",
		Description: "Ask the rules expert agent how a game rule works.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"query": {Type: "string", Description: "The rules question to answer"},
			},
			Required: []string{"query"},
		},
	}
}

func (t *askRuleExpertTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if t.agent == nil {
		return "[ERROR] Rules agent configuration missing.", nil
	}
	answer, err := t.agent.InvokeAgent(ctx, agentSessionID, "Rules question: "+stringArg(args, "query"))
	if err != nil {
		return fmt.Sprintf("[ERROR] Failed to consult rules expert: %v", err), nil
	}
	if answer == "" {
		return "[ERROR] No answer returned from agent.", nil
	}
	return answer, nil
}
