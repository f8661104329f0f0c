package tools

import (
	"context"
	"time"

	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
)

// getTimeTool returns the current UTC time.
type getTimeTool struct {
	now func() time.Time
}

// GetTime constructs the get_time tool.
func GetTime() *getTimeTool {
	return &getTimeTool{now: time.Now}
}

func (t *getTimeTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_time",
		Description: "Get the current UTC date and time.",
		InputSchema: &protocol.JSONSchema{Type: "object"},
	}
}

func (t *getTimeTool) Call(ctx context.Context, args map[string]any) (any, error) {
	return t.now().UTC().Format("2006-01-02 15:04:05"), nil
}
