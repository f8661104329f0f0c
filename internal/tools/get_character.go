package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
	"github.com/gamemaster/gamemaster-mcp-server/internal/storage/sqlite"
)

// getCharacterTool looks up a character record by name.
type getCharacterTool struct {
	store CharacterStore
}

// GetCharacterByName constructs the get_character_by_name tool.
func GetCharacterByName(store CharacterStore) *getCharacterTool {
	return &getCharacterTool{store: store}
}

func (t *getCharacterTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_character_by_name",
		Description: "Fetch a character record by its unique name.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"name": {Type: "string", Description: "Character name to look up"},
			},
			Required: []string{"name"},
		},
	}
}

func (t *getCharacterTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if t.store == nil {
		return "[ERROR] Character table configuration missing.", nil
	}

	name := stringArg(args, "name")
	c, err := t.store.GetCharacterByName(ctx, name)
	if errors.Is(err, sqlite.ErrCharacterNotFound) {
		return fmt.Sprintf("[ERROR] Character '%s' not found.", name), nil
	}
	if err != nil {
		return fmt.Sprintf("[ERROR] Failed to fetch character: %v", err), nil
	}

	encoded, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("[ERROR] Failed to encode character: %v", err), nil
	}
	return string(encoded), nil
}
