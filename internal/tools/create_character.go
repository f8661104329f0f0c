package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
	"github.com/gamemaster/gamemaster-mcp-server/internal/storage/sqlite"
)

// CharacterStore is the persistence surface the character tools depend on.
type CharacterStore interface {
	CreateCharacter(ctx context.Context, c sqlite.Character) error
	GetCharacterByName(ctx context.Context, name string) (sqlite.Character, error)
}

// createCharacterTool persists a new character record.
type createCharacterTool struct {
	store CharacterStore
}

// CreateCharacter constructs the create_character tool. A nil store means the
// character table was not configured.
func CreateCharacter(store CharacterStore) *createCharacterTool {
	return &createCharacterTool{store: store}
}

func (t *createCharacterTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "create_character",
		Description: "Create a new player character and persist it.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"name":            {Type: "string", Description: "Character name, unique per table"},
				"race":            {Type: "string", Description: "Character race, e.g. elf"},
				"character_class": {Type: "string", Description: "Character class, e.g. wizard"},
				"level":           {Type: "integer", Description: "Starting level, defaults to 1"},
			},
			Required: []string{"name", "race", "character_class"},
		},
	}
}

func (t *createCharacterTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if t.store == nil {
		return "[ERROR] Character table configuration missing.", nil
	}

	name := strings.TrimSpace(stringArg(args, "name"))
	if name == "" {
		return "[ERROR] Character name is required.", nil
	}

	c := sqlite.Character{
		ID:        uuid.NewString(),
		Name:      name,
		Race:      stringArg(args, "race"),
		Class:     stringArg(args, "character_class"),
		Level:     intArg(args, "level", 1),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := t.store.CreateCharacter(ctx, c); err != nil {
		if errors.Is(err, sqlite.ErrDuplicateName) {
			return fmt.Sprintf("[ERROR] Character '%s' already exists.", name), nil
		}
		return fmt.Sprintf("[ERROR] Failed to create character: %v", err), nil
	}

	return fmt.Sprintf("Created character '%s' (id %s): level %d %s %s", c.Name, c.ID, c.Level, c.Race, c.Class), nil
}
