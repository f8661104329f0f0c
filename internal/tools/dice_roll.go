package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/gamemaster/gamemaster-mcp-server/internal/dice"
	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
	"github.com/gamemaster/gamemaster-mcp-server/internal/registry"
)

// diceRollTool rolls dice notation and formats the breakdown.
type diceRollTool struct {
	name        string
	description string
	schema      *protocol.JSONSchema
}

// DiceRoll constructs the dice_roll tool.
func DiceRoll() *diceRollTool {
	return &diceRollTool{
		name:        "dice_roll",
		description: "Roll dice using standard notation, e.g. 2d6+3.",
		schema:      registry.DiceNotationSchema(),
	}
}

// DiceRollLegacy constructs the generic diceRoll built-in. Its registered
// schema keeps the historical dice_type/num_dice shape; the catalog override
// in the registry presents the dice_notation schema to callers instead.
func DiceRollLegacy() *diceRollTool {
	return &diceRollTool{
		name:        registry.DiceToolName,
		description: "Roll dice using standard notation, e.g. 2d6+3.",
		schema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"dice_type": {Type: "string", Description: "Die type, e.g. d6"},
				"num_dice":  {Type: "integer", Description: "Number of dice to roll"},
			},
		},
	}
}

func (t *diceRollTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        t.name,
		Description: t.description,
		InputSchema: t.schema,
	}
}

func (t *diceRollTool) Call(ctx context.Context, args map[string]any) (any, error) {
	notation := strings.TrimSpace(stringArg(args, "dice_notation"))
	if notation == "" {
		return "[ERROR] dice_notation is required, e.g. 2d6+3.", nil
	}

	result, err := dice.Roll(notation)
	if err != nil {
		return fmt.Sprintf("[ERROR] %v", err), nil
	}
	return formatRoll(notation, result), nil
}

// formatRoll renders the breakdown. A zero modifier is omitted entirely so
// the transcript never shows an explicit +0.
func formatRoll(notation string, r dice.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rolled %s: %v", notation, r.Rolls)
	switch {
	case r.Modifier > 0:
		fmt.Fprintf(&sb, " + %d", r.Modifier)
	case r.Modifier < 0:
		fmt.Fprintf(&sb, " - %d", -r.Modifier)
	}
	fmt.Fprintf(&sb, " = %d", r.Total)
	return sb.String()
}
