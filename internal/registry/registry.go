// Package registry holds the process-wide tool catalog. The catalog is built
// once at startup and is read-only afterwards, so lookups need no locking.
package registry

import (
	"context"

	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
)

// Tool defines the behavior of a single gateway tool.
type Tool interface {
	Descriptor() protocol.ToolDescriptor
	Call(ctx context.Context, args map[string]any) (any, error)
}

// DiceToolName is the catalog name whose listed schema is overridden.
const DiceToolName = "diceRoll"

// Registry stores tools by name, preserving registration order for listing.
type Registry struct {
	tools map[string]Tool
	order []string
}

// New constructs a registry and registers the provided tools in order.
func New(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool under its descriptor name. Re-registering a name
// replaces the implementation but keeps the original catalog position, which
// is how the legacy generic diceRoll built-in coexists with later tools.
func (r *Registry) Register(t Tool) {
	name := t.Descriptor().Name
	if _, ok := r.tools[name]; !ok {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns descriptors in registration order.
//
// The diceRoll entry is always presented with the fixed dice_notation schema
// regardless of the schema it was registered with. The registered placeholder
// keeps its legacy shape for compatibility; only the advertised catalog is
// rewritten.
func (r *Registry) List() []protocol.ToolDescriptor {
	list := make([]protocol.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		desc := r.tools[name].Descriptor()
		if desc.Name == DiceToolName {
			desc.InputSchema = DiceNotationSchema()
		}
		list = append(list, desc)
	}
	return list
}

// DiceNotationSchema is the schema advertised for the diceRoll catalog entry.
func DiceNotationSchema() *protocol.JSONSchema {
	return &protocol.JSONSchema{
		Type: "object",
		Properties: map[string]protocol.JSONSchema{
			"dice_notation": {
				Type:        "string",
				Description: "Dice notation, e.g. 2d6+3",
			},
		},
		Required: []string{"dice_notation"},
	}
}
