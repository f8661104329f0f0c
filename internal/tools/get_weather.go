package tools

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
)

// getWeatherTool produces a synthetic temperature reading for a city.
type getWeatherTool struct{}

// GetWeather constructs the get_weather tool.
func GetWeather() *getWeatherTool {
	return &getWeatherTool{}
}

func (t *getWeatherTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_weather",
		Description: "Get the current weather for a city.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"city": {Type: "string", Description: "Name of the city to get weather for"},
			},
			Required: []string{"city"},
		},
	}
}

func (t *getWeatherTool) Call(ctx context.Context, args map[string]any) (any, error) {
	city := stringArg(args, "city")
	temp := rand.Intn(21) + 15
	return fmt.Sprintf("The temperature in %s is %d°C", city, temp), nil
}
