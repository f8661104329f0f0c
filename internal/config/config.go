// Package config loads typed configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-configured dependencies of the gateway.
// Collaborator settings are optional: tools report missing configuration as
// business-level errors instead of failing at startup.
type Config struct {
	// Storage
	DBPath          string `env:"GM_DB_PATH" envDefault:"gamemaster.db"`
	SessionTable    string `env:"MCP_SESSION_TABLE" envDefault:"mcp_sessions"`
	CharactersTable string `env:"CHARACTERS_TABLE" envDefault:"characters"`

	// Lore/rules agent collaborator
	AgentURL     string `env:"AGENT_URL"`
	AgentID      string `env:"AGENT_ID"`
	AgentAliasID string `env:"AGENT_ALIAS_ID"`
	AgentRegion  string `env:"AGENT_REGION" envDefault:"us-east-1"`

	// Object-storage collaborator
	ObjectStoreURL string `env:"OBJECT_STORE_URL"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
