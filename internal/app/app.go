// Package app wires the shared registry, dispatcher, and collaborators.
package app

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/gamemaster/gamemaster-mcp-server/internal/collab"
	"github.com/gamemaster/gamemaster-mcp-server/internal/config"
	"github.com/gamemaster/gamemaster-mcp-server/internal/gateway"
	"github.com/gamemaster/gamemaster-mcp-server/internal/invoker"
	"github.com/gamemaster/gamemaster-mcp-server/internal/registry"
	"github.com/gamemaster/gamemaster-mcp-server/internal/session"
	"github.com/gamemaster/gamemaster-mcp-server/internal/storage/sqlite"
	"github.com/gamemaster/gamemaster-mcp-server/internal/tools"
)

// NewRegistry builds the shared tool catalog. The generic diceRoll built-in
// is registered first; the rest follow in catalog order.
func NewRegistry(store tools.CharacterStore, agent collab.Agent, lister collab.BucketLister) *registry.Registry {
	return registry.New(
		// Legacy built-in
		tools.DiceRollLegacy(),

		// Utility tools
		tools.GetTime(),
		tools.GetWeather(),
		tools.CountS3Buckets(lister),

		// Agent-backed tools
		tools.RetrieveLore(agent),
		tools.AskRuleExpert(agent),

		// Character tools
		tools.CreateCharacter(store),
		tools.GetCharacterByName(store),

		// Dice
		tools.DiceRoll(),
	)
}

// Gateway bundles the running pieces so callers can close them.
type Gateway struct {
	Router http.Handler
	Store  *sqlite.Store
}

// Close releases the gateway's resources.
func (g *Gateway) Close() error {
	if g.Store != nil {
		return g.Store.Close()
	}
	return nil
}

// NewGateway builds the full dispatcher stack from configuration.
func NewGateway(cfg config.Config, logger *logrus.Entry) (*Gateway, error) {
	store, err := sqlite.Open(cfg.DBPath, cfg.SessionTable, cfg.CharactersTable)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	var agent collab.Agent
	if cfg.AgentURL != "" && cfg.AgentID != "" && cfg.AgentAliasID != "" {
		agent = collab.NewHTTPAgent(cfg.AgentURL, cfg.AgentID, cfg.AgentAliasID, cfg.AgentRegion)
	}
	var lister collab.BucketLister
	if cfg.ObjectStoreURL != "" {
		lister = collab.NewHTTPBucketLister(cfg.ObjectStoreURL)
	}

	reg := NewRegistry(store, agent, lister)
	inv := invoker.New(reg, logger)
	generic := session.NewHandler(reg, inv, store, logger)
	dispatcher := gateway.NewDispatcher(reg, inv, generic, logger)

	return &Gateway{
		Router: gateway.NewRouter(dispatcher, logger),
		Store:  store,
	}, nil
}
