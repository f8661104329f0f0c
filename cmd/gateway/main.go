package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/gamemaster/gamemaster-mcp-server/internal/app"
	"github.com/gamemaster/gamemaster-mcp-server/internal/config"
	"github.com/gamemaster/gamemaster-mcp-server/internal/logging"
)

func main() {
	_ = godotenv.Load()

	httpAddr := flag.String("http", ":8080", "gateway HTTP listen address (e.g., :8080)")
	flag.Parse()

	logger, cleanup, err := logging.New("gateway")
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	gw, err := app.NewGateway(cfg, logger)
	if err != nil {
		logger.Fatalf("gateway error: %v", err)
	}
	defer gw.Close()

	srv := &http.Server{
		Addr:              *httpAddr,
		Handler:           gw.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Infof("gateway listening on %s (db=%s)", *httpAddr, cfg.DBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}
