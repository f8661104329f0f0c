package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gamemaster/gamemaster-mcp-server/internal/chatserver"
)

func main() {
	_ = godotenv.Load()

	port := envOr("CHAT_PORT", "3000")
	gatewayURL := envOr("GATEWAY_URL", "http://localhost:8080")
	staticDir := envOr("CHAT_STATIC_DIR", "web")
	apiKey := envOr("OPENAI_API_KEY", "")
	model := envOr("OPENAI_MODEL", "gpt-4o-mini")
	baseURL := envOr("OPENAI_BASE_URL", "https://api.openai.com/v1")

	flag.StringVar(&port, "port", port, "port to listen on")
	flag.StringVar(&gatewayURL, "gateway", gatewayURL, "base URL for the tool gateway")
	flag.StringVar(&staticDir, "static", staticDir, "directory for static assets")
	flag.StringVar(&apiKey, "openai-key", apiKey, "OpenAI API key")
	flag.StringVar(&model, "openai-model", model, "OpenAI model")
	flag.StringVar(&baseURL, "openai-base", baseURL, "OpenAI base URL")
	flag.Parse()

	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY is required for the chat orchestrator")
	}

	gatewayClient := chatserver.NewGatewayClient(gatewayURL)
	llmClient := chatserver.NewLLMClient(apiKey, model, baseURL)
	srv := chatserver.NewChatServer(gatewayClient, llmClient, staticDir)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	addr := fmt.Sprintf(":%s", port)
	log.Printf("chat orchestrator listening on %s (gateway: %s, model: %s)", addr, gatewayURL, model)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
