package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/gamemaster/gamemaster-mcp-server/internal/app"
	"github.com/gamemaster/gamemaster-mcp-server/internal/chatserver"
	"github.com/gamemaster/gamemaster-mcp-server/internal/config"
	"github.com/gamemaster/gamemaster-mcp-server/internal/logging"
)

// Runs the tool gateway and, unless disabled, the chat orchestrator in one
// process. Each also has a standalone binary under cmd/.
func main() {
	_ = godotenv.Load()

	gatewayAddr := flag.String("http", envOr("GATEWAY_HTTP_ADDR", ":8080"), "gateway HTTP listen address")
	chatPort := flag.String("chat-port", envOr("CHAT_PORT", "3000"), "chat orchestrator port")
	staticDir := flag.String("static", envOr("CHAT_STATIC_DIR", "web"), "directory for static assets")
	openaiKey := flag.String("openai-key", envOr("OPENAI_API_KEY", ""), "OpenAI API key")
	openaiModel := flag.String("openai-model", envOr("OPENAI_MODEL", "gpt-4o-mini"), "OpenAI model")
	openaiBase := flag.String("openai-base", envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"), "OpenAI base URL")
	noChat := flag.Bool("no-chat", false, "run the gateway only")
	flag.Parse()

	if !*noChat && strings.TrimSpace(*openaiKey) == "" {
		log.Fatal("OPENAI_API_KEY is required unless --no-chat is set")
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	gatewaySrv := &http.Server{
		Addr:              *gatewayAddr,
		Handler:           gw.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		logger.Infof("gateway listening on %s (db=%s)", *gatewayAddr, cfg.DBPath)
		if err := gatewaySrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("gateway: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return gatewaySrv.Shutdown(shutdownCtx)
	})

	if !*noChat {
		gatewayURL := "http://localhost" + *gatewayAddr
		chat := chatserver.NewChatServer(
			chatserver.NewGatewayClient(gatewayURL),
			chatserver.NewLLMClient(*openaiKey, *openaiModel, *openaiBase),
			*staticDir,
		)
		mux := http.NewServeMux()
		chat.RegisterRoutes(mux)

		chatSrv := &http.Server{
			Addr:              ":" + strings.TrimPrefix(*chatPort, ":"),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Infof("chat orchestrator listening on %s (gateway: %s, model: %s)", chatSrv.Addr, gatewayURL, *openaiModel)
			if err := chatSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("chat orchestrator: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return chatSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
