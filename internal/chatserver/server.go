package chatserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// ChatServer provides the chat front-end that turns free-text player input
// into gateway tool calls and renders replies.
type ChatServer struct {
	gateway    *GatewayClient
	llm        *LLMClient
	transcript *Transcript
	staticDir  string
}

// NewChatServer wires the gateway client and static assets location.
func NewChatServer(gateway *GatewayClient, llm *LLMClient, staticDir string) *ChatServer {
	return &ChatServer{
		gateway:    gateway,
		llm:        llm,
		transcript: NewTranscript(200),
		staticDir:  staticDir,
	}
}

// RegisterRoutes attaches handlers to the mux.
func (s *ChatServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/tools", s.handleTools)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/health", s.handleHealth)

	fs := http.FileServer(http.Dir(s.staticDir))
	mux.Handle("/", fs)
}

// ChatRequest is the payload from the UI.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is what the UI renders.
type ChatResponse struct {
	Reply      string            `json:"reply"`
	ToolCall   *ToolCall         `json:"toolCall,omitempty"`
	ToolResult *ToolResult       `json:"toolResult,omitempty"`
	Error      string            `json:"error,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// ToolCall captures an invoked tool.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult includes a human-readable string.
type ToolResult struct {
	Text string `json:"text"`
}

func (s *ChatServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		writeJSON(w, ChatResponse{Error: "message is required"}, http.StatusBadRequest)
		return
	}
	s.transcript.Add("player", msg)

	ctx := r.Context()
	tools, err := s.gateway.ListTools(ctx)
	if err != nil {
		writeJSON(w, ChatResponse{Error: fmt.Sprintf("tools error: %v", err)}, http.StatusBadGateway)
		return
	}

	decision, err := s.llm.Decide(ctx, msg, tools)
	if err != nil {
		writeJSON(w, ChatResponse{Error: fmt.Sprintf("llm error: %v", err)}, http.StatusBadGateway)
		return
	}

	var (
		reply      string
		toolCall   *ToolCall
		toolResult *ToolResult
	)

	switch decision.Action {
	case "tool_call":
		toolCall = &ToolCall{Name: decision.Name, Args: decision.Args}
		text, err := s.gateway.CallTool(ctx, decision.Name, decision.Args)
		if err != nil {
			writeJSON(w, ChatResponse{Error: fmt.Sprintf("tool error: %v", err)}, http.StatusBadGateway)
			return
		}
		toolResult = &ToolResult{Text: text}
		if decision.Message != "" {
			reply = decision.Message
		} else {
			reply = text
		}
	case "respond":
		reply = decision.Message
	default:
		writeJSON(w, ChatResponse{Error: "invalid llm action"}, http.StatusBadGateway)
		return
	}

	s.transcript.Add("gm", reply)
	writeJSON(w, ChatResponse{
		Reply:      reply,
		ToolCall:   toolCall,
		ToolResult: toolResult,
		Meta: map[string]string{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}, http.StatusOK)
}

func (s *ChatServer) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tools, err := s.gateway.ListTools(r.Context())
	if err != nil {
		writeJSON(w, map[string]string{"error": err.Error()}, http.StatusBadGateway)
		return
	}

	writeJSON(w, tools, http.StatusOK)
}

func (s *ChatServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{"messages": s.transcript.Tail(50)}, http.StatusOK)
}

// handleHealth reports whether the gateway is reachable, mirroring the UI's
// connected/disconnected badge.
func (s *ChatServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "connected"
	if _, err := s.gateway.Ping(r.Context()); err != nil {
		status = "disconnected"
	}
	writeJSON(w, map[string]string{"status": "ok", "gateway": status}, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json error: %v", err)
	}
}
