package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
	"github.com/gamemaster/gamemaster-mcp-server/internal/version"
)

// NewRouter builds the HTTP front for the dispatcher. Clients POST request
// envelopes to the root path or /mcp; the session header is forwarded to the
// generic path untouched.
func NewRouter(d *Dispatcher, logger *logrus.Entry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(logRequests(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": version.Get().Version,
		})
	})

	handle := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			body = nil
		}
		env := d.Dispatch(r.Context(), r.Header.Get(protocol.SessionHeader), body)
		writeEnvelope(w, env)
	}
	r.Post("/", handle)
	r.Post("/mcp", handle)

	return r
}

// writeEnvelope renders one response envelope onto the wire.
func writeEnvelope(w http.ResponseWriter, env protocol.ResponseEnvelope) {
	for k, v := range env.Headers {
		w.Header().Set(k, v)
	}
	if env.Body == nil {
		w.WriteHeader(env.StatusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(env.Body)
}

func logRequests(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": ww.Status(),
				"bytes":  ww.BytesWritten(),
				"dur":    time.Since(start).Round(time.Millisecond),
			}).Info("request")
		})
	}
}
