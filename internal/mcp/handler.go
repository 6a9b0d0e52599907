package mcp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HealthResponse is the body served at /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Handler serves the MCP streamable HTTP transport at /mcp and a health
// check at /health. When a token is configured, /mcp requires it as a
// Bearer token.
type Handler struct {
	server *Server
	token  string
	router chi.Router
}

// NewHandler creates the HTTP handler. An empty token disables auth.
func NewHandler(s *Server, token string) *Handler {
	h := &Handler{server: s, token: token}

	stream := mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return s.server },
		&mcp.StreamableHTTPOptions{},
	)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(h.requestID)

	r.Get("/health", h.health)
	r.Group(func(r chi.Router) {
		if h.token != "" {
			r.Use(h.authMiddleware)
		}
		r.Handle("/mcp", stream)
		r.Handle("/mcp/*", stream)
	})

	h.router = r
	return h
}

// ServeHTTP handles all HTTP requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// requestID tags every request with an ID for log correlation, reusing the
// caller's X-Request-Id when present.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		h.server.logger.Debug("http request", "method", r.Method, "path", r.URL.Path,
			"request_id", id, "session", r.Header.Get("Mcp-Session-Id"))
		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates the Bearer token.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			h.writeUnauthorized(w, "missing bearer token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
			h.writeUnauthorized(w, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeUnauthorized(w http.ResponseWriter, msg string) {
	h.server.logger.Warn("rejected MCP request", "reason", msg)
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="%s"`, ServerName))
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&HealthResponse{
		Status:    "healthy",
		Name:      ServerName,
		Version:   Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
