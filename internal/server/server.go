// Package server provides the HTTP dispatch endpoint for registered tools.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"wallet-mcp/internal/tool"
)

const protocolVersion = "0.1"

// Config contains server configuration values such as port and TLS material.
type Config struct {
	Port        string
	TLSCertFile string
	TLSKeyFile  string
}

// Server routes every protocol request through a single /mcp endpoint and
// dispatches tool calls across the registry it was constructed with.
type Server struct {
	cfg      Config
	router   *chi.Mux
	registry *tool.Registry
}

// New constructs a Server with middleware and routes configured. The
// registry is read-only from here on.
func New(cfg Config, registry *tool.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		registry: registry,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/health", s.handleHealth)

	// The protocol is method-agnostic at the router level: OPTIONS preflight
	// and the 405 for other methods are handled inside handleDispatch.
	s.router.Handle("/mcp", http.HandlerFunc(s.handleDispatch))

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("reading request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	var env requestEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		// The parse failure stays server-side; callers get a generic message.
		log.Printf("decoding request envelope: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	switch env.Type {
	case "capabilities":
		writeJSON(w, http.StatusOK, capabilitiesResponse{
			ProtocolVersion: protocolVersion,
			Capabilities:    capabilities{Tools: s.registry.Descriptors()},
		})
	case "tool_call":
		s.handleToolCall(w, r, env)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown request type: %s", env.Type))
	}
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request, env requestEnvelope) {
	t, ok := s.registry.Lookup(env.ToolName)
	if !ok {
		writeError(w, http.StatusNotFound, "Tool not found: "+env.ToolName)
		return
	}

	// The request context is handed to the tool, so a caller disconnect
	// cancels in-flight work for tools that honor it.
	result, err := t.Execute(r.Context(), env.Parameters)
	if err != nil {
		log.Printf("tool %s failed: %v", t.Name, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error executing tool %s: %s", t.Name, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: result})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
