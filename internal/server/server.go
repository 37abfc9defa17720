// Package server exposes the dispatcher over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/normanking/jarvis/internal/auth"
	"github.com/normanking/jarvis/internal/dispatch"
)

// CommandRequest is the body of POST /command.
type CommandRequest struct {
	Text string `json:"text"`

	// SessionID groups turns into one conversation. The server
	// assigns one when the client omits it.
	SessionID string `json:"session_id,omitempty"`

	// Restricted asks for a privacy-limited reply with no memory
	// access.
	Restricted bool `json:"restricted,omitempty"`
}

// CommandResponse is the body returned by POST /command.
type CommandResponse struct {
	dispatch.Response
	SessionID string `json:"session_id"`
	User      string `json:"user,omitempty"`
}

// Server handles HTTP traffic for the assistant.
type Server struct {
	dispatcher *dispatch.Dispatcher
	authmw     *auth.Middleware
	log        zerolog.Logger
	timeout    time.Duration
	router     chi.Router
}

// Option configures the server.
type Option func(*Server)

// WithRequestTimeout bounds each dispatch call.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New builds the HTTP server around a dispatcher and token service.
func New(dispatcher *dispatch.Dispatcher, tokens *auth.Service, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		dispatcher: dispatcher,
		authmw:     auth.NewMiddleware(tokens),
		log:        log,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.authmw.Resolve)
		r.Post("/command", s.handleCommand)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Str("addr", addr).Msg("listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var body CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	req := dispatch.Request{
		Text:       body.Text,
		Role:       dispatch.RoleGuest,
		SessionID:  strings.TrimSpace(body.SessionID),
		Restricted: body.Restricted,
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	var userName string
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		req.Role = dispatch.RoleUser
		req.UserID = claims.UserID
		userName = claims.Name
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	resp := s.dispatcher.Dispatch(ctx, req)

	s.log.Info().
		Str("intent", resp.Intent).
		Int("confidence", resp.Confidence).
		Str("role", string(req.Role)).
		Msg("command dispatched")

	writeJSON(w, http.StatusOK, CommandResponse{
		Response:  resp,
		SessionID: req.SessionID,
		User:      userName,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
