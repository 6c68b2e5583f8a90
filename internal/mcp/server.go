package mcp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/aldante1/mcp-todoist/internal/config"
	"github.com/aldante1/mcp-todoist/internal/logging"
	"github.com/aldante1/mcp-todoist/internal/mcp/mcperrors"
	"github.com/aldante1/mcp-todoist/internal/transport"
)

// Server runs the MCP dispatch loop over a transport. It supports stdio
// (NDJSON-framed) and HTTP transports.
type Server struct {
	config     *config.Config
	dispatcher *Dispatcher
	logger     logging.Logger

	httpServer *http.Server
}

// NewServer creates a server around the given dispatcher.
func NewServer(cfg *config.Config, dispatcher *Dispatcher, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Server{
		config:     cfg,
		dispatcher: dispatcher,
		logger:     logger.WithField("component", "mcp_server"),
	}
}

// ServeStdio processes NDJSON-framed messages on stdin/stdout until EOF or
// context cancellation. Log output goes to stderr so stdout stays clean for
// protocol traffic.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("Starting server with stdio transport.")
	t := transport.NewNDJSONTransport(os.Stdin, os.Stdout, nil, s.logger)
	return s.serve(ctx, t)
}

// serve is the transport-agnostic read-dispatch-write loop.
func (s *Server) serve(ctx context.Context, t transport.Transport) error {
	defer func() {
		if err := t.Close(); err != nil {
			s.logger.Warn("Failed to close transport.", "error", err)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("Server context canceled, stopping serve loop.")
			return nil
		}

		message, err := t.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, transport.ErrTransportClosed) {
				s.logger.Info("Transport closed, stopping serve loop.")
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return errors.Wrap(err, "failed to read message")
		}

		response, err := s.dispatcher.DispatchMessage(ctx, message)
		if err != nil {
			// Dispatch only errors when a response cannot be marshaled.
			s.logger.Error("Failed to produce response.", "error", err)
			continue
		}
		if response == nil {
			continue
		}
		if err := t.WriteMessage(ctx, response); err != nil {
			if errors.Is(err, transport.ErrTransportClosed) {
				return nil
			}
			return errors.Wrap(err, "failed to write response")
		}
	}
}

// ServeHTTP starts an HTTP listener carrying JSON-RPC messages in POST bodies
// on /mcp, with bearer authentication enforced before dispatch. It blocks
// until the context is canceled, then shuts down gracefully.
func (s *Server) ServeHTTP(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.requireAuth(s.handleMCPRequest))
	mux.HandleFunc("/healthz", s.handleHealthz)

	addr := fmt.Sprintf(":%d", s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	if s.config.Auth.Secret == "" {
		s.logger.Warn("Inbound authentication is DISABLED, all HTTP clients are accepted (insecure mode).")
	}
	s.logger.Info("Starting server with HTTP transport.", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "HTTP server failed")
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Wrap(s.httpServer.Shutdown(shutdownCtx), "HTTP shutdown failed")
	}
}

// requireAuth rejects requests whose bearer credential does not match the
// configured secret. Comparison is constant-time. An empty configured secret
// disables the check entirely.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := s.config.Auth.Secret
		if secret == "" {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		provided, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			s.logger.Warn("Rejected request with missing or invalid credential.", "remoteAddr", r.RemoteAddr)
			writeUnauthorized(w)
			return
		}
		next(w, r)
	}
}

// writeUnauthorized emits HTTP 401 with a JSON-RPC unauthorized error body so
// both HTTP-level and protocol-level clients see the refusal.
func writeUnauthorized(w http.ResponseWriter) {
	writeJSONRPCError(w, http.StatusUnauthorized, int(mcperrors.CodeUnauthorized), "Unauthorized.")
}

// writeJSONRPCError emits a JSON-RPC error envelope with a null id. Every
// refusal this layer produces uses it; callers never receive a plain-text body.
func writeJSONRPCError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := Response{
		JSONRPC: JSONRPCVersion,
		ID:      json.RawMessage("null"),
		Error:   &ErrorObject{Code: code, Message: message},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleMCPRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONRPCError(w, http.StatusMethodNotAllowed, int(mcperrors.CodeInvalidRequest), "Invalid Request.")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, transport.MaxMessageSize+1))
	if err != nil {
		writeJSONRPCError(w, http.StatusBadRequest, int(mcperrors.CodeInvalidRequest), "Invalid Request.")
		return
	}
	if len(body) > transport.MaxMessageSize {
		writeJSONRPCError(w, http.StatusRequestEntityTooLarge, int(mcperrors.CodeInvalidRequest), "Invalid Request.")
		return
	}

	response, err := s.dispatcher.DispatchMessage(r.Context(), body)
	if err != nil {
		s.logger.Error("Failed to produce response.", "error", err)
		writeJSONRPCError(w, http.StatusInternalServerError, int(mcperrors.CodeInternalError), "Internal error.")
		return
	}
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(response); err != nil {
		s.logger.Warn("Failed to write HTTP response.", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintln(w, `{"status":"ok"}`)
}
