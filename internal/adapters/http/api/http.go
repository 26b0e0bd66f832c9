// Package api wires the server-side routes of the web app: the /api pass-through
// to the roster backend and the health/metrics endpoint.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/classmates/pkg/logger"
)

// Server wires HTTP routes for the backend pass-through.
type Server struct {
	healthHandler *HealthHandler
	proxyHandler  *ProxyHandler
	basePath      string
}

// NewServer creates a server forwarding basePath/* to backend.
func NewServer(backend *url.URL, basePath string, log logger.Logger) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		proxyHandler:  NewProxyHandler(backend, log),
		basePath:      "/" + strings.Trim(basePath, "/"),
	}
}

// BasePath returns the prefix forwarded to the backend.
func (s *Server) BasePath() string {
	return s.basePath
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("%w: mux is nil", ErrInvalidRoute)
	}
	if s.basePath == "/" {
		return fmt.Errorf("%w: api base path must not be the root", ErrInvalidRoute)
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc(s.basePath+"/", MetricsMiddleware(s.proxyHandler.ServeHTTP, "api"))
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
