package api

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/okian/classmates/pkg/logger"
	"github.com/okian/classmates/pkg/metrics"
)

// ProxyHandler forwards /api requests to the roster backend unchanged.
type ProxyHandler struct {
	proxy  *httputil.ReverseProxy
	logger logger.Logger
}

// NewProxyHandler creates a proxy to backend. The inbound path is appended to
// the backend URL's path.
func NewProxyHandler(backend *url.URL, log logger.Logger) *ProxyHandler {
	if log == nil {
		log = logger.Nop()
	}
	h := &ProxyHandler{logger: log}
	h.proxy = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(backend)
			r.SetXForwarded()
		},
		ErrorHandler: h.handleError,
	}
	return h
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.proxy.ServeHTTP(w, r)
}

func (h *ProxyHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	metrics.RecordProxyUpstreamError(r.Method)
	h.logger.Error(r.Context(), "backend request failed",
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Error(err))
	writeError(w, http.StatusBadGateway, "upstream", fmt.Errorf("%w: %w", ErrUpstream, err))
}
