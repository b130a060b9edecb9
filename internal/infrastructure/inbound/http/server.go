// Package http exposes the engine over HTTP: trace submission, signature
// listing, and the admin surface for reloads and run history.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sophialabs/sigtrace/internal/domain/match"
	"github.com/sophialabs/sigtrace/internal/domain/signature"
	"github.com/sophialabs/sigtrace/internal/domain/trace"
	"github.com/sophialabs/sigtrace/internal/infrastructure/ports"
	"github.com/sophialabs/sigtrace/internal/infrastructure/usecases"
)

const maxBodySize = 32 << 20 // 32 MB; traces carry full API call logs

// Server is the HTTP front of the engine. The signature registry snapshot
// is swapped atomically on reload; in-flight analyses keep the snapshot
// they started with.
type Server struct {
	registry  atomic.Pointer[signature.Registry]
	router    *chi.Mux
	reloadMu  sync.Mutex
	analyzeUC *usecases.AnalyzeTraceUseCase
	loadUC    *usecases.LoadSignaturesUseCase
	limiter   ports.RateLimiter
	runs      *trace.RingBuffer
	renderers map[string]match.ReportRenderer
	logger    ports.Logger
}

// NewServer creates a new Server. renderers maps format names (e.g. "text")
// to compiled report renderers; the empty format always returns JSON.
func NewServer(
	analyzeUC *usecases.AnalyzeTraceUseCase,
	loadUC *usecases.LoadSignaturesUseCase,
	limiter ports.RateLimiter,
	runs *trace.RingBuffer,
	renderers map[string]match.ReportRenderer,
	logger ports.Logger,
) *Server {
	s := &Server{
		analyzeUC: analyzeUC,
		loadUC:    loadUC,
		limiter:   limiter,
		runs:      runs,
		renderers: renderers,
		logger:    logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Post("/analyze", s.handleAnalyze)
	r.Get("/signatures", s.handleListSignatures)
	r.Get("/health", s.handleHealth)

	r.Route("/__admin", func(r chi.Router) {
		r.Get("/runs", s.handleRuns)
		r.Post("/reload", s.handleReload)
	})

	return r
}

// Rebuild swaps in a new registry snapshot.
func (s *Server) Rebuild(reg *signature.Registry) {
	s.registry.Store(reg)
	s.logger.Info("signature registry swapped", "signatures", reg.Len())
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleAnalyze accepts a normalized trace as JSON and returns the result
// set, either as the stable JSON shape or rendered via ?format=.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(r.Context(), clientKey(r)) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	reg := s.registry.Load()
	if reg == nil {
		http.Error(w, "signatures not loaded", http.StatusServiceUnavailable)
		return
	}

	var t trace.Trace
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&t); err != nil {
		http.Error(w, "invalid trace: "+err.Error(), http.StatusBadRequest)
		return
	}

	rs, err := s.analyzeUC.Execute(r.Context(), &t, reg)
	if err != nil {
		s.logger.Error("analysis failed", "error", err)
		http.Error(w, "analysis failed", http.StatusInternalServerError)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		writeJSON(w, http.StatusOK, rs)
		return
	}

	renderer, ok := s.renderers[format]
	if !ok {
		http.Error(w, "unknown format: "+format, http.StatusBadRequest)
		return
	}
	body, err := renderer.Render(match.NewRenderContext(rs, time.Now().UTC().Format(time.RFC3339)))
	if err != nil {
		s.logger.Error("report rendering failed", "format", format, "error", err)
		http.Error(w, "report rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// signatureInfo is the listing shape for one registered signature.
type signatureInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    int      `json:"severity"`
	Alert       bool     `json:"alert"`
	Enabled     bool     `json:"enabled"`
	Categories  []string `json:"categories,omitempty"`
	Families    []string `json:"families,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	References  []string `json:"references,omitempty"`
	Minimum     string   `json:"minimum,omitempty"`
	Maximum     string   `json:"maximum,omitempty"`
}

func (s *Server) handleListSignatures(w http.ResponseWriter, r *http.Request) {
	reg := s.registry.Load()
	if reg == nil {
		http.Error(w, "signatures not loaded", http.StatusServiceUnavailable)
		return
	}

	all := reg.All()
	infos := make([]signatureInfo, 0, len(all))
	for _, sig := range all {
		infos = append(infos, signatureInfo{
			Name:        sig.Meta.Name,
			Description: sig.Meta.Description,
			Severity:    sig.Meta.Severity,
			Alert:       sig.Meta.Alert,
			Enabled:     sig.Meta.Enabled,
			Categories:  sig.Meta.Categories,
			Families:    sig.Meta.Families,
			Authors:     sig.Meta.Authors,
			References:  sig.Meta.References,
			Minimum:     sig.Meta.MinVersion,
			Maximum:     sig.Meta.MaxVersion,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"signatures": infos})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	n := 50
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": s.runs.Last(n)})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	reg, err := s.loadUC.Execute(r.Context())
	if err != nil {
		s.logger.Error("reload failed", "error", err)
		http.Error(w, "reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.Rebuild(reg)
	writeJSON(w, http.StatusOK, map[string]any{"status": "reloaded", "signatures": reg.Len()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count := 0
	if reg := s.registry.Load(); reg != nil {
		count = reg.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "signatures": count})
}

// clientKey identifies the submitting client for rate limiting. RealIP
// middleware has already normalized RemoteAddr.
func clientKey(r *http.Request) string {
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
