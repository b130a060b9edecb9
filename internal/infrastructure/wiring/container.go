package wiring

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sophialabs/sigtrace/internal/domain/match"
	"github.com/sophialabs/sigtrace/internal/domain/trace"
	inboundhttp "github.com/sophialabs/sigtrace/internal/infrastructure/inbound/http"
	"github.com/sophialabs/sigtrace/internal/infrastructure/outbound/clock"
	"github.com/sophialabs/sigtrace/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/sigtrace/internal/infrastructure/outbound/ratelimit"
	"github.com/sophialabs/sigtrace/internal/infrastructure/outbound/template"
	"github.com/sophialabs/sigtrace/internal/infrastructure/ports"
	"github.com/sophialabs/sigtrace/internal/infrastructure/services"
	"github.com/sophialabs/sigtrace/internal/infrastructure/usecases"
	"github.com/sophialabs/sigtrace/internal/signatures"
)

// Params holds the subset of configuration needed to construct
// infrastructure components.
type Params struct {
	RulesDir         string
	Version          string
	Concurrency      int
	SignatureTimeout time.Duration
	RunHistorySize   int
	RateLimit        float64
	RateBurst        int
	RateLimiterTTL   time.Duration
	Logger           ports.Logger
}

// Container owns the construction and lifecycle of all infrastructure
// components.
type Container struct {
	logger    ports.Logger
	server    *inboundhttp.Server
	loadUC    *usecases.LoadSignaturesUseCase
	analyzeUC *usecases.AnalyzeTraceUseCase
	limiter   *ratelimit.ClientLimiterStore
	runs      *trace.RingBuffer
	closeOnce sync.Once
}

// New constructs all infrastructure components. Fallible operations
// (repository, renderer compilation) run before goroutine-starting
// operations (rate limiter store) to avoid goroutine leaks on early
// failure.
func New(p Params) (*Container, error) {
	if _, err := os.Stat(p.RulesDir); err != nil {
		return nil, fmt.Errorf("failed to access rules directory: %w", err)
	}

	repo, err := filesystem.NewYAMLRepository(p.RulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	renderers, err := buildRenderers()
	if err != nil {
		return nil, fmt.Errorf("failed to compile report renderers: %w", err)
	}

	// Start background goroutine only after all fallible ops succeed.
	limiter := ratelimit.NewClientLimiterStore(p.RateLimit, p.RateBurst, p.RateLimiterTTL)

	clk := clock.New()
	runs := trace.NewRingBuffer(p.RunHistorySize)
	engine := match.NewEngine(p.Version, p.Concurrency, p.SignatureTimeout)
	compiler := services.NewCompiler()

	loadUC := usecases.NewLoadSignaturesUseCase(repo, compiler, signatures.Builtin(), p.Logger)
	analyzeUC := usecases.NewAnalyzeTraceUseCase(engine, clk, runs, p.Logger)

	server := inboundhttp.NewServer(analyzeUC, loadUC, limiter, runs, renderers, p.Logger)

	return &Container{
		logger:    p.Logger,
		server:    server,
		loadUC:    loadUC,
		analyzeUC: analyzeUC,
		limiter:   limiter,
		runs:      runs,
	}, nil
}

func buildRenderers() (map[string]match.ReportRenderer, error) {
	registry := template.NewRegistry()
	summary, err := registry.Compile("jinja2", "summary", template.DefaultSummarySource)
	if err != nil {
		return nil, err
	}
	return map[string]match.ReportRenderer{"text": summary}, nil
}

// Close releases resources held by the container. It is idempotent.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		c.limiter.Stop()
	})
}

// Logger returns the logger passed at construction time.
func (c *Container) Logger() ports.Logger {
	return c.logger
}

// Server returns the HTTP server.
func (c *Container) Server() *inboundhttp.Server {
	return c.server
}

// LoadSignaturesUseCase returns the use case for discovering and compiling
// signatures.
func (c *Container) LoadSignaturesUseCase() *usecases.LoadSignaturesUseCase {
	return c.loadUC
}

// AnalyzeTraceUseCase returns the use case for running the engine.
func (c *Container) AnalyzeTraceUseCase() *usecases.AnalyzeTraceUseCase {
	return c.analyzeUC
}

// Runs returns the run-history ring buffer.
func (c *Container) Runs() *trace.RingBuffer {
	return c.runs
}
