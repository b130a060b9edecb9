package usecases

import (
	"context"
	"fmt"

	"github.com/sophialabs/sigtrace/internal/domain/match"
	"github.com/sophialabs/sigtrace/internal/domain/signature"
	"github.com/sophialabs/sigtrace/internal/domain/trace"
	"github.com/sophialabs/sigtrace/internal/infrastructure/ports"
)

// AnalyzeTraceUseCase runs the engine over one trace and records a run
// summary for the admin endpoint.
type AnalyzeTraceUseCase struct {
	engine *match.Engine
	clock  ports.Clock
	runs   *trace.RingBuffer
	logger ports.Logger
}

// NewAnalyzeTraceUseCase creates a new use case.
func NewAnalyzeTraceUseCase(engine *match.Engine, clock ports.Clock, runs *trace.RingBuffer, logger ports.Logger) *AnalyzeTraceUseCase {
	return &AnalyzeTraceUseCase{
		engine: engine,
		clock:  clock,
		runs:   runs,
		logger: logger,
	}
}

// Execute evaluates the trace against the registry snapshot and returns the
// ordered result set.
func (uc *AnalyzeTraceUseCase) Execute(ctx context.Context, t *trace.Trace, reg *signature.Registry) (*match.ResultSet, error) {
	start := uc.clock.Now()

	rs, err := uc.engine.Evaluate(ctx, t, reg)
	if err != nil {
		return nil, fmt.Errorf("engine evaluation failed: %w", err)
	}

	elapsed := uc.clock.Now().Sub(start)
	uc.runs.Add(trace.RunSummary{
		Timestamp:   start,
		Matched:     len(rs.Signatures),
		Errors:      len(rs.Errors),
		DurationMs:  elapsed.Milliseconds(),
		TopSeverity: rs.TopSeverity(),
	})

	if len(rs.Errors) > 0 {
		uc.logger.Warn("some signatures failed to evaluate", "errors", len(rs.Errors))
	}
	uc.logger.Info("trace analyzed", "matched", len(rs.Signatures), "errors", len(rs.Errors), "duration_ms", elapsed.Milliseconds())

	return rs, nil
}
