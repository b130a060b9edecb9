package testutil

import (
	"context"
	"time"

	"github.com/sophialabs/sigtrace/internal/domain/match"
	"github.com/sophialabs/sigtrace/internal/infrastructure/ports"
)

var _ ports.Logger = (*NoopLogger)(nil)

// NoopLogger discards all log output.
type NoopLogger struct{}

func (l *NoopLogger) Info(string, ...any)  {}
func (l *NoopLogger) Warn(string, ...any)  {}
func (l *NoopLogger) Error(string, ...any) {}
func (l *NoopLogger) Debug(string, ...any) {}

var _ ports.Clock = (*FixedClock)(nil)

// FixedClock returns a fixed time.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

var _ ports.RateLimiter = (*StubRateLimiter)(nil)

// StubRateLimiter returns a configurable Allow result.
type StubRateLimiter struct {
	AllowAll bool
}

func (r *StubRateLimiter) Allow(context.Context, string) bool {
	return r.AllowAll
}

var _ match.ReportRenderer = (*StubReportRenderer)(nil)

// StubReportRenderer returns a configurable render result.
type StubReportRenderer struct {
	Result []byte
	Err    error
}

func (r *StubReportRenderer) Render(match.RenderContext) ([]byte, error) {
	return r.Result, r.Err
}
