package wiring_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sophialabs/sigtrace/internal/infrastructure/wiring"
	"github.com/sophialabs/sigtrace/internal/testutil"
)

func testParams(rulesDir string) wiring.Params {
	return wiring.Params{
		RulesDir:         rulesDir,
		Version:          "1.0",
		Concurrency:      2,
		SignatureTimeout: time.Second,
		RunHistorySize:   10,
		RateLimit:        5,
		RateBurst:        10,
		RateLimiterTTL:   time.Minute,
		Logger:           &testutil.NoopLogger{},
	}
}

func TestNew_WiresComponents(t *testing.T) {
	dir := t.TempDir()
	rule := `
name: wired_rule
severity: 2
detect:
  mutex: '=i_am_a_malware'
`
	if err := os.WriteFile(filepath.Join(dir, "rule.yaml"), []byte(rule), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := wiring.New(testParams(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if c.Server() == nil || c.Logger() == nil || c.Runs() == nil {
		t.Fatal("expected all components wired")
	}

	reg, err := c.LoadSignaturesUseCase().Execute(context.Background())
	if err != nil {
		t.Fatalf("failed to load signatures: %v", err)
	}
	// Built-ins plus the YAML rule.
	if reg.Len() < 2 {
		t.Errorf("expected built-ins plus the rule, got %d signatures", reg.Len())
	}
}

func TestNew_MissingRulesDir(t *testing.T) {
	if _, err := wiring.New(testParams("/nonexistent/rules")); err == nil {
		t.Error("expected error for missing rules directory")
	}
}

func TestContainer_CloseIsIdempotent(t *testing.T) {
	c, err := wiring.New(testParams(t.TempDir()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Close()
	c.Close()
}
