package signature_test

import (
	"context"
	"errors"
	"testing"

	goversion "github.com/hashicorp/go-version"

	"github.com/sophialabs/sigtrace/internal/domain/check"
	"github.com/sophialabs/sigtrace/internal/domain/signature"
)

func noopEval(context.Context, *check.Session) (bool, error) { return false, nil }

func TestNew_Valid(t *testing.T) {
	sig, err := signature.New(signature.Metadata{
		Name:     "test_sig",
		Severity: 2,
		Enabled:  true,
	}, noopEval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Meta.Name != "test_sig" {
		t.Errorf("unexpected name %q", sig.Meta.Name)
	}
}

func TestNew_RequiresName(t *testing.T) {
	_, err := signature.New(signature.Metadata{Severity: 1}, noopEval)
	assertConfigError(t, err)
}

func TestNew_RequiresEval(t *testing.T) {
	_, err := signature.New(signature.Metadata{Name: "x", Severity: 1}, nil)
	assertConfigError(t, err)
}

func TestNew_RejectsSeverityBelowOne(t *testing.T) {
	_, err := signature.New(signature.Metadata{Name: "x", Severity: 0}, noopEval)
	assertConfigError(t, err)
}

func TestNew_RejectsUnparseableVersion(t *testing.T) {
	_, err := signature.New(signature.Metadata{
		Name:       "x",
		Severity:   1,
		MinVersion: "not-a-version",
	}, noopEval)
	assertConfigError(t, err)
}

func TestNew_RejectsInvertedVersionWindow(t *testing.T) {
	_, err := signature.New(signature.Metadata{
		Name:       "x",
		Severity:   1,
		MinVersion: "2.0",
		MaxVersion: "1.0",
	}, noopEval)
	assertConfigError(t, err)
}

func TestMustNew_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	signature.MustNew(signature.Metadata{}, noopEval)
}

func TestAppliesTo_DottedNumericComparison(t *testing.T) {
	// "0.10" is greater than "0.6"; lexical comparison would invert it.
	sig, err := signature.New(signature.Metadata{
		Name:       "window",
		Severity:   1,
		Enabled:    true,
		MinVersion: "0.6",
		MaxVersion: "0.10",
	}, noopEval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		version string
		want    bool
	}{
		{"0.5", false},
		{"0.6", true},
		{"0.7", true},
		{"0.10", true},
		{"0.11", false},
	}
	for _, tc := range cases {
		v, err := goversion.NewVersion(tc.version)
		if err != nil {
			t.Fatalf("bad test version %q: %v", tc.version, err)
		}
		if got := sig.AppliesTo(v); got != tc.want {
			t.Errorf("AppliesTo(%q) = %v, want %v", tc.version, got, tc.want)
		}
	}
}

func TestAppliesTo_UnboundedWindow(t *testing.T) {
	sig, err := signature.New(signature.Metadata{Name: "open", Severity: 1, Enabled: true}, noopEval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := goversion.NewVersion("99.0")
	if !sig.AppliesTo(v) {
		t.Error("expected unbounded signature to apply to any version")
	}
}

func assertConfigError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var cfgErr *signature.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *signature.ConfigError, got %T", err)
	}
}
