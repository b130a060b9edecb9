// Package signature defines the behavioral rule unit and the registry that
// holds the known rules for evaluation.
package signature

import (
	"context"
	"fmt"

	goversion "github.com/hashicorp/go-version"

	"github.com/sophialabs/sigtrace/internal/domain/check"
)

// ConfigError reports a malformed signature or a registration conflict.
// It is surfaced immediately at load time: a broken rule set should not
// silently run partially.
type ConfigError struct {
	Name   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Name == "" {
		return "signature configuration error: " + e.Reason
	}
	return fmt.Sprintf("signature %q: %s", e.Name, e.Reason)
}

// Metadata is the static, immutable record describing a signature. It is
// constructed once at registry load time and never mutated during
// evaluation.
type Metadata struct {
	Name        string
	Description string
	// Severity uses a 1-3 scale where 3 is most severe; the engine treats
	// it as opaque ordering data.
	Severity   int
	Categories []string
	Families   []string
	Authors    []string
	References []string
	Enabled    bool
	Alert      bool
	// MinVersion and MaxVersion bound the engine versions this signature
	// applies to; empty means unbounded.
	MinVersion string
	MaxVersion string
}

// EvalFunc is the single capability a signature implements: a pure function
// of the trace bound to the given session. It must not mutate the trace,
// perform I/O, or retain state across evaluations; each evaluation receives
// a fresh session as its evidence accumulator.
type EvalFunc func(ctx context.Context, s *check.Session) (bool, error)

// Signature pairs immutable metadata with its evaluation routine.
type Signature struct {
	Meta Metadata
	Eval EvalFunc
}

// New validates the metadata and returns the signature. Malformed metadata
// is rejected here, at the registration boundary, rather than at report
// time.
func New(meta Metadata, eval EvalFunc) (*Signature, error) {
	if meta.Name == "" {
		return nil, &ConfigError{Reason: "name is required"}
	}
	if eval == nil {
		return nil, &ConfigError{Name: meta.Name, Reason: "evaluation routine is required"}
	}
	if meta.Severity < 1 {
		return nil, &ConfigError{Name: meta.Name, Reason: fmt.Sprintf("severity must be >= 1, got %d", meta.Severity)}
	}

	minV, err := parseVersion(meta.Name, meta.MinVersion)
	if err != nil {
		return nil, err
	}
	maxV, err := parseVersion(meta.Name, meta.MaxVersion)
	if err != nil {
		return nil, err
	}
	if minV != nil && maxV != nil && minV.GreaterThan(maxV) {
		return nil, &ConfigError{
			Name:   meta.Name,
			Reason: fmt.Sprintf("minimum version %q exceeds maximum version %q", meta.MinVersion, meta.MaxVersion),
		}
	}

	return &Signature{Meta: meta, Eval: eval}, nil
}

// MustNew is New for statically linked signatures, panicking on programmer
// error the way regexp.MustCompile does.
func MustNew(meta Metadata, eval EvalFunc) *Signature {
	sig, err := New(meta, eval)
	if err != nil {
		panic(err)
	}
	return sig
}

// parseVersion parses an optional dotted-numeric version string, returning
// nil for the empty (unbounded) case.
func parseVersion(name, raw string) (*goversion.Version, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := goversion.NewVersion(raw)
	if err != nil {
		return nil, &ConfigError{Name: name, Reason: fmt.Sprintf("unparseable version %q: %v", raw, err)}
	}
	return v, nil
}

// AppliesTo reports whether the signature's version window contains the
// given engine version. Comparison is dotted-numeric ("0.5" < "0.6" <
// "0.10"), never lexical. Metadata versions were validated at construction,
// so only current can fail to parse.
func (s *Signature) AppliesTo(current *goversion.Version) bool {
	if minV, _ := parseVersion(s.Meta.Name, s.Meta.MinVersion); minV != nil && current.LessThan(minV) {
		return false
	}
	if maxV, _ := parseVersion(s.Meta.Name, s.Meta.MaxVersion); maxV != nil && current.GreaterThan(maxV) {
		return false
	}
	return true
}
