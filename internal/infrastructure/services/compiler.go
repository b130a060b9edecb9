package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sophialabs/sigtrace/internal/domain/check"
	"github.com/sophialabs/sigtrace/internal/domain/pattern"
	"github.com/sophialabs/sigtrace/internal/domain/signature"
)

// Compiler transforms declarative signature definitions into registered
// signatures whose evaluation routine is a condition tree over the fixed
// check primitives. Structural problems (empty clauses, missing fields)
// fail here at load time; invalid regexes are deliberately left to surface
// at evaluation time through the pattern cache, so one bad pattern degrades
// a single signature instead of the whole rule set.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile turns a Definition into a Signature.
func (c *Compiler) Compile(def *signature.Definition) (*signature.Signature, error) {
	cond, err := compileDetect(&def.Detect)
	if err != nil {
		return nil, fmt.Errorf("failed to compile signature %q: %w", def.Name, err)
	}

	meta := signature.Metadata{
		Name:        def.Name,
		Description: def.Description,
		Severity:    def.Severity,
		Categories:  def.Categories,
		Families:    def.Families,
		Authors:     def.Authors,
		References:  def.References,
		Enabled:     def.Enabled,
		Alert:       def.Alert,
		MinVersion:  def.MinVersion,
		MaxVersion:  def.MaxVersion,
	}

	return signature.New(meta, signature.EvalFunc(cond))
}

func compileDetect(dc *signature.DetectClause) (check.Cond, error) {
	var conds []check.Cond

	if dc.File != "" {
		p := parseMatcher(dc.File)
		conds = append(conds, func(ctx context.Context, s *check.Session) (bool, error) {
			return s.File(p)
		})
	}
	if dc.Key != "" {
		p := parseMatcher(dc.Key)
		conds = append(conds, func(ctx context.Context, s *check.Session) (bool, error) {
			return s.Key(p)
		})
	}
	if dc.Mutex != "" {
		p := parseMatcher(dc.Mutex)
		conds = append(conds, func(ctx context.Context, s *check.Session) (bool, error) {
			return s.Mutex(p)
		})
	}
	if dc.IP != "" {
		p := parseMatcher(dc.IP)
		conds = append(conds, func(ctx context.Context, s *check.Session) (bool, error) {
			return s.IP(p)
		})
	}
	if dc.Domain != "" {
		p := parseMatcher(dc.Domain)
		conds = append(conds, func(ctx context.Context, s *check.Session) (bool, error) {
			return s.Domain(p)
		})
	}
	if dc.URL != "" {
		p := parseMatcher(dc.URL)
		conds = append(conds, func(ctx context.Context, s *check.Session) (bool, error) {
			return s.URL(p)
		})
	}

	if dc.API != nil {
		if dc.API.Name == "" {
			return nil, fmt.Errorf("api check requires a name")
		}
		p := parseMatcher(dc.API.Name)
		process := dc.API.Process
		conds = append(conds, func(ctx context.Context, s *check.Session) (bool, error) {
			return s.API(p, process)
		})
	}

	if dc.Argument != nil {
		if dc.Argument.Value == "" {
			return nil, fmt.Errorf("argument check requires a value")
		}
		p := parseMatcher(dc.Argument.Value)
		filter := check.ArgumentFilter{
			Name:     dc.Argument.Name,
			API:      dc.Argument.API,
			Category: dc.Argument.Category,
			Process:  dc.Argument.Process,
		}
		conds = append(conds, func(ctx context.Context, s *check.Session) (bool, error) {
			return s.Argument(p, filter)
		})
	}

	// Nested combinators.
	if len(dc.All) > 0 {
		var children []check.Cond
		for i := range dc.All {
			child, err := compileDetect(&dc.All[i])
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		conds = append(conds, check.And(children...))
	}

	if len(dc.Any) > 0 {
		var children []check.Cond
		for i := range dc.Any {
			child, err := compileDetect(&dc.Any[i])
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		conds = append(conds, check.Any(children...))
	}

	if dc.Not != nil {
		inner, err := compileDetect(dc.Not)
		if err != nil {
			return nil, err
		}
		conds = append(conds, check.Not(inner))
	}

	switch len(conds) {
	case 0:
		return nil, fmt.Errorf("empty detect clause")
	case 1:
		return conds[0], nil
	default:
		// Multiple fields on one node combine with AND.
		return check.And(conds...), nil
	}
}

// parseMatcher applies the rules-file convention: "=" prefix marks a
// literal, anything else is a regex.
func parseMatcher(raw string) pattern.Pattern {
	if strings.HasPrefix(raw, "=") {
		return pattern.Literal(raw[1:])
	}
	return pattern.Regex(raw)
}
