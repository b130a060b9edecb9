package template

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/sophialabs/sigtrace/internal/domain/match"
)

// Jinja2Compiler compiles report templates using Pongo2 (Django/Jinja2-style).
type Jinja2Compiler struct{}

// Compile parses the source as a Pongo2 template.
func (c *Jinja2Compiler) Compile(name, source string) (match.ReportRenderer, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jinja2 template %q: %w", name, err)
	}
	return &jinja2Renderer{tpl: tpl}, nil
}

type jinja2Renderer struct {
	tpl *pongo2.Template
}

func (r *jinja2Renderer) Render(ctx match.RenderContext) ([]byte, error) {
	pongoCtx := pongo2.Context{
		"signatures":   ctx.Signatures,
		"errors":       ctx.Errors,
		"match_count":  ctx.MatchCount,
		"error_count":  ctx.ErrorCount,
		"top_severity": ctx.TopSeverity,
		"generated_at": ctx.GeneratedAt,

		// Helper functions.
		"severity_label": severityLabel,
		"toJSON": func(v any) string {
			return toJSONString(v)
		},
		"signature_names": func() []string {
			return signatureNames(ctx.Signatures)
		},
	}

	result, err := r.tpl.Execute(pongoCtx)
	if err != nil {
		return nil, fmt.Errorf("jinja2 template render failed: %w", err)
	}
	return []byte(result), nil
}
