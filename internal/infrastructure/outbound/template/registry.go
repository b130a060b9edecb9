package template

import (
	"fmt"

	"github.com/sophialabs/sigtrace/internal/domain/match"
)

// EngineCompiler compiles a report template source string into a renderer.
type EngineCompiler interface {
	Compile(name, source string) (match.ReportRenderer, error)
}

// Registry maps engine names to their compilers.
type Registry struct {
	engines map[string]EngineCompiler
}

// NewRegistry creates a registry with the built-in engines (expr, jinja2).
func NewRegistry() *Registry {
	return &Registry{
		engines: map[string]EngineCompiler{
			"expr":   &ExprCompiler{},
			"jinja2": &Jinja2Compiler{},
		},
	}
}

// Compile resolves the engine by name and compiles the source.
func (r *Registry) Compile(engine, name, source string) (match.ReportRenderer, error) {
	ec, ok := r.engines[engine]
	if !ok {
		return nil, fmt.Errorf("unknown template engine: %q (supported: expr, jinja2)", engine)
	}
	return ec.Compile(name, source)
}

// DefaultSummarySource is the built-in jinja2 report used for text output.
const DefaultSummarySource = `Analysis report ({{ generated_at }})
Matched {{ match_count }} signature(s), {{ error_count }} error(s), top severity {{ severity_label(top_severity) }}.
{% for sig in signatures %}
[{{ severity_label(sig.Severity) }}] {{ sig.Name }}{% if sig.Alert %} (ALERT){% endif %}: {{ sig.Description }}
{% endfor %}{% for name, err in errors %}
error: {{ name }}: {{ err }}
{% endfor %}`
