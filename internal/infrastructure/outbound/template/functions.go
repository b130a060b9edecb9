package template

import (
	"encoding/json"
	"fmt"

	"github.com/sophialabs/sigtrace/internal/domain/match"
)

func buildExprEnv(ctx match.RenderContext) exprEnv {
	return exprEnv{
		MatchCount: func() int {
			return ctx.MatchCount
		},
		ErrorCount: func() int {
			return ctx.ErrorCount
		},
		TopSeverity: func() int {
			return ctx.TopSeverity
		},
		GeneratedAt: func() string {
			return ctx.GeneratedAt
		},
		SeverityLabel: severityLabel,
		SignatureNames: func() []string {
			return signatureNames(ctx.Signatures)
		},
		Signatures: func() []match.Match {
			return ctx.Signatures
		},
		Errors: func() map[string]string {
			return ctx.Errors
		},
		ToJSON: func(v any) string {
			return toJSONString(v)
		},
	}
}

// severityLabel maps the 1-3 severity scale to a reporting label.
func severityLabel(severity int) string {
	switch {
	case severity >= 3:
		return "high"
	case severity == 2:
		return "medium"
	case severity == 1:
		return "low"
	default:
		return "none"
	}
}

func signatureNames(matches []match.Match) []string {
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Name)
	}
	return names
}

func toJSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
