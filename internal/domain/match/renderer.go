package match

// RenderContext provides result data for human-readable report rendering.
type RenderContext struct {
	Signatures  []Match
	Errors      map[string]string
	MatchCount  int
	ErrorCount  int
	TopSeverity int
	GeneratedAt string // ISO-8601 timestamp
}

// ReportRenderer renders a result set into a human-readable report.
type ReportRenderer interface {
	Render(ctx RenderContext) ([]byte, error)
}

// NewRenderContext builds a render context from a result set.
func NewRenderContext(rs *ResultSet, generatedAt string) RenderContext {
	return RenderContext{
		Signatures:  rs.Signatures,
		Errors:      rs.Errors,
		MatchCount:  len(rs.Signatures),
		ErrorCount:  len(rs.Errors),
		TopSeverity: rs.TopSeverity(),
		GeneratedAt: generatedAt,
	}
}
