package signature

// Definition is a declarative signature as loaded from a rules file, before
// compilation into an evaluation routine. Its Detect tree only ever binds
// the fixed check primitives; there is no free-form rule language.
type Definition struct {
	Name        string
	Description string
	Severity    int
	Categories  []string
	Families    []string
	Authors     []string
	References  []string
	Enabled     bool
	Alert       bool
	MinVersion  string
	MaxVersion  string
	Detect      DetectClause

	// SourceFile records where the definition was loaded from, for
	// diagnostics only.
	SourceFile string
}

// DetectClause is one node of a detect tree. The matcher string fields use
// the repository convention: a "=" prefix marks a literal, anything else is
// a regex. Multiple fields set on one node combine with AND; All, Any and
// Not nest clauses.
type DetectClause struct {
	All []DetectClause
	Any []DetectClause
	Not *DetectClause

	File   string
	Key    string
	Mutex  string
	IP     string
	Domain string
	URL    string

	API      *APICheck
	Argument *ArgumentCheck
}

// APICheck matches a hooked API call by name, optionally narrowed to a
// process.
type APICheck struct {
	Name    string
	Process string
}

// ArgumentCheck matches a call argument value, optionally narrowed by
// argument name, API, category and process.
type ArgumentCheck struct {
	Value    string
	Name     string
	API      string
	Category string
	Process  string
}
