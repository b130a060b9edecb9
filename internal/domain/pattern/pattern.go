// Package pattern implements literal and regular-expression matching over
// trace fields. Regex matching is an unanchored search; literal matching
// exposes distinct primitives because each trace field documents its own
// literal semantics (a mutex name is compared whole, a file path also
// matches on its suffix).
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Error reports a pattern that failed to compile.
type Error struct {
	Text string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Text, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Pattern is a tagged literal-or-regex matching rule. Matching is
// case-sensitive unless the regex itself carries an (?i) flag.
type Pattern struct {
	Text    string
	IsRegex bool
}

// Literal creates a pattern matched by string comparison.
func Literal(text string) Pattern {
	return Pattern{Text: text}
}

// Regex creates a pattern matched as a regular-expression search.
func Regex(text string) Pattern {
	return Pattern{Text: text, IsRegex: true}
}

// Matcher is a compiled pattern. It is stateless once built and safe to
// share across concurrent evaluations.
type Matcher struct {
	pattern Pattern
	re      *regexp.Regexp // nil for literal patterns
}

// Exact reports whether candidate matches the pattern whole: equality for
// literals, an unanchored search for regexes.
func (m *Matcher) Exact(candidate string) bool {
	if m.re != nil {
		return m.re.MatchString(candidate)
	}
	return candidate == m.pattern.Text
}

// SuffixOrEqual reports whether candidate equals or ends with a literal
// pattern, so rules can name a file by basename without the full path.
// Regexes search as usual.
func (m *Matcher) SuffixOrEqual(candidate string) bool {
	if m.re != nil {
		return m.re.MatchString(candidate)
	}
	return candidate == m.pattern.Text || strings.HasSuffix(candidate, m.pattern.Text)
}

type cacheKey struct {
	text  string
	regex bool
}

// Cache holds compiled matchers keyed by pattern text and regex flag. It is
// safe for concurrent use and is never invalidated during a run; many
// signatures compile the same patterns, so hits dominate.
type Cache struct {
	mu       sync.RWMutex
	matchers map[cacheKey]*Matcher
}

// NewCache creates an empty pattern cache.
func NewCache() *Cache {
	return &Cache{matchers: make(map[cacheKey]*Matcher)}
}

// Get returns the compiled matcher for p, compiling and caching it on first
// use. Invalid regexes return a *Error.
func (c *Cache) Get(p Pattern) (*Matcher, error) {
	key := cacheKey{text: p.Text, regex: p.IsRegex}

	c.mu.RLock()
	m, ok := c.matchers[key]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	m = &Matcher{pattern: p}
	if p.IsRegex {
		re, err := regexp.Compile(p.Text)
		if err != nil {
			return nil, &Error{Text: p.Text, Err: err}
		}
		m.re = re
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.matchers[key]; ok {
		return existing, nil
	}
	c.matchers[key] = m
	return m, nil
}

// Len returns the number of cached matchers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matchers)
}
