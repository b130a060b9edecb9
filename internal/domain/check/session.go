// Package check provides the fixed set of query primitives signatures are
// composed from. Every check is a read-only scan of the trace: it returns a
// verdict and records each matching item as evidence, so the signature never
// has to re-scan the trace to report what matched.
package check

import (
	"context"
	"strings"

	"github.com/sophialabs/sigtrace/internal/domain/pattern"
	"github.com/sophialabs/sigtrace/internal/domain/trace"
)

// Evidence is one trace item that contributed to a match.
type Evidence struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ArgumentHit is the evidence shape produced by Argument checks.
type ArgumentHit struct {
	API     string `json:"api"`
	Process string `json:"process"`
	Name    string `json:"argument_name"`
	Value   string `json:"argument_value"`
}

// ArgumentFilter narrows which API calls an Argument check considers.
// Empty fields match any call. Process comparison is case-insensitive
// because process names are reported with inconsistent casing.
type ArgumentFilter struct {
	Name     string // specific argument name; "" means any argument
	API      string
	Category string
	Process  string
}

// Session binds one signature evaluation to a trace: it resolves patterns
// through the shared compile cache and accumulates evidence. A fresh Session
// is created per evaluation; the trace and cache it references are shared
// read-only. Checks honor the session context so a timed-out evaluation
// stops cooperatively.
type Session struct {
	ctx      context.Context
	trace    *trace.Trace
	cache    *pattern.Cache
	evidence []Evidence
}

// NewSession creates a session for evaluating one signature against t.
func NewSession(ctx context.Context, t *trace.Trace, cache *pattern.Cache) *Session {
	return &Session{ctx: ctx, trace: t, cache: cache}
}

// Evidence returns the items accumulated by all checks so far.
func (s *Session) Evidence() []Evidence {
	return s.evidence
}

// File scans the touched file paths. Literal patterns match on full path
// equality or path suffix; regexes search.
func (s *Session) File(p pattern.Pattern) (bool, error) {
	return s.scanStrings("file", s.trace.Files, p, suffixOrEqual)
}

// Key scans the touched registry keys with the same semantics as File.
func (s *Session) Key(p pattern.Pattern) (bool, error) {
	return s.scanStrings("registry_key", s.trace.RegistryKeys, p, suffixOrEqual)
}

// Mutex scans created synchronization objects. Literal patterns match on
// exact equality only; mutex names are not path-like.
func (s *Session) Mutex(p pattern.Pattern) (bool, error) {
	return s.scanStrings("mutex", s.trace.Mutexes, p, exact)
}

// IP scans contacted IP addresses with the same semantics as File.
func (s *Session) IP(p pattern.Pattern) (bool, error) {
	return s.scanStrings("ip", s.trace.Network.IPs, p, suffixOrEqual)
}

// Domain scans resolved domains with the same semantics as File.
func (s *Session) Domain(p pattern.Pattern) (bool, error) {
	return s.scanStrings("domain", s.trace.Network.Domains, p, suffixOrEqual)
}

// URL scans requested URLs with the same semantics as File.
func (s *Session) URL(p pattern.Pattern) (bool, error) {
	return s.scanStrings("url", s.trace.Network.URLs, p, suffixOrEqual)
}

// API scans hooked calls for an API name matching p. If process is
// non-empty, only calls from that process qualify (case-insensitive).
// Evidence carries the full matching call records.
func (s *Session) API(p pattern.Pattern, process string) (bool, error) {
	if err := s.ctx.Err(); err != nil {
		return false, err
	}
	m, err := s.cache.Get(p)
	if err != nil {
		return false, err
	}

	matched := false
	for _, call := range s.trace.APICalls {
		if process != "" && !strings.EqualFold(call.Process, process) {
			continue
		}
		if !m.Exact(call.API) {
			continue
		}
		matched = true
		s.evidence = append(s.evidence, Evidence{Type: "api", Value: call})
	}
	return matched, nil
}

// Argument scans call arguments for a value matching p, after narrowing
// calls by the filter. With Name set, only that argument is inspected;
// otherwise any argument of a qualifying call may match.
func (s *Session) Argument(p pattern.Pattern, f ArgumentFilter) (bool, error) {
	if err := s.ctx.Err(); err != nil {
		return false, err
	}
	m, err := s.cache.Get(p)
	if err != nil {
		return false, err
	}

	matched := false
	for _, call := range s.trace.APICalls {
		if f.API != "" && call.API != f.API {
			continue
		}
		if f.Category != "" && call.Category != f.Category {
			continue
		}
		if f.Process != "" && !strings.EqualFold(call.Process, f.Process) {
			continue
		}
		for name, value := range call.Arguments {
			if f.Name != "" && name != f.Name {
				continue
			}
			if !m.Exact(value) {
				continue
			}
			matched = true
			s.evidence = append(s.evidence, Evidence{Type: "argument", Value: ArgumentHit{
				API:     call.API,
				Process: call.Process,
				Name:    name,
				Value:   value,
			}})
		}
	}
	return matched, nil
}

type literalMode int

const (
	exact literalMode = iota
	suffixOrEqual
)

// scanStrings collects every item matching p; the verdict is true as soon as
// one matches, but the scan continues so the result reports all offenders.
func (s *Session) scanStrings(kind string, items []string, p pattern.Pattern, mode literalMode) (bool, error) {
	if err := s.ctx.Err(); err != nil {
		return false, err
	}
	m, err := s.cache.Get(p)
	if err != nil {
		return false, err
	}

	matched := false
	for _, item := range items {
		ok := false
		switch mode {
		case exact:
			ok = m.Exact(item)
		case suffixOrEqual:
			ok = m.SuffixOrEqual(item)
		}
		if !ok {
			continue
		}
		matched = true
		s.evidence = append(s.evidence, Evidence{Type: kind, Value: item})
	}
	return matched, nil
}
