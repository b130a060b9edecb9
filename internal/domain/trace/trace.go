// Package trace defines the normalized behavioral record of one sandboxed
// execution, plus a ring buffer of recent engine run summaries.
package trace

import "time"

// APICall is one hooked API invocation observed during execution.
type APICall struct {
	Process   string            `json:"process"`
	API       string            `json:"api"`
	Category  string            `json:"category,omitempty"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// Network holds the endpoints contacted during execution.
type Network struct {
	IPs     []string `json:"ips,omitempty"`
	Domains []string `json:"domains,omitempty"`
	URLs    []string `json:"urls,omitempty"`
}

// Trace is the assembled record of one analysis run, handed to the engine by
// the sandbox collaborator. It is never mutated after construction; all
// checks are read-only queries, so a single Trace may be shared by reference
// across concurrent evaluations.
type Trace struct {
	Files        []string  `json:"files,omitempty"`
	RegistryKeys []string  `json:"registry_keys,omitempty"`
	Mutexes      []string  `json:"mutexes,omitempty"`
	APICalls     []APICall `json:"api_calls,omitempty"`
	Network      Network   `json:"network"`
}

// RunSummary records the outcome of one engine run for the admin endpoint.
type RunSummary struct {
	Timestamp   time.Time `json:"timestamp"`
	Matched     int       `json:"matched"`
	Errors      int       `json:"errors"`
	DurationMs  int64     `json:"duration_ms"`
	TopSeverity int       `json:"top_severity"`
}
