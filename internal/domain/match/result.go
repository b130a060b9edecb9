// Package match holds the engine that evaluates signatures against a trace
// and the ordered result set it produces.
package match

import (
	"sort"

	"github.com/sophialabs/sigtrace/internal/domain/check"
	"github.com/sophialabs/sigtrace/internal/domain/signature"
)

// Match records one signature that matched, with the evidence its checks
// collected. The JSON field names are load-bearing: downstream consumers
// parse them as-is.
type Match struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Severity    int              `json:"severity"`
	Alert       bool             `json:"alert"`
	Categories  []string         `json:"categories,omitempty"`
	Families    []string         `json:"families,omitempty"`
	References  []string         `json:"references,omitempty"`
	Data        []check.Evidence `json:"data"`
}

// ResultSet is the outcome of one engine run: matches ordered by severity
// descending then name ascending, plus the per-signature error record for
// signatures that failed to evaluate. It is created fresh per run and owned
// by the caller.
type ResultSet struct {
	Signatures []Match           `json:"signatures"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// TopSeverity returns the highest severity among the matches, or 0 when
// nothing matched.
func (rs *ResultSet) TopSeverity() int {
	top := 0
	for _, m := range rs.Signatures {
		if m.Severity > top {
			top = m.Severity
		}
	}
	return top
}

func newMatch(sig *signature.Signature, evidence []check.Evidence) Match {
	if evidence == nil {
		evidence = []check.Evidence{}
	}
	return Match{
		Name:        sig.Meta.Name,
		Description: sig.Meta.Description,
		Severity:    sig.Meta.Severity,
		Alert:       sig.Meta.Alert,
		Categories:  sig.Meta.Categories,
		Families:    sig.Meta.Families,
		References:  sig.Meta.References,
		Data:        evidence,
	}
}

// sortMatches orders by severity descending, then name ascending as the
// stable tie-break.
func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Severity != matches[j].Severity {
			return matches[i].Severity > matches[j].Severity
		}
		return matches[i].Name < matches[j].Name
	})
}
