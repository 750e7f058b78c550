// Package phase reduces a signal set to a maturity phase using an ordered
// rule table. Precedence lives in the table, not in nested conditionals, so
// each rule can be audited and tested on its own.
package phase

import "github.com/lingohawk/goldiscan/internal/signal"

// Counts is the per-type tally a rule predicate matches against.
type Counts map[signal.Type]int

// Count builds a tally from a signal list.
func Count(signals []signal.Signal) Counts {
	c := make(Counts, len(signals))
	for _, s := range signals {
		c[s.Type]++
	}
	return c
}

// Rule maps a predicate over the tally to a phase.
type Rule struct {
	Name  string
	Phase signal.Phase
	Match func(Counts) bool
}

// Rules is the precedence table, evaluated top-down; the first matching rule
// wins. Launched is checked first: locale files found at all is the least
// ambiguous evidence and must never be masked by weaker signals.
var Rules = []Rule{
	{
		Name:  "launched",
		Phase: signal.PhaseLaunched,
		Match: func(c Counts) bool {
			return c[signal.TypeLocaleInventory] > 0
		},
	},
	{
		Name:  "preparing",
		Phase: signal.PhasePreparing,
		Match: func(c Counts) bool {
			return c[signal.TypeDependencyInjection] > 0
		},
	},
	{
		// A lone ghost branch classifies as Thinking alongside RFC
		// discussions; the scorer separates the two with a higher prior
		// for active branch work.
		Name:  "thinking",
		Phase: signal.PhaseThinking,
		Match: func(c Counts) bool {
			return c[signal.TypeRFCDiscussion] > 0 || c[signal.TypeGhostBranch] > 0
		},
	},
	{
		Name:  "not-found",
		Phase: signal.PhaseNotFound,
		Match: func(Counts) bool { return true },
	},
}

// Classify is a pure function from a signal set to its phase.
func Classify(signals []signal.Signal) signal.Phase {
	counts := Count(signals)
	for _, rule := range Rules {
		if rule.Match(counts) {
			return rule.Phase
		}
	}
	return signal.PhaseNotFound
}
