// Package scoring converts a finished scan session into a calibrated
// probability of purchase intent. The model is Bayesian log-odds updating:
// a phase-conditioned prior, per-signal weight-of-evidence contributions
// with diminishing returns, and interaction bonuses for corroborating
// pairs. Score is a pure function of the session: the same session always
// produces the same result.
package scoring

import (
	"math"
	"sort"

	"github.com/lingohawk/goldiscan/internal/phase"
	"github.com/lingohawk/goldiscan/internal/signal"
)

// Score computes the posterior intent probability, tier, confidence, and
// explainability set for a scan session.
func Score(session *signal.ScanSession) signal.ScoreResult {
	ph := phase.Classify(session.Signals)
	prior, anchor := priorFor(ph, session.Signals)

	logOdds := logit(prior)
	var contributions []signal.Contribution

	// The anchor signal's weight is folded into the prior; report its
	// contribution as the lift over the no-evidence floor.
	anchorCredited := false
	seen := make(map[signal.Type]int)
	for _, sig := range session.Signals {
		if !anchorCredited && sig.Type == anchor {
			anchorCredited = true
			contributions = append(contributions, signal.Contribution{
				Signal:  sig,
				LogOdds: logit(prior) - logit(priorNotFound),
			})
			continue
		}
		woe, ok := woeTable[sig.Type]
		if !ok {
			continue
		}
		// Evidence saturates: the k-th corroborating signal of a type
		// contributes half what the previous one did.
		contribution := woe / math.Pow(2, float64(seen[sig.Type]))
		seen[sig.Type]++
		logOdds += contribution
		contributions = append(contributions, signal.Contribution{
			Signal:  sig,
			LogOdds: contribution,
		})
	}

	counts := phase.Count(session.Signals)
	for _, pair := range interactionBonuses {
		if counts[pair.a] > 0 && counts[pair.b] > 0 {
			logOdds += pair.bonus
		}
	}

	pIntent := clamp01(sigmoid(logOdds))

	return signal.ScoreResult{
		Phase:               ph,
		PIntent:             pIntent,
		LogOdds:             logOdds,
		Tier:                TierFor(pIntent),
		Confidence:          confidenceFor(session, counts),
		ContributingSignals: contributing(contributions),
		Readiness:           readiness(session),
	}
}

// priorFor selects the phase-conditioned prior and the anchor type whose
// first occurrence the prior already accounts for. Launched and NotFound
// have no positive anchor: negative evidence always counts in full.
func priorFor(ph signal.Phase, signals []signal.Signal) (float64, signal.Type) {
	switch ph {
	case signal.PhasePreparing:
		return priorPreparing, signal.TypeDependencyInjection
	case signal.PhaseThinking:
		for _, s := range signals {
			if s.Type == signal.TypeGhostBranch {
				return priorThinkingGhost, signal.TypeGhostBranch
			}
		}
		return priorThinkingRFC, signal.TypeRFCDiscussion
	case signal.PhaseLaunched:
		return priorLaunched, ""
	default:
		return priorNotFound, ""
	}
}

// confidenceFor grades how well the scan coverage supports the score.
// A truncated session can never claim High: an incomplete scan cannot
// support a high-confidence claim no matter what it found.
func confidenceFor(session *signal.ScanSession, counts phase.Counts) signal.Confidence {
	if len(session.Signals) == 0 {
		return signal.ConfidenceLow
	}
	distinctPositive := 0
	for t, n := range counts {
		if n > 0 && woeTable[t] > 0 {
			distinctPositive++
		}
	}
	if session.Truncated {
		if distinctPositive == 0 && !session.HasSignal(signal.TypeLocaleInventory) {
			return signal.ConfidenceLow
		}
		return signal.ConfidenceMedium
	}
	if distinctPositive >= 2 && len(session.Signals) >= 2 {
		return signal.ConfidenceHigh
	}
	if distinctPositive >= 1 || session.HasSignal(signal.TypeLocaleInventory) {
		return signal.ConfidenceMedium
	}
	return signal.ConfidenceLow
}

// contributing filters out signals that barely moved the posterior and
// orders the rest by significance, then recency. This is the explainability
// output consumed by downstream narrative generation.
func contributing(all []signal.Contribution) []signal.Contribution {
	out := make([]signal.Contribution, 0, len(all))
	for _, c := range all {
		if math.Abs(c.LogOdds) > negligibleContribution {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Signal.Significance.Rank(), out[j].Signal.Significance.Rank()
		if ri != rj {
			return ri > rj
		}
		return out[i].Signal.DetectedAt.After(out[j].Signal.DetectedAt)
	})
	return out
}

func sigmoid(x float64) float64 {
	if x > 500 {
		return 1
	}
	if x < -500 {
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	p = math.Min(0.999, math.Max(0.001, p))
	return math.Log(p / (1 - p))
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
