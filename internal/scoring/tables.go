package scoring

import "github.com/lingohawk/goldiscan/internal/signal"

// Weight-of-evidence table: log-odds contribution per signal type. Positive
// weights are evidence for purchase intent, negative weights against it.
// locale_inventory and competitor_config stay negative regardless of phase:
// either one means investment in a solution already exists.
var woeTable = map[signal.Type]float64{
	signal.TypeDependencyInjection:   1.8,
	signal.TypeGhostBranch:           1.5,
	signal.TypeRFCDiscussion:         1.2,
	signal.TypeFrustration:           0.9,
	signal.TypeGreenfieldOpportunity: 1.3,
	signal.TypeLocaleInventory:       -1.5,
	signal.TypeCompetitorConfig:      -1.8,
}

// Phase-conditioned priors. The first signal of the phase's anchor type is
// absorbed into the prior rather than counted again as evidence.
const (
	priorNotFound      = 0.05 // floor
	priorLaunched      = 0.10 // locale files shipped: starts low
	priorThinkingRFC   = 0.40 // discussion-only Thinking
	priorThinkingGhost = 0.55 // active WIP branch outranks talk
	priorPreparing     = 0.85 // the Goldilocks window
)

// Interaction bonuses for corroborating signal pairs. Applied once per pair
// present, on top of the per-signal weights.
var interactionBonuses = []struct {
	a, b  signal.Type
	bonus float64
}{
	{signal.TypeDependencyInjection, signal.TypeGhostBranch, 0.8},
	{signal.TypeDependencyInjection, signal.TypeRFCDiscussion, 0.6},
	{signal.TypeRFCDiscussion, signal.TypeGhostBranch, 0.5},
	{signal.TypeDependencyInjection, signal.TypeFrustration, 0.4},
}

// Tier cut points against p_intent, checked top-down.
var tierThresholds = []struct {
	min  float64
	tier signal.Tier
}{
	{0.75, signal.TierHotLead},
	{0.50, signal.TierWarmLead},
	{0.30, signal.TierMonitor},
	{0.15, signal.TierCold},
}

// TierFor maps a posterior probability to its outreach tier.
func TierFor(pIntent float64) signal.Tier {
	for _, t := range tierThresholds {
		if pIntent >= t.min {
			return t.tier
		}
	}
	return signal.TierDisqualified
}

// negligibleContribution is the log-odds threshold below which a signal is
// left out of the explainability set.
const negligibleContribution = 0.05

// Readiness component weights.
const (
	weightPreparation = 0.40
	weightVelocity    = 0.30
	weightLaunchGap   = 0.20
	weightPain        = 0.10
)
