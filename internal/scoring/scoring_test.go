package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingohawk/goldiscan/internal/signal"
)

func newSession(types ...signal.Type) *signal.ScanSession {
	s := signal.NewSession("Acme", "acme")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, t := range types {
		s.AddSignal(signal.Signal{
			Type:         t,
			Repository:   "web",
			Significance: signal.SignificanceHigh,
			DetectedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	s.RepositoriesScanned = []string{"web"}
	s.Finalize(false)
	return s
}

func TestScoreEmptySession(t *testing.T) {
	result := Score(newSession())
	assert.Equal(t, signal.PhaseNotFound, result.Phase)
	assert.InDelta(t, 0.05, result.PIntent, 0.001)
	assert.Equal(t, signal.TierDisqualified, result.Tier)
	assert.Equal(t, signal.ConfidenceLow, result.Confidence)
	assert.Empty(t, result.ContributingSignals)
}

func TestScoreDependencyInjectionIsHotLead(t *testing.T) {
	// The canonical Goldilocks hit: i18next in package.json, nothing shipped.
	result := Score(newSession(signal.TypeDependencyInjection))
	assert.Equal(t, signal.PhasePreparing, result.Phase)
	assert.InDelta(t, 0.85, result.PIntent, 0.005)
	assert.Equal(t, signal.TierHotLead, result.Tier)
}

func TestScoreShippedTranslationsDisqualify(t *testing.T) {
	// Same dependency evidence, but a translated catalog exists: the
	// opportunity is gone and the score must collapse.
	withLocale := Score(newSession(signal.TypeDependencyInjection, signal.TypeLocaleInventory))
	withoutLocale := Score(newSession(signal.TypeDependencyInjection))

	assert.Equal(t, signal.PhaseLaunched, withLocale.Phase)
	assert.Less(t, withLocale.PIntent, withoutLocale.PIntent)
	assert.Equal(t, signal.TierDisqualified, withLocale.Tier)
}

func TestScoreLocaleInventoryStrictlyDecreases(t *testing.T) {
	sets := [][]signal.Type{
		{},
		{signal.TypeDependencyInjection},
		{signal.TypeGhostBranch},
		{signal.TypeRFCDiscussion},
		{signal.TypeDependencyInjection, signal.TypeGhostBranch},
	}
	for _, types := range sets {
		before := Score(newSession(types...))
		after := Score(newSession(append(types, signal.TypeLocaleInventory)...))
		assert.Less(t, after.PIntent, before.PIntent,
			"adding locale inventory to %v must lower the score", types)
	}
}

func TestScorePositiveSignalsOnlyIncrease(t *testing.T) {
	base := Score(newSession(signal.TypeRFCDiscussion))
	for _, extra := range []signal.Type{
		signal.TypeDependencyInjection,
		signal.TypeGhostBranch,
		signal.TypeFrustration,
		signal.TypeGreenfieldOpportunity,
	} {
		grown := Score(newSession(signal.TypeRFCDiscussion, extra))
		assert.GreaterOrEqual(t, grown.PIntent, base.PIntent,
			"adding %s must not lower the score", extra)
	}
}

func TestScoreLoneGhostBranchIsWarm(t *testing.T) {
	result := Score(newSession(signal.TypeGhostBranch))
	assert.Equal(t, signal.PhaseThinking, result.Phase)
	assert.InDelta(t, 0.55, result.PIntent, 0.005)
	assert.Equal(t, signal.TierWarmLead, result.Tier)
}

func TestScoreGhostBranchWithRFCOutranksLoneGhost(t *testing.T) {
	lone := Score(newSession(signal.TypeGhostBranch))
	corroborated := Score(newSession(signal.TypeGhostBranch, signal.TypeRFCDiscussion))
	assert.Greater(t, corroborated.PIntent, lone.PIntent)
	assert.Equal(t, signal.TierHotLead, corroborated.Tier)
}

func TestScoreGreenfieldOnlyIsCold(t *testing.T) {
	result := Score(newSession(signal.TypeGreenfieldOpportunity))
	assert.Equal(t, signal.PhaseNotFound, result.Phase)
	assert.Equal(t, signal.TierCold, result.Tier)
}

func TestScoreDeterministic(t *testing.T) {
	session := newSession(signal.TypeDependencyInjection, signal.TypeGhostBranch, signal.TypeFrustration)
	first := Score(session)
	second := Score(session)
	assert.Equal(t, first, second)
}

func TestScoreDiminishingReturns(t *testing.T) {
	// Piling on signals of one type saturates instead of growing linearly.
	two := Score(newSession(signal.TypeFrustration, signal.TypeFrustration))
	four := Score(newSession(signal.TypeFrustration, signal.TypeFrustration,
		signal.TypeFrustration, signal.TypeFrustration))
	gainSecondPair := four.PIntent - two.PIntent
	gainFirstPair := two.PIntent - Score(newSession()).PIntent
	assert.Less(t, gainSecondPair, gainFirstPair)
}

func TestScoreBounds(t *testing.T) {
	sessions := []*signal.ScanSession{
		newSession(),
		newSession(signal.TypeLocaleInventory, signal.TypeCompetitorConfig, signal.TypeLocaleInventory),
		newSession(signal.TypeDependencyInjection, signal.TypeGhostBranch,
			signal.TypeRFCDiscussion, signal.TypeFrustration, signal.TypeGreenfieldOpportunity),
	}
	for _, s := range sessions {
		result := Score(s)
		assert.GreaterOrEqual(t, result.PIntent, 0.0)
		assert.LessOrEqual(t, result.PIntent, 1.0)
		assert.GreaterOrEqual(t, result.Readiness.Index, 0.0)
		assert.LessOrEqual(t, result.Readiness.Index, 1.0)
	}
}

func TestConfidenceTruncatedNeverHigh(t *testing.T) {
	session := newSession(signal.TypeDependencyInjection, signal.TypeGhostBranch, signal.TypeRFCDiscussion)
	require.Equal(t, signal.ConfidenceHigh, Score(session).Confidence)

	session.Truncated = true
	assert.Equal(t, signal.ConfidenceMedium, Score(session).Confidence)
}

func TestConfidenceGrades(t *testing.T) {
	assert.Equal(t, signal.ConfidenceLow, Score(newSession()).Confidence)
	assert.Equal(t, signal.ConfidenceMedium, Score(newSession(signal.TypeDependencyInjection)).Confidence)
	assert.Equal(t, signal.ConfidenceHigh,
		Score(newSession(signal.TypeDependencyInjection, signal.TypeGhostBranch)).Confidence)
}

func TestContributingSignalsFilteredAndOrdered(t *testing.T) {
	session := signal.NewSession("Acme", "acme")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session.AddSignal(signal.Signal{
		Type: signal.TypeFrustration, Repository: "web",
		Significance: signal.SignificanceLow, DetectedAt: base,
	})
	session.AddSignal(signal.Signal{
		Type: signal.TypeDependencyInjection, Repository: "web",
		Significance: signal.SignificanceCritical, DetectedAt: base.Add(time.Minute),
	})
	session.Finalize(false)

	result := Score(session)
	require.NotEmpty(t, result.ContributingSignals)
	assert.Equal(t, signal.TypeDependencyInjection, result.ContributingSignals[0].Signal.Type)
	for _, c := range result.ContributingSignals {
		assert.Greater(t, absFloat(c.LogOdds), negligibleContribution)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		p    float64
		want signal.Tier
	}{
		{0.90, signal.TierHotLead},
		{0.75, signal.TierHotLead},
		{0.74, signal.TierWarmLead},
		{0.50, signal.TierWarmLead},
		{0.49, signal.TierMonitor},
		{0.30, signal.TierMonitor},
		{0.29, signal.TierCold},
		{0.15, signal.TierCold},
		{0.14, signal.TierDisqualified},
		{0.0, signal.TierDisqualified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.p), "p=%.2f", tt.p)
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
