package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lingohawk/goldiscan/internal/signal"
)

func sigs(types ...signal.Type) []signal.Signal {
	out := make([]signal.Signal, len(types))
	for i, t := range types {
		out[i] = signal.Signal{Type: t, Repository: "web"}
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		types []signal.Type
		want  signal.Phase
	}{
		{"no signals", nil, signal.PhaseNotFound},
		{"dependency only", []signal.Type{signal.TypeDependencyInjection}, signal.PhasePreparing},
		{"rfc only", []signal.Type{signal.TypeRFCDiscussion}, signal.PhaseThinking},
		{"ghost branch only", []signal.Type{signal.TypeGhostBranch}, signal.PhaseThinking},
		{"rfc and ghost", []signal.Type{signal.TypeRFCDiscussion, signal.TypeGhostBranch}, signal.PhaseThinking},
		{"dependency beats thinking", []signal.Type{signal.TypeRFCDiscussion, signal.TypeDependencyInjection, signal.TypeGhostBranch}, signal.PhasePreparing},
		{"locale inventory alone", []signal.Type{signal.TypeLocaleInventory}, signal.PhaseLaunched},
		{"locale overrides everything", []signal.Type{signal.TypeDependencyInjection, signal.TypeGhostBranch, signal.TypeRFCDiscussion, signal.TypeLocaleInventory}, signal.PhaseLaunched},
		{"frustration alone stays not-found", []signal.Type{signal.TypeFrustration}, signal.PhaseNotFound},
		{"competitor config alone stays not-found", []signal.Type{signal.TypeCompetitorConfig}, signal.PhaseNotFound},
		{"greenfield alone stays not-found", []signal.Type{signal.TypeGreenfieldOpportunity}, signal.PhaseNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(sigs(tt.types...)))
		})
	}
}

func TestClassifyIgnoresRepetition(t *testing.T) {
	// Phase depends on which types are present, not how often.
	once := Classify(sigs(signal.TypeGhostBranch))
	many := Classify(sigs(signal.TypeGhostBranch, signal.TypeGhostBranch, signal.TypeGhostBranch))
	assert.Equal(t, once, many)
}

func TestRulesCoverEverySignalSet(t *testing.T) {
	// The last rule is a catch-all; Classify can never fall through.
	last := Rules[len(Rules)-1]
	assert.True(t, last.Match(Counts{}))
	assert.Equal(t, signal.PhaseNotFound, last.Phase)
}
