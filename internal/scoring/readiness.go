package scoring

import (
	"time"

	"github.com/lingohawk/goldiscan/internal/signal"
)

// readiness computes the continuous readiness index and its components:
// preparation (infrastructure in place), velocity (how actively they work),
// launch gap (distance between infrastructure and shipped translations),
// and pain intensity (expressed frustration and discussion).
func readiness(session *signal.ScanSession) signal.Readiness {
	r := signal.Readiness{
		Preparation:   preparation(session),
		Velocity:      velocity(session),
		LaunchGap:     launchGap(session),
		PainIntensity: painIntensity(session),
	}
	r.Index = clamp01(r.Preparation*weightPreparation +
		r.Velocity*weightVelocity +
		r.LaunchGap*weightLaunchGap +
		r.PainIntensity*weightPain)
	return r
}

var infraTypes = []signal.Type{signal.TypeDependencyInjection, signal.TypeGhostBranch}

func preparation(session *signal.ScanSession) float64 {
	present := 0
	reposWithInfra := make(map[string]bool)
	for _, t := range infraTypes {
		if session.HasSignal(t) {
			present++
		}
	}
	for _, s := range session.Signals {
		for _, t := range infraTypes {
			if s.Type == t && s.Repository != "" {
				reposWithInfra[s.Repository] = true
			}
		}
	}
	score := float64(present) / float64(len(infraTypes))
	if len(reposWithInfra) >= 2 {
		score *= 1.3
	}
	return clamp01(score)
}

// velocity weights signal recency relative to session completion; ages
// against the wall clock would make the score drift between recomputations.
func velocity(session *signal.ScanSession) float64 {
	if len(session.Signals) == 0 {
		return 0
	}
	ref := session.CompletedAt
	if ref.IsZero() {
		ref = session.StartedAt
	}
	var recent7, recent30, recent90 int
	total := len(session.Signals)
	for _, s := range session.Signals {
		age := ref.Sub(s.DetectedAt)
		if age <= 7*24*time.Hour {
			recent7++
		}
		if age <= 30*24*time.Hour {
			recent30++
		}
		if age <= 90*24*time.Hour {
			recent90++
		}
	}
	v := float64(recent7)/float64(total)*0.50 +
		float64(recent30)/float64(total)*0.30 +
		float64(recent90)/float64(total)*0.20
	if session.HasSignal(signal.TypeGhostBranch) {
		v += 0.2
	}
	return clamp01(v)
}

func launchGap(session *signal.ScanSession) float64 {
	hasInfra := session.HasSignal(signal.TypeDependencyInjection) ||
		session.HasSignal(signal.TypeGhostBranch)
	hasTranslations := session.HasSignal(signal.TypeLocaleInventory)
	switch {
	case hasInfra && !hasTranslations:
		return 1.0 // the Goldilocks gap
	case hasInfra && hasTranslations:
		return 0.3
	case !hasInfra && !hasTranslations:
		return 0.0
	default:
		return 0.1
	}
}

func painIntensity(session *signal.ScanSession) float64 {
	pain := 0.0
	if n := session.CountByType(signal.TypeRFCDiscussion); n > 0 {
		pain += minFloat(0.4, float64(n)*0.15)
	}
	if n := session.CountByType(signal.TypeFrustration); n > 0 {
		pain += minFloat(0.3, float64(n)*0.10)
	}
	return clamp01(pain)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
