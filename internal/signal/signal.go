// Package signal defines the core domain types for goldiscan: the evidence
// units extracted from repository activity, the scan session that owns them,
// and the derived phase/score projections.
package signal

import (
	"fmt"
	"time"
)

// Type categorizes a unit of i18n evidence.
type Type string

const (
	// TypeDependencyInjection indicates an i18n library was added to a
	// dependency manifest while no translated locale content exists yet.
	TypeDependencyInjection Type = "dependency_injection"
	// TypeLocaleInventory indicates translated-string files were found.
	// This is evidence AGAINST the Goldilocks window.
	TypeLocaleInventory Type = "locale_inventory"
	// TypeGhostBranch indicates an active non-default branch carrying
	// unmerged i18n work.
	TypeGhostBranch Type = "ghost_branch"
	// TypeRFCDiscussion indicates an issue or PR thread discussing i18n
	// intent without accompanying locale code.
	TypeRFCDiscussion Type = "rfc_discussion"
	// TypeCompetitorConfig indicates a rival localization platform's
	// configuration file was found.
	TypeCompetitorConfig Type = "competitor_config"
	// TypeFrustration indicates commit or PR language expressing pain with
	// manual translation workflows.
	TypeFrustration Type = "frustration"
	// TypeGreenfieldOpportunity indicates a high-visibility repository with
	// no i18n activity at all.
	TypeGreenfieldOpportunity Type = "greenfield_opportunity"
)

// Significance grades how strongly a signal supports (or undermines) the
// Goldilocks interpretation.
type Significance string

const (
	SignificanceCritical Significance = "critical"
	SignificanceHigh     Significance = "high"
	SignificanceMedium   Significance = "medium"
	SignificanceLow      Significance = "low"
)

// Rank returns a sortable weight for a significance level. Higher is more
// significant; unknown levels sort last.
func (s Significance) Rank() int {
	switch s {
	case SignificanceCritical:
		return 4
	case SignificanceHigh:
		return 3
	case SignificanceMedium:
		return 2
	case SignificanceLow:
		return 1
	default:
		return 0
	}
}

// MaxExcerptLen bounds the raw excerpt carried on a signal. Full file
// contents are never stored on evidence.
const MaxExcerptLen = 240

// Excerpt truncates s to MaxExcerptLen runes.
func Excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxExcerptLen {
		return s
	}
	return string(runes[:MaxExcerptLen-1]) + "…"
}

// Signal is one immutable unit of evidence. Signals are append-only: once
// emitted they are never mutated, only aggregated.
type Signal struct {
	Type         Type         `json:"type"`
	Repository   string       `json:"repository"`
	Ref          string       `json:"ref"` // file path, branch name, or PR number
	Significance Significance `json:"significance"`
	DetectedAt   time.Time    `json:"detected_at"`
	Excerpt      string       `json:"excerpt,omitempty"`

	// Match details for downstream explanation.
	Libraries []string `json:"libraries,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// Phase is the coarse maturity classification derived from a signal set.
type Phase int

const (
	PhaseNotFound Phase = iota
	PhaseThinking
	PhasePreparing
	PhaseLaunched
)

func (p Phase) String() string {
	switch p {
	case PhaseNotFound:
		return "NotFound"
	case PhaseThinking:
		return "Thinking"
	case PhasePreparing:
		return "Preparing"
	case PhaseLaunched:
		return "Launched"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler so phases serialize by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NotFound":
		*p = PhaseNotFound
	case "Thinking":
		*p = PhaseThinking
	case "Preparing":
		*p = PhasePreparing
	case "Launched":
		*p = PhaseLaunched
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// Tier is the discrete outreach-priority bucket derived from p_intent.
type Tier string

const (
	TierHotLead      Tier = "HOT_LEAD"
	TierWarmLead     Tier = "WARM_LEAD"
	TierMonitor      Tier = "MONITOR"
	TierCold         Tier = "COLD"
	TierDisqualified Tier = "DISQUALIFIED"
)

// Confidence expresses how much the scan coverage supports the score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Contribution records how much one signal moved the posterior, in log-odds.
type Contribution struct {
	Signal  Signal  `json:"signal"`
	LogOdds float64 `json:"log_odds"`
}

// Readiness breaks the continuous readiness index into its weighted
// components.
type Readiness struct {
	Index         float64 `json:"index"`
	Preparation   float64 `json:"preparation"`
	Velocity      float64 `json:"velocity"`
	LaunchGap     float64 `json:"launch_gap"`
	PainIntensity float64 `json:"pain_intensity"`
}

// ScoreResult is a pure projection of a ScanSession: recomputable at any
// time from the signal set, never persisted independently of its session.
type ScoreResult struct {
	Phase               Phase          `json:"phase"`
	PIntent             float64        `json:"p_intent"`
	LogOdds             float64        `json:"log_odds"`
	Tier                Tier           `json:"tier"`
	Confidence          Confidence     `json:"confidence"`
	ContributingSignals []Contribution `json:"contributing_signals"`
	Readiness           Readiness      `json:"readiness"`
}
