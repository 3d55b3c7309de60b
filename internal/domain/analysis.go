package domain

import (
	"fmt"
	"math"
	"strings"
)

// RiskLevel is the coarse bucket shown to the user.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether l is a known level.
func (l RiskLevel) Valid() bool {
	return l == RiskLow || l == RiskMedium || l == RiskHigh
}

// Provenance records which source produced a result.
type Provenance string

const (
	ProvenanceLocal    Provenance = "local"
	ProvenanceAPI      Provenance = "api"
	ProvenanceLLM      Provenance = "llm"
	ProvenanceCombined Provenance = "combined"
)

// Factors attached by the pipeline when the advanced path is unavailable.
const (
	FactorPlaceholder     = "quick local check"
	FactorLocalOnly       = "local check only (remote analysis disabled)"
	FactorDegraded        = "analysis unavailable, local check only"
	FactorPatternDegraded = "pattern detection unavailable, local check only"
)

// AnalysisRequest is the payload sent to a provider for risk analysis.
type AnalysisRequest struct {
	Text       string `json:"text"`
	Platform   string `json:"platform"`
	ReplyingTo string `json:"replying_to,omitempty"`
}

// PatternRequest is the payload sent to a provider for discussion-pattern detection.
type PatternRequest struct {
	Text     string `json:"text"`
	Context  string `json:"context"`
	Platform string `json:"platform"`
}

// AnalysisResult is the outcome of a risk analysis.
type AnalysisResult struct {
	RiskLevel   RiskLevel  `json:"risk_level"`
	RiskScore   float64    `json:"risk_score"`
	RiskFactors []string   `json:"risk_factors"`
	Suggestions []string   `json:"suggestions"`
	Provenance  Provenance `json:"-"`
}

// PatternResult is the outcome of discussion-pattern detection.
type PatternResult struct {
	HasPattern  bool       `json:"has_pattern"`
	PatternType string     `json:"pattern_type"`
	Confidence  float64    `json:"confidence"`
	Explanation string     `json:"explanation"`
	Provenance  Provenance `json:"-"`
}

// LevelForScore maps a score onto a level: <=0.25 low, <=0.45 medium, otherwise high.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score <= LowRiskCeiling:
		return RiskLow
	case score <= MediumRiskCeiling:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// ClampScore bounds a score to [0,1]. NaN becomes 0.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(1, score))
}

// ScoreForLevel is the score assumed for a level reported without one: the top of its band.
func ScoreForLevel(l RiskLevel) float64 {
	switch l {
	case RiskLow:
		return LowRiskCeiling
	case RiskMedium:
		return MediumRiskCeiling
	case RiskHigh:
		return 1
	default:
		return 0
	}
}

// Normalize clamps the score and derives the level from it, replacing whatever
// level the source reported.
func (r AnalysisResult) Normalize() AnalysisResult {
	r.RiskScore = ClampScore(r.RiskScore)
	r.RiskLevel = LevelForScore(r.RiskScore)
	return r
}

// WithFactor returns a copy with factor appended unless already present.
func (r AnalysisResult) WithFactor(factor string) AnalysisResult {
	r.RiskFactors = union(r.RiskFactors, []string{factor})
	return r
}

// Percent renders the score as a whole percentage.
func (r AnalysisResult) Percent() int {
	return int(math.Round(ClampScore(r.RiskScore) * 100))
}

// Summary is the short form used in workflow details, e.g. "medium (33%)".
func (r AnalysisResult) Summary() string {
	return fmt.Sprintf("%s (%d%%)", r.RiskLevel, r.Percent())
}

// Normalize clamps confidence and clears the type when no pattern was found.
func (p PatternResult) Normalize() PatternResult {
	p.Confidence = ClampScore(p.Confidence)
	if !p.HasPattern {
		p.PatternType = ""
	}
	return p
}

// Percent renders the confidence as a whole percentage.
func (p PatternResult) Percent() int {
	return int(math.Round(ClampScore(p.Confidence) * 100))
}

// Summary is the short form used in workflow details: "detected (47%)" or "none".
func (p PatternResult) Summary() string {
	if !p.HasPattern {
		return "none"
	}
	return fmt.Sprintf("detected (%d%%)", p.Percent())
}

// Combine merges a heuristic baseline with an advanced result.
// The score is the maximum of the two and the level is derived from it again.
// Factors keep baseline order first, suggestions keep advanced order first.
// Provenance stays as is when both sides share it and becomes combined otherwise,
// so Combine(a, a) == a for any normalized a.
func Combine(baseline, advanced AnalysisResult) AnalysisResult {
	score := math.Max(ClampScore(baseline.RiskScore), ClampScore(advanced.RiskScore))
	provenance := ProvenanceCombined
	if baseline.Provenance == advanced.Provenance {
		provenance = baseline.Provenance
	}
	return AnalysisResult{
		RiskLevel:   LevelForScore(score),
		RiskScore:   score,
		RiskFactors: union(baseline.RiskFactors, advanced.RiskFactors),
		Suggestions: union(advanced.Suggestions, baseline.Suggestions),
		Provenance:  provenance,
	}
}

func union(first, second []string) []string {
	seen := make(map[string]struct{}, len(first)+len(second))
	var out []string
	for _, list := range [][]string{first, second} {
		for _, item := range list {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
