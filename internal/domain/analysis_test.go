package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLevelForScoreBreakpoints(t *testing.T) {
	cases := map[float64]RiskLevel{
		0:    RiskLow,
		0.25: RiskLow,
		0.26: RiskMedium,
		0.45: RiskMedium,
		0.46: RiskHigh,
		1:    RiskHigh,
	}
	for score, want := range cases {
		if got := LevelForScore(score); got != want {
			t.Fatalf("LevelForScore(%v) = %s, want %s", score, got, want)
		}
	}
}

func TestCombineTakesMaxAndUnions(t *testing.T) {
	baseline := AnalysisResult{
		RiskLevel:   RiskLow,
		RiskScore:   0.2,
		RiskFactors: []string{"a", "b"},
		Suggestions: []string{"s1"},
		Provenance:  ProvenanceLocal,
	}
	advanced := AnalysisResult{
		RiskLevel:   RiskMedium,
		RiskScore:   0.4,
		RiskFactors: []string{"b", "c"},
		Suggestions: []string{"s2", "s1"},
		Provenance:  ProvenanceAPI,
	}

	got := Combine(baseline, advanced)
	want := AnalysisResult{
		RiskLevel:   RiskMedium,
		RiskScore:   0.4,
		RiskFactors: []string{"a", "b", "c"},
		Suggestions: []string{"s2", "s1"},
		Provenance:  ProvenanceCombined,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Combine mismatch (-want +got):\n%s", diff)
	}

	lower := advanced
	lower.RiskScore = 0.1
	if got := Combine(baseline, lower); got.RiskScore != 0.2 || got.RiskLevel != RiskLow {
		t.Fatalf("baseline score should win: %+v", got)
	}
}

func TestCombineIsIdempotent(t *testing.T) {
	baseline := AnalysisResult{RiskScore: 0.3, RiskFactors: []string{"x"}, Suggestions: []string{"y"}}
	advanced := AnalysisResult{RiskScore: 0.7, RiskFactors: []string{"z"}, Suggestions: []string{"w"}}

	once := Combine(baseline, advanced)
	twice := Combine(baseline, once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("Combine not idempotent (-once +twice):\n%s", diff)
	}
}

func TestCombineWithItselfIsIdentity(t *testing.T) {
	cases := map[string]AnalysisResult{
		"local":    {RiskLevel: RiskMedium, RiskScore: 0.33, RiskFactors: []string{"x"}, Suggestions: []string{"y"}, Provenance: ProvenanceLocal},
		"api":      {RiskLevel: RiskHigh, RiskScore: 0.8, RiskFactors: []string{"tone", "link"}, Suggestions: []string{"wait"}, Provenance: ProvenanceAPI},
		"combined": {RiskLevel: RiskLow, RiskScore: 0.1, Provenance: ProvenanceCombined},
	}
	for name, a := range cases {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(a, Combine(a, a)); diff != "" {
				t.Fatalf("Combine(a, a) != a (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeRepairsRemoteResults(t *testing.T) {
	cases := []struct {
		name      string
		in        AnalysisResult
		wantLevel RiskLevel
		wantScore float64
	}{
		{"unknown level, score over range", AnalysisResult{RiskLevel: "severe", RiskScore: 1.7}, RiskHigh, 1},
		{"level disagrees with score", AnalysisResult{RiskLevel: RiskHigh, RiskScore: 0.1}, RiskLow, 0.1},
		{"negative score", AnalysisResult{RiskLevel: RiskMedium, RiskScore: -3}, RiskLow, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.RiskLevel != tc.wantLevel || got.RiskScore != tc.wantScore {
				t.Fatalf("Normalize() = %+v, want %s at %v", got, tc.wantLevel, tc.wantScore)
			}
		})
	}

	for _, level := range []RiskLevel{RiskLow, RiskMedium, RiskHigh} {
		if got := LevelForScore(ScoreForLevel(level)); got != level {
			t.Fatalf("LevelForScore(ScoreForLevel(%s)) = %s", level, got)
		}
	}

	p := PatternResult{HasPattern: false, PatternType: "stale", Confidence: -2}.Normalize()
	if p.PatternType != "" || p.Confidence != 0 {
		t.Fatalf("PatternResult.Normalize() = %+v", p)
	}
}

func TestSummaries(t *testing.T) {
	if got := (AnalysisResult{RiskLevel: RiskMedium, RiskScore: 0.333}).Summary(); got != "medium (33%)" {
		t.Fatalf("analysis summary = %q", got)
	}
	if got := (PatternResult{HasPattern: true, Confidence: 0.47}).Summary(); got != "detected (47%)" {
		t.Fatalf("pattern summary = %q", got)
	}
	if got := (PatternResult{}).Summary(); got != "none" {
		t.Fatalf("empty pattern summary = %q", got)
	}
}
