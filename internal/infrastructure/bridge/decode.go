package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/sns-guardian/internal/domain"
)

type analysisPayload struct {
	RiskLevel   domain.RiskLevel `json:"risk_level"`
	RiskScore   *float64         `json:"risk_score"`
	RiskFactors []string         `json:"risk_factors"`
	Suggestions []string         `json:"suggestions"`
}

type patternPayload struct {
	HasPattern  *bool    `json:"has_pattern"`
	PatternType string   `json:"pattern_type"`
	Confidence  *float64 `json:"confidence"`
	Explanation string   `json:"explanation"`
}

// DecodeAnalysis classifies a bridge payload as an analysis result, a quota error,
// a provider error or an unparseable reply.
func DecodeAnalysis(payload []byte) (domain.AnalysisResult, error) {
	raw, err := unwrap(payload)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	var p analysisPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	if p.RiskLevel == "" && p.RiskScore == nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: risk_level missing", domain.ErrParse)
	}
	return domain.AnalysisResult{
		RiskLevel:   p.RiskLevel,
		RiskScore:   scoreOf(p.RiskLevel, p.RiskScore),
		RiskFactors: p.RiskFactors,
		Suggestions: p.Suggestions,
		Provenance:  domain.ProvenanceLLM,
	}.Normalize(), nil
}

// DecodePattern classifies a bridge payload as a pattern result.
func DecodePattern(payload []byte) (domain.PatternResult, error) {
	raw, err := unwrap(payload)
	if err != nil {
		return domain.PatternResult{}, err
	}
	var p patternPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.PatternResult{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	if p.HasPattern == nil {
		return domain.PatternResult{}, fmt.Errorf("%w: has_pattern missing", domain.ErrParse)
	}
	result := domain.PatternResult{
		HasPattern:  *p.HasPattern,
		PatternType: p.PatternType,
		Explanation: p.Explanation,
		Provenance:  domain.ProvenanceLLM,
	}
	if p.Confidence != nil {
		result.Confidence = *p.Confidence
	}
	return result.Normalize(), nil
}

// unwrap turns an error marker into a classified error and otherwise returns the JSON
// object carried by the payload, tolerating a string-wrapped or fenced reply.
func unwrap(payload []byte) ([]byte, error) {
	var text string
	if err := json.Unmarshal(payload, &text); err == nil {
		payload = []byte(text)
	}
	obj := extractObject(string(payload))
	if obj == "" {
		return nil, fmt.Errorf("%w: no JSON object in bridge payload", domain.ErrParse)
	}

	var marker errorMarker
	if err := json.Unmarshal([]byte(obj), &marker); err == nil && marker.Error != nil {
		if marker.Error.Code == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, marker.Error.Message)
		}
		return nil, fmt.Errorf("%w: provider error %d: %s", domain.ErrTransport, marker.Error.Code, marker.Error.Message)
	}
	return []byte(obj), nil
}

// extractObject strips markdown fences and returns the first balanced {...} block.
func extractObject(s string) string {
	s = stripFences(s)
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case c == '{' && !inString:
			depth++
		case c == '}' && !inString:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// scoreOf falls back to the level's band when the reply carries no score.
func scoreOf(level domain.RiskLevel, score *float64) float64 {
	if score == nil {
		return domain.ScoreForLevel(level)
	}
	return *score
}
