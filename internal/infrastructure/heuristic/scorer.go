// Package heuristic implements the local, offline risk scorer. It never fails and never
// touches the network, so the pipeline always has a baseline to fall back to.
package heuristic

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/doeshing/sns-guardian/internal/domain"
)

// Default word lists, used when the configuration leaves a list empty.
var (
	DefaultHostileWords = []string{"kill", "死ね", "バカ", "最低"}
	DefaultDenialWords  = []string{"嘘", "liar", "fake", "まちがい", "間違い", "not true"}
	DefaultInsultWords  = []string{"馬鹿", "ばか", "stupid", "idiot", "crazy", "dumb"}
	DefaultMockeryWords = []string{"lol", "草", "www", "lmao", "sarcasm"}
)

// Analysis factors and suggestions.
const (
	factorLongText  = "long posts are easy to misread"
	factorStrong    = "strong emphasis or shouting"
	factorHostile   = "hostile wording detected"
	factorReply     = "replies tend to get heated"
	factorLink      = "shared links can be misread out of context"
	suggestReread   = "read it once more and soften emotional wording"
	suggestNarrow   = "avoid addressing or generalizing about people"
	suggestWait     = "wait five minutes before posting"
	signalEmphasis  = "heavy exclamation or question marks"
	signalDenial    = "contradiction or denial"
	signalInsult    = "insulting language"
	signalMockery   = "mockery or sarcasm"
)

var (
	shoutingRe = regexp.MustCompile(`!{2,}|[A-Z]{6,}`)
	emphasisRe = regexp.MustCompile(`!!+|\?\?+`)
)

// Scorer is the pure heuristic scorer. The zero value is not usable; build one with New.
type Scorer struct {
	hostile *regexp.Regexp
	denial  *regexp.Regexp
	insult  *regexp.Regexp
	mockery *regexp.Regexp
}

// New builds a scorer from the configured word lists, falling back to the defaults
// for any empty list.
func New(cfg domain.HeuristicSettings) *Scorer {
	return &Scorer{
		hostile: wordsPattern(orDefault(cfg.HostileWords, DefaultHostileWords)),
		denial:  wordsPattern(orDefault(cfg.DenialWords, DefaultDenialWords)),
		insult:  wordsPattern(orDefault(cfg.InsultWords, DefaultInsultWords)),
		mockery: wordsPattern(orDefault(cfg.MockeryWords, DefaultMockeryWords)),
	}
}

// Analyze scores a pending post. The result always has at least one factor and one
// suggestion, and its score is in [0,1].
func (s *Scorer) Analyze(req domain.AnalysisRequest) domain.AnalysisResult {
	text := req.Text
	lower := strings.ToLower(text)
	score := domain.BaseRiskScore
	var factors []string

	if utf8.RuneCountInString(text) > domain.LongTextThreshold {
		score += domain.LongTextIncrement
		factors = append(factors, factorLongText)
	}
	if shoutingRe.MatchString(text) {
		score += domain.ToneIncrement
		factors = append(factors, factorStrong)
	}
	if s.hostile != nil && s.hostile.MatchString(lower) {
		score += domain.HostileIncrement
		factors = append(factors, factorHostile)
	}
	if strings.TrimSpace(req.ReplyingTo) != "" {
		score += domain.ReplyIncrement
		factors = append(factors, factorReply)
	}
	if strings.Contains(text, "http") {
		score += domain.LinkIncrement
		factors = append(factors, factorLink)
	}
	if len(factors) == 0 {
		factors = append(factors, domain.FactorPlaceholder)
	}

	score = domain.ClampScore(roundScore(score))
	level := domain.LevelForScore(score)
	suggestions := []string{suggestReread, suggestNarrow}
	if level != domain.RiskLow {
		suggestions = append(suggestions, suggestWait)
	}

	return domain.AnalysisResult{
		RiskLevel:   level,
		RiskScore:   score,
		RiskFactors: factors,
		Suggestions: suggestions,
		Provenance:  domain.ProvenanceLocal,
	}
}

// DetectPattern looks for argumentative signals across the post and its reply context.
func (s *Scorer) DetectPattern(req domain.PatternRequest) domain.PatternResult {
	combined := strings.ToLower(req.Text + " " + req.Context)

	var signals []string
	if emphasisRe.MatchString(combined) {
		signals = append(signals, signalEmphasis)
	}
	if s.denial != nil && s.denial.MatchString(combined) {
		signals = append(signals, signalDenial)
	}
	if s.insult != nil && s.insult.MatchString(combined) {
		signals = append(signals, signalInsult)
	}
	if s.mockery != nil && s.mockery.MatchString(combined) {
		signals = append(signals, signalMockery)
	}

	if len(signals) == 0 {
		return domain.PatternResult{
			Confidence:  domain.PatternNoneConf,
			Explanation: "local check: nothing notable",
			Provenance:  domain.ProvenanceLocal,
		}
	}
	confidence := math.Min(domain.PatternMaxConf, domain.PatternBaseConf+domain.PatternStepConf*float64(len(signals)))
	return domain.PatternResult{
		HasPattern:  true,
		PatternType: signals[0],
		Confidence:  roundScore(confidence),
		Explanation: "local check: " + strings.Join(signals, " / "),
		Provenance:  domain.ProvenanceLocal,
	}
}

// roundScore trims float noise from repeated additions so 0.08+0.12+0.05 reads as 0.25.
func roundScore(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// wordsPattern matches any of words in lowercased text. An edge of a word that is an
// ASCII letter or digit must sit on a word boundary, so "kill" does not match "skill";
// CJK words match anywhere.
func wordsPattern(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if w == "" {
			continue
		}
		q := regexp.QuoteMeta(w)
		if isWordByte(w[0]) {
			q = `\b` + q
		}
		if isWordByte(w[len(w)-1]) {
			q += `\b`
		}
		quoted = append(quoted, q)
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile("(" + strings.Join(quoted, "|") + ")")
}

func orDefault(words, fallback []string) []string {
	if len(words) == 0 {
		return fallback
	}
	return words
}

func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
