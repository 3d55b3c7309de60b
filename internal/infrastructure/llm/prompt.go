package llm

import "fmt"

// AnalysisSystemPrompt instructs the model to return a single analysis object.
func AnalysisSystemPrompt() string {
	return `You review social media posts before they are published. Read the post and, when given, the post it replies to, and judge how likely it is to cause a flame war or be misread.

Respond with one JSON object only (no markdown, no commentary):
{
  "risk_level": "low|medium|high",
  "risk_score": <number between 0 and 1>,
  "risk_factors": ["<short reason>", ...],
  "suggestions": ["<short concrete improvement>", ...]
}`
}

// AnalysisUserPrompt wraps the post and its reply target.
func AnalysisUserPrompt(text, replyingTo string) string {
	if replyingTo == "" {
		replyingTo = "none"
	}
	return fmt.Sprintf("Post:\n%s\n\nReplying to:\n%s", text, replyingTo)
}

// PatternSystemPrompt instructs the model to return a single pattern object.
func PatternSystemPrompt() string {
	return `You detect argumentative discussion patterns in social media replies: inflaming conflict, sarcasm, baiting, spreading misinformation.

Respond with one JSON object only (no markdown, no commentary):
{
  "has_pattern": true|false,
  "pattern_type": "<short name, empty when none>",
  "confidence": <number between 0 and 1>,
  "explanation": "<one short sentence>"
}`
}

// PatternUserPrompt wraps the post, the conversation context and the platform.
func PatternUserPrompt(text, context, platform string) string {
	if context == "" {
		context = "none"
	}
	if platform == "" {
		platform = "unknown"
	}
	return fmt.Sprintf("Post:\n%s\n\nContext:\n%s\n\nPlatform: %s", text, context, platform)
}
