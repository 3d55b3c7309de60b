package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/sns-guardian/internal/domain"
)

var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")

	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	styleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	styleRed    = lipgloss.NewStyle().Foreground(colorRed)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
)

// RiskStyle returns the color for a risk level.
func RiskStyle(level domain.RiskLevel) lipgloss.Style {
	switch level {
	case domain.RiskHigh:
		return styleRed
	case domain.RiskMedium:
		return styleYellow
	case domain.RiskLow:
		return styleGreen
	default:
		return styleDim
	}
}

// RenderReview formats a review for the terminal.
func RenderReview(review domain.Review) string {
	var b strings.Builder

	title := "SNS Guardian review"
	if review.Platform != "" {
		title += " (" + review.Platform + ")"
	}
	b.WriteString(styleHeader.Render(title))
	b.WriteString("\n\n")

	if text := strings.TrimSpace(review.Text); text != "" {
		fmt.Fprintf(&b, "Post: %s\n\n", truncate(text, 280))
	}

	a := review.Analysis
	indicator := RiskStyle(a.RiskLevel).Render(fmt.Sprintf("● %s %d%%", strings.ToUpper(string(a.RiskLevel)), a.Percent()))
	fmt.Fprintf(&b, "Risk: %s %s\n", indicator, styleDim.Render("["+string(a.Provenance)+"]"))
	writeList(&b, "Factors", a.RiskFactors)
	writeList(&b, "Suggestions", a.Suggestions)

	if p := review.Pattern; p != nil {
		line := p.Summary()
		if p.HasPattern && p.PatternType != "" {
			line += ": " + p.PatternType
		}
		fmt.Fprintf(&b, "Pattern: %s\n", line)
		if p.Explanation != "" {
			fmt.Fprintf(&b, "  %s\n", styleDim.Render(p.Explanation))
		}
	}

	if len(review.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, step := range review.Steps {
			fmt.Fprintf(&b, "  %s %s", statusMark(step.Status), step.Label)
			if step.Detail != "" {
				fmt.Fprintf(&b, " %s", styleDim.Render("("+step.Detail+")"))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderHealth formats one doctor check.
func RenderHealth(check domain.HealthCheck) string {
	label := strings.ToUpper(string(check.Status))
	switch check.Status {
	case domain.HealthOK:
		label = styleGreen.Render(label)
	case domain.HealthWarn:
		label = styleYellow.Render(label)
	case domain.HealthError:
		label = styleRed.Render(label)
	}
	return fmt.Sprintf("[%s] %s - %s", label, check.Name, check.Details)
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func statusMark(status domain.StepStatus) string {
	switch status {
	case domain.StatusDone:
		return styleGreen.Render("[done]")
	case domain.StatusFailed:
		return styleRed.Render("[fail]")
	case domain.StatusSkipped:
		return styleDim.Render("[skip]")
	default:
		return styleDim.Render("[....]")
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
