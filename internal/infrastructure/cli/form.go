package cli

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// FormSurface asks with an interactive confirm form.
type FormSurface struct {
	mu sync.Mutex
}

// Decide shows the review as the form description. Cancel is the default choice.
func (f *FormSurface) Decide(ctx context.Context, review domain.Review) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var proceed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Post anyway?").
				Description(RenderReview(review)).
				Affirmative("Post").
				Negative("Cancel").
				Value(&proceed),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return proceed, nil
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// NewDecisionSurface picks the form on a terminal and the line prompter otherwise.
func NewDecisionSurface(in io.Reader, out io.Writer) ports.DecisionSurface {
	if in == nil && IsInteractive() {
		return &FormSurface{}
	}
	return NewPrompter(in, out)
}

var _ ports.DecisionSurface = (*FormSurface)(nil)
