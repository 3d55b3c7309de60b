package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Prompter is a line-based decision surface on stdin/stdout. Reviews from concurrent runs
// are shown one at a time.
type Prompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Decide renders the review and asks whether to post anyway. Anything but y/yes cancels,
// and so does end of input.
func (p *Prompter) Decide(ctx context.Context, review domain.Review) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, RenderReview(review))
	fmt.Fprint(p.out, "\nPost anyway? [y/N]: ")

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

var _ ports.DecisionSurface = (*Prompter)(nil)
