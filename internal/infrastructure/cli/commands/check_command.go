package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/sns-guardian/internal/app"
	"github.com/doeshing/sns-guardian/internal/application/intercept"
	"github.com/doeshing/sns-guardian/internal/application/pipeline"
	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/dom"
	"github.com/doeshing/sns-guardian/internal/ports"
)

const replayWait = 5 * time.Second

// CheckInput is the post the check command submits.
type CheckInput struct {
	Host  string
	Text  string
	Reply string
}

// NewCheckCommand creates the check command: it lays out a scripted page for the host,
// attaches the guardian and presses submit, so the whole pipeline runs as it would live.
func NewCheckCommand(container *app.Container, surface ports.DecisionSurface, progress ports.ProgressIndicator) *cobra.Command {
	var in CheckInput

	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Run a post through the guardian pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Text == "" {
				in.Text = strings.Join(args, " ")
			}
			if strings.TrimSpace(in.Text) == "" {
				return errors.New(ErrTextRequired)
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			container.Start(ctx)

			posted, err := RunCheck(ctx, container, surface, progress, in)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), posted)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Text, "text", "", "Post text (defaults to the arguments)")
	cmd.Flags().StringVar(&in.Reply, "reply", "", "Text of the post being replied to")
	cmd.Flags().StringVar(&in.Host, "host", DefaultCheckHost, "Page host, selects the platform adapter")
	return cmd
}

// RunCheck submits in on a scripted page and reports whether the post went out.
// The container's loop must be running.
func RunCheck(ctx context.Context, container *app.Container, surface ports.DecisionSurface, progress ports.ProgressIndicator, in CheckInput) (bool, error) {
	host := in.Host
	if host == "" {
		host = DefaultCheckHost
	}
	adapter, err := container.Platforms.Detect(host)
	if err != nil {
		return false, err
	}

	doc := dom.NewDocument(host)
	doc.Add(in.Text, adapter.ComposeSelectors[0])
	if in.Reply != "" && len(adapter.ContextSelectors) > 0 {
		doc.Add(in.Reply, adapter.ContextSelectors[0])
	}
	submit := doc.Add("Post", adapter.SubmitSelectors[0])
	posted := make(chan struct{}, 1)
	submit.OnNative(func() {
		select {
		case posted <- struct{}{}:
		default:
		}
	})

	runner := &verdictRunner{next: container.Orchestrator(surface, progress), done: make(chan domain.Verdict, 1)}
	guard, err := intercept.Attach(ctx, container.AttachOptions(doc, runner))
	if err != nil {
		return false, err
	}
	defer guard.Detach()

	// The initial scan was posted by Attach, so this click lands after binding.
	if err := container.Loop.Do(ctx, func() { submit.UserClick() }); err != nil {
		return false, err
	}

	select {
	case verdict := <-runner.done:
		if verdict != domain.VerdictContinue {
			return false, nil
		}
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case <-posted:
		return true, nil
	case <-time.After(replayWait):
		return false, fmt.Errorf("post was approved but not replayed within %s", replayWait)
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func printOutcome(out io.Writer, posted bool) {
	if posted {
		fmt.Fprintln(out, MsgPosted)
		return
	}
	fmt.Fprintln(out, MsgCancelled)
}

// verdictRunner reports each run's verdict after the orchestrator returns it.
type verdictRunner struct {
	next intercept.Runner
	done chan domain.Verdict
}

func (r *verdictRunner) Run(ctx context.Context, run *pipeline.Run) (domain.Verdict, error) {
	verdict, err := r.next.Run(ctx, run)
	if err != nil {
		verdict = domain.VerdictCancel
	}
	select {
	case r.done <- verdict:
	default:
	}
	return verdict, err
}
