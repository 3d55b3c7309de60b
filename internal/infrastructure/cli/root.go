package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/sns-guardian/internal/app"
	"github.com/doeshing/sns-guardian/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	surface := NewDecisionSurface(nil, nil)
	progress := NewSpinner(os.Stderr)

	root := &cobra.Command{
		Use:   "guardian",
		Short: "SNS Guardian - think twice before you post",
		Long: "SNS Guardian intercepts the submit button on social sites, scores the pending post " +
			"and asks for confirmation before letting it through.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(commands.NewCheckCommand(container, surface, progress))
	root.AddCommand(commands.NewBrowseCommand(container, surface, progress))
	root.AddCommand(commands.NewServeCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container, RenderHealth))
	root.AddCommand(commands.NewVersionCommand())
	return root, nil
}
