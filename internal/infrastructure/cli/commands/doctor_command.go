package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/sns-guardian/internal/app"
	"github.com/doeshing/sns-guardian/internal/domain"
)

// NewDoctorCommand creates the doctor command. render formats one check line.
func NewDoctorCommand(container *app.Container, render func(domain.HealthCheck) string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, providers and browser setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container, render)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container, render func(domain.HealthCheck) string) error {
	if container.DoctorService == nil {
		return errors.New(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(cmd.Context())

	// Display report even if there were errors
	for _, check := range report.Checks {
		fmt.Fprintln(out, render(check))
	}

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if report.Worst() == domain.HealthError {
		return errors.New(ErrDoctorChecksFailed)
	}
	return nil
}
