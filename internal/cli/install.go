package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/networkteam/cvsuite/browser"
)

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the Playwright driver and Chromium",
		Args:  cobra.NoArgs,
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := browser.Install(); err != nil {
				return fmt.Errorf("installing browser: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Chromium installed")
			return nil
		},
	}
}
