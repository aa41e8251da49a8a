package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/networkteam/cvsuite/config"
)

func newAuthCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage cached login sessions",
	}
	cmd.AddCommand(
		newAuthWarmCommand(opts),
		newAuthStatusCommand(opts),
		newAuthClearCommand(opts),
	)
	return cmd
}

func newAuthWarmCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "warm [role...]",
		Short: "Log in once per role and cache the session",
		Long: `Log in once per role and store the browser storage state in the session cache.

Without arguments every role with credentials in the environment is warmed.
Roles that already have a cached session are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, err := rolesFromArgs(args, opts.cfg.ConfiguredRoles())
			if err != nil {
				return err
			}
			if len(roles) == 0 {
				return fmt.Errorf("%w: no role has credentials configured", config.ErrMissingCredentials)
			}

			inst, err := opts.instance()
			if err != nil {
				return err
			}
			defer func() {
				_ = inst.Close()
			}()

			var errs []error
			for _, role := range roles {
				start := time.Now()
				res, err := inst.EnsureSession(cmd.Context(), role)
				if err != nil {
					opts.logger.Error("Warming session failed", slog.String("role", role.String()), slog.Any("error", err))
					errs = append(errs, err)
					continue
				}
				state := lo.Ternary(res.Hit, "cached", "created")
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", role, state, res.Path, time.Since(start).Round(time.Millisecond))
			}
			return errors.Join(errs...)
		},
	}
}

func newAuthStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List cached sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inst, err := opts.instance()
			if err != nil {
				return err
			}
			entries, err := inst.Store.Entries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No cached sessions in %s\n", inst.Store.Dir())
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROLE\tENVIRONMENT\tSIZE\tMODIFIED\tPATH")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					e.Key.Role, e.Key.Environment, e.Size, e.ModTime.Format(time.DateTime), e.Path)
			}
			return tw.Flush()
		},
	}
}

func newAuthClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [role...]",
		Short: "Delete cached sessions to force a fresh login",
		Long: `Delete cached sessions of the selected environment.

Without arguments every cached session in the cache directory is deleted,
regardless of environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, err := rolesFromArgs(args, nil)
			if err != nil {
				return err
			}
			inst, err := opts.instance()
			if err != nil {
				return err
			}

			if len(roles) == 0 {
				if err := inst.Store.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", inst.Store.Dir())
				return nil
			}
			for _, role := range roles {
				key := inst.SessionKey(role)
				if err := inst.Store.Invalidate(key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", key)
			}
			return nil
		},
	}
}
