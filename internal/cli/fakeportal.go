package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/networkteam/cvsuite/config"
	"github.com/networkteam/cvsuite/internal/fakeportal"
)

func newFakePortalCommand(opts *rootOptions) *cobra.Command {
	var (
		addr       string
		loginDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fakeportal",
		Short: "Serve a local imitation of the portal",
		Long: `Serve a local imitation of the portal for trying the suite without the real application.

Every role with credentials in the environment can sign in. Point BASE_URL at the
printed address to run the acceptance suite against it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts := accountsFromConfig(opts.cfg)
			if len(accounts) == 0 {
				return fmt.Errorf("%w: no role has credentials configured", config.ErrMissingCredentials)
			}

			srv := &http.Server{
				Addr: addr,
				Handler: fakeportal.New(fakeportal.Options{
					Accounts:   accounts,
					LoginDelay: loginDelay,
					Logger:     opts.logger,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			opts.logger.Info("Fake portal listening", slog.String("addr", addr), slog.Int("accounts", len(accounts)))

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().DurationVar(&loginDelay, "login-delay", 0, "delay added to every sign in")
	return cmd
}

func accountsFromConfig(cfg *config.Config) []fakeportal.Account {
	return lo.Map(cfg.ConfiguredRoles(), func(role config.Role, _ int) fakeportal.Account {
		creds := cfg.Credentials(role)
		return fakeportal.Account{
			Email:    creds.Email,
			Password: creds.Password,
			Name:     lo.CoalesceOrEmpty(creds.Name, creds.Email),
			Role:     role,
		}
	})
}
