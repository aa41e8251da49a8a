// Package cli implements the cvsuite command.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/networkteam/cvsuite"
	"github.com/networkteam/cvsuite/config"
)

type rootOptions struct {
	testEnv  string
	envDir   string
	authDir  string
	logLevel string

	logger *slog.Logger
	cfg    *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "cvsuite",
		Short:         "Housekeeping for the CV portal acceptance suite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&opts.testEnv, "env", "", "test environment, selects env/<env>.env (default: $TEST_ENV or prod)")
	root.PersistentFlags().StringVar(&opts.envDir, "env-dir", config.DefaultEnvDir, "directory with .env files")
	root.PersistentFlags().StringVar(&opts.authDir, "auth-dir", "", "session cache directory (default: $CVSUITE_AUTH_DIR or "+config.DefaultAuthDir+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default: $LOG_LEVEL or info)")

	root.AddCommand(
		newInstallCommand(),
		newAuthCommand(opts),
		newFakePortalCommand(opts),
	)
	return root
}

func (o *rootOptions) load(stderr io.Writer) error {
	cfg, err := config.Load(config.LoadOptions{TestEnv: o.testEnv, EnvDir: o.envDir})
	if err != nil {
		return err
	}
	if o.authDir != "" {
		cfg.AuthDir = o.authDir
	}

	level := o.logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	logger, err := newLogger(stderr, level)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	return nil
}

func (o *rootOptions) instance() (*cvsuite.Instance, error) {
	return cvsuite.NewWithOptions(cvsuite.Options{Config: o.cfg, Logger: o.logger})
}

// newLogger returns a slog logger writing human readable lines to w.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		var err error
		lvl, err = log.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(handler), nil
}

// rolesFromArgs parses role arguments. Without arguments it returns fallback.
func rolesFromArgs(args []string, fallback []config.Role) ([]config.Role, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	roles := make([]config.Role, 0, len(args))
	for _, arg := range args {
		role, err := config.ParseRole(arg)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}
