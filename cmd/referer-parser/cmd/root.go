// Package cmd provides the CLI commands for referer-parser.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/referer-parser/internal/config"
	perrors "github.com/Aman-CERP/referer-parser/internal/errors"
	"github.com/Aman-CERP/referer-parser/internal/logging"
	"github.com/Aman-CERP/referer-parser/internal/profiling"
	"github.com/Aman-CERP/referer-parser/pkg/version"
)

// configOptional marks commands that still run when the configuration
// cannot be loaded, so a broken file can be replaced or restored.
const configOptional = "config-optional"

// globals holds the persistent flags and the state set up for one run.
type globals struct {
	debug      bool
	configPath string
	profile    profiling.Options

	cfg            *config.Config
	session        *profiling.Session
	loggingCleanup func()
}

// NewRootCmd creates the root command for the referer-parser CLI.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "referer-parser",
		Short: "Classify HTTP referer URLs by medium, source and search term",
		Long: `referer-parser tells you where a visit came from.

Given a referer URL it reports the medium (search, social, email, internal
or unknown), the named source such as "Google" and, for search engines, the
search term the visitor typed.

Classification uses the bundled referers dataset unless a dataset file is
configured with --data or data.path.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetVersionTemplate("referer-parser version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging to ~/.referer-parser/logs/")
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Use this config file instead of the user and project files")
	cmd.PersistentFlags().StringVar(&g.profile.CPUPath, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.HeapPath, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.TracePath, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = g.start
	cmd.PersistentPostRunE = g.stop

	cmd.AddCommand(newClassifyCmd(g))
	cmd.AddCommand(newLookupCmd(g))
	cmd.AddCommand(newStreamCmd(g))
	cmd.AddCommand(newSourcesCmd(g))
	cmd.AddCommand(newValidateCmd(g))
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// start loads configuration, then sets up logging and profiling.
func (g *globals) start(cmd *cobra.Command, _ []string) error {
	cfg, err := g.loadConfig()
	if err != nil {
		if cmd.Annotations[configOptional] == "" {
			return err
		}
		cfg = config.NewConfig()
	}
	g.cfg = cfg

	if g.debug {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		g.loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug_logging_enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version),
			slog.String("command", cmd.CommandPath()))
	} else {
		slog.SetDefault(logging.NewStderrLogger(cmd.ErrOrStderr(), cfg.Logging.Level))
	}
	if err != nil {
		slog.Warn("config_load_failed_using_defaults", slog.String("error", err.Error()))
	}

	if g.profile.Enabled() {
		session, err := profiling.Start(g.profile)
		if err != nil {
			return err
		}
		g.session = session
	}
	return nil
}

// stop flushes profiles and closes the debug log.
func (g *globals) stop(_ *cobra.Command, _ []string) error {
	err := g.session.Stop()
	g.session = nil

	if g.loggingCleanup != nil {
		slog.Info("debug_logging_stopped")
		g.loggingCleanup()
		g.loggingCleanup = nil
	}

	if err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

func (g *globals) loadConfig() (*config.Config, error) {
	if g.configPath != "" {
		cfg, err := config.LoadFile(g.configPath)
		if errors.Is(err, config.ErrNotFound) {
			return nil, perrors.New(perrors.ErrCodeConfigNotFound, "config file not found", err).
				WithDetail("path", g.configPath).
				WithSuggestion("Run 'referer-parser config init --project' to create one")
		}
		if err != nil {
			return nil, perrors.ConfigError("failed to load config", err).WithDetail("path", g.configPath)
		}
		return cfg, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, perrors.ConfigError("failed to load config", err).
			WithSuggestion("Run 'referer-parser config show' after fixing the file, or check REFPARSER_* variables")
	}
	return cfg, nil
}

// config returns the loaded configuration, or defaults when a command runs
// without the root pre-run hook.
func (g *globals) config() *config.Config {
	if g.cfg == nil {
		g.cfg = config.NewConfig()
	}
	return g.cfg
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// A second signal terminates a command blocked reading stdin.
		<-ctx.Done()
		stop()
	}()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprint(root.ErrOrStderr(), perrors.FormatForCLI(err))
	}
	return err
}
