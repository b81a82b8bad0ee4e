package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/referer-parser/internal/config"
	"github.com/Aman-CERP/referer-parser/internal/output"
)

// projectConfigName is the file written by config init --project.
const projectConfigName = ".referer-parser.yaml"

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage referer-parser configuration files.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config (~/.config/referer-parser/config.yaml)
  3. Project config (.referer-parser.yaml in the working directory)
  4. Environment variables (REFPARSER_*)
  5. Command-line flags

--config <file> replaces the user and project files.`,
		Example: `  # Create user config from template
  referer-parser config init

  # Show effective configuration
  referer-parser config show

  # Undo the last config init --force
  referer-parser config restore`,
	}

	cmd.AddCommand(newConfigShowCmd(g))
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigShowCmd(g *globals) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())

			cfg, desc := g.config(), "defaults"
			if defaults {
				cfg = config.NewConfig()
			} else if len(cfg.Sources) > 0 {
				desc = "merged"
			}

			out.Statusf("#", "Configuration source: %s", desc)
			if !defaults {
				for _, src := range cfg.Sources {
					out.Statusf("", "  %s", src)
				}
			}
			out.Newline()

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "Show built-in defaults instead of the merged configuration")

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a configuration file from the template",
		Annotations: map[string]string{configOptional: "true"},
		Long:        `Create a configuration file from the commented template.

By default the user config is written. With --project the file is
written as .referer-parser.yaml in the working directory. An existing
file is kept unless --force is given, in which case it is backed up
first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initTarget(project)
			if err != nil {
				return err
			}
			return runConfigInit(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration (a backup is kept)")
	cmd.Flags().BoolVar(&project, "project", false, "Write the project config in the working directory")

	return cmd
}

func initTarget(project bool) (string, error) {
	if !project {
		return config.GetUserConfigPath(), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return filepath.Join(cwd, projectConfigName), nil
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	out := output.New(cmd.OutOrStdout())

	exists := false
	if _, err := os.Stat(path); err == nil {
		exists = true
	}

	if exists && !force {
		out.Warning("Configuration already exists")
		out.Statusf("", "Location: %s", path)
		out.Status("", "Use --force to replace it with the template (a backup is kept)")
		return nil
	}

	var backup string
	if exists {
		var err error
		backup, err = config.Backup(path)
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
	}

	if err := config.WriteTemplate(path); err != nil {
		return err
	}

	out.Success("Created configuration")
	out.Statusf("", "Location: %s", path)
	if backup != "" {
		out.Statusf("", "Backup: %s", backup)
	}
	out.Status("", "Run 'referer-parser config show' to verify")
	return nil
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print user config file path",
		Annotations: map[string]string{configOptional: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	var (
		project bool
		list    bool
	)

	cmd := &cobra.Command{
		Use:         "restore [backup]",
		Short:       "Restore a configuration backup",
		Annotations: map[string]string{configOptional: "true"},
		Long:        `Restore a backup made by 'config init --force' or an earlier restore.
Without an argument the newest backup is restored. The file being
replaced is itself backed up.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())

			path, err := initTarget(project)
			if err != nil {
				return err
			}

			backups, err := config.ListBackups(path)
			if err != nil {
				return err
			}

			if list {
				if len(backups) == 0 {
					out.Warningf("No backups of %s", path)
					return nil
				}
				for _, b := range backups {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), b)
				}
				return nil
			}

			var backup string
			switch {
			case len(args) == 1:
				backup = args[0]
			case len(backups) > 0:
				backup = backups[0]
			default:
				out.Warningf("No backups of %s", path)
				return nil
			}

			if err := config.Restore(path, backup); err != nil {
				return err
			}
			out.Successf("Restored %s", path)
			out.Statusf("", "From: %s", backup)
			return nil
		},
	}

	cmd.Flags().BoolVar(&project, "project", false, "Restore the project config in the working directory")
	cmd.Flags().BoolVar(&list, "list", false, "List backups, newest first")

	return cmd
}
