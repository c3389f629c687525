package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/hupe1980/turnstream/config"
)

const configLongDesc string = `Inspect or initialize the turnstream configuration.

Configuration is stored as config.toml in the config directory. Environment
variables with the TURNSTREAM_ prefix take precedence over file values.

Examples:
  turnstream config init
  turnstream config show`

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage turnstream configuration",
		Long:  configLongDesc,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration (API key redacted)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return toml.NewEncoder(os.Stdout).Encode(a.settings.Redacted())
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.toml with default values",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(filepath.Join(a.configDir, config.FileName)); err == nil && !force {
				return fmt.Errorf("%s already exists in %s (use --force)", config.FileName, a.configDir)
			}
			if err := config.Save(a.configDir, config.NewDefaultSettings()); err != nil {
				return err
			}
			fmt.Printf("  %s %s/%s\n", keyStyle.Render("Wrote"), a.configDir, config.FileName)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.toml")
	cmd.AddCommand(initCmd)

	return cmd
}
