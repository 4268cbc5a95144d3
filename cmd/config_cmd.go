package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tranvictor/hsocial/config"
)

var ConfigOverwrite bool

func settingsPath() string {
	if config.ConfigFile != "" {
		return config.ConfigFile
	}
	return config.DefaultPath()
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings in effect after file, env and flag overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		if done, err := printJSON(a.ui, a.settings); done {
			return err
		}
		content, err := yaml.Marshal(a.settings)
		if err != nil {
			return fmt.Errorf("couldn't marshal settings: %w", err)
		}
		a.ui.Info("# %s", settingsPath())
		_, err = a.ui.Writer().Write(content)
		return err
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		path := settingsPath()
		if path == "" {
			return fmt.Errorf("couldn't find the home directory, pass --config")
		}
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if !ConfigOverwrite && !a.ui.Confirm(fmt.Sprintf("%s already exists. Overwrite it with the defaults?", path), false) {
				a.ui.Warn("Kept %s.", path)
				return nil
			}
		case !errors.Is(err, os.ErrNotExist):
			return err
		}
		if err := config.Save(path, config.DefaultSettings()); err != nil {
			return err
		}
		a.ui.Success("Wrote default settings to %s.", path)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize hsocial settings",
}

func init() {
	initConfigCmd.Flags().BoolVar(&ConfigOverwrite, "overwrite", false, "Overwrite an existing file without asking.")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(configCmd)
}
