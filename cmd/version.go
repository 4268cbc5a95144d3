package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

const (
	VERSION string = "0.3.0"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show hsocial version",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		info := map[string]string{
			"version": VERSION,
			"go":      runtime.Version(),
			"network": a.network.GetName(),
		}
		if done, err := printJSON(a.ui, info); done {
			return err
		}
		a.ui.KeyValue([][2]string{
			{"Version", VERSION},
			{"Go", runtime.Version()},
			{"Network", a.network.GetName()},
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
