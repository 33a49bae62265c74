// Package command wires the weft CLI: a timeline viewer over recorded or
// live session streams.
package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "weft"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Weft - terminal viewer for agent session timelines",
		Long:          "Weft renders agent session streams as a live, scrollable terminal timeline.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("config", "", "config file (default ~/.config/weft/config.toml)")
	cmd.PersistentFlags().String("theme", "", "theme override (dusk, paper, mono)")
	cmd.PersistentFlags().String("log-file", "", "debug log file")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		NewViewCmd(),
		NewDemoCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}
