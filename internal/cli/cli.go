// Package cli wires the ttk91 command-line interface: compile, run,
// disasm, debug and screenshot, built on cobra (spec §8).
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ttk91/ttk91/internal/cli/cmd"
	"github.com/ttk91/ttk91/internal/log"
)

// New builds the root command with every subcommand attached. Each
// subcommand owns its own flags; --verbose raises the shared log.LogLevel
// to Debug.
func New() *cobra.Command {
	root := &cobra.Command{
		Use:           "ttk91",
		Short:         "TTK-91 instructional machine: compiler, emulator, and debugger",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			log.LogLevel.Set(log.Debug)
		}
	}

	root.AddCommand(
		cmd.NewCompileCmd(),
		cmd.NewRunCmd(),
		cmd.NewDisasmCmd(),
		cmd.NewDebugCmd(),
		cmd.NewScreenshotCmd(),
	)

	return root
}
