package cmd

import (
	"github.com/spf13/cobra"

	"binfetch/internal/logger"
)

// debug indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// rootCmd is the base command for the `binfetch` CLI.
var rootCmd = &cobra.Command{
	Use:   "binfetch",
	Short: "Fetch prebuilt ffmpeg, Bento4 and megatools binaries for every supported platform",

	// PersistentPreRun runs before any subcommand; it initializes the
	// logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

// Execute registers global flags and runs the CLI. It is the entry point
// invoked from main.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	_ = rootCmd.Execute()
}
