package commands

import (
	"io"

	"github.com/spf13/cobra"

	"doctranslate-backend/internal/shared/telemetry"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "doctool",
	Short: "Extract, translate and summarize documents from the command line",
	Long: `doctool runs the document pipeline against local files without the
HTTP server. Translation uses the provider configured through the
environment and falls back to the built-in dictionaries.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			telemetry.SetOutput(io.Discard)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write structured logs to stdout")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
