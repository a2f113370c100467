package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"doctranslate-backend/internal/translate"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported target languages",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, lang := range translate.Languages() {
			fmt.Fprintf(out, "%s\t%s\t%s\n", lang.Code, lang.Name, lang.Header)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
