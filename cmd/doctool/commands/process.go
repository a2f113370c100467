package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"doctranslate-backend/internal/documents"
)

var (
	processFile      string
	processLanguage  string
	processSummarize bool
	processJSON      bool
	processTimeout   time.Duration
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract a local file and translate it",
	Long:  "Extract the text of a local file, translate it into the target language and optionally summarize it.",
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processFile, "file", "f", "", "path to the document (required)")
	processCmd.Flags().StringVarP(&processLanguage, "lang", "l", "hi", "target language code")
	processCmd.Flags().BoolVarP(&processSummarize, "summarize", "s", false, "also produce a summary")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "print the result as JSON")
	processCmd.Flags().DurationVar(&processTimeout, "timeout", 2*time.Minute, "overall time limit")
	_ = processCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), processTimeout)
	defer cancel()

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	result, err := p.run(ctx, processFile, processLanguage, processSummarize)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if processJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"document":    documents.ToResponse(result.Document),
			"translation": result.Translation,
			"summary":     result.Summary,
		})
	}

	fmt.Fprintln(out, result.Translation.TranslatedText)
	if result.Summary != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, result.Summary.Summary)
	}
	return nil
}
