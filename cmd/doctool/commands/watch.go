package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"doctranslate-backend/internal/extract"
	"doctranslate-backend/internal/inbox"
	"doctranslate-backend/internal/processing"
	"doctranslate-backend/internal/translate"
)

var (
	watchDir         string
	watchOut         string
	watchLanguage    string
	watchSummarize   bool
	watchConcurrency int64
	watchFileTimeout time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Translate every document dropped into a folder",
	Long: `Watch a folder and run each new document through extraction and
translation. Results are written to the output folder as
<name>.<lang>.txt, plus <name>.summary.txt with --summarize.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "folder to watch (required)")
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "output folder (default <dir>/translated)")
	watchCmd.Flags().StringVarP(&watchLanguage, "lang", "l", "hi", "target language code")
	watchCmd.Flags().BoolVarP(&watchSummarize, "summarize", "s", false, "also write a summary")
	watchCmd.Flags().Int64Var(&watchConcurrency, "concurrency", 2, "documents processed at once")
	watchCmd.Flags().DurationVar(&watchFileTimeout, "file-timeout", 2*time.Minute, "time limit per document")
	_ = watchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !translate.IsSupported(watchLanguage) {
		return fmt.Errorf("unsupported language %q", watchLanguage)
	}
	outDir := watchOut
	if outDir == "" {
		outDir = filepath.Join(watchDir, "translated")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	handle := newWatchHandler(p, outDir, &syncWriter{w: cmd.OutOrStdout()})

	w, err := inbox.New(watchDir, handle, inbox.Options{
		MaxConcurrent: watchConcurrency,
		Accept:        acceptDocument,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "watching %s, writing to %s\n", watchDir, outDir)
	return w.Run(ctx)
}

// newWatchHandler returns the per-file callback run by the inbox workers.
func newWatchHandler(p *pipeline, outDir string, out io.Writer) inbox.Handler {
	return func(ctx context.Context, path string) error {
		ctx, cancel := context.WithTimeout(ctx, watchFileTimeout)
		defer cancel()
		result, err := p.run(ctx, path, watchLanguage, watchSummarize)
		if err != nil {
			return err
		}
		written, err := writeOutputs(outDir, path, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s -> %s\n", filepath.Base(path), strings.Join(written, ", "))
		return nil
	}
}

// syncWriter serializes writes from concurrent handlers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(b)
}

// acceptDocument keeps files whose extension maps to a supported type.
func acceptDocument(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return extract.IsSupported(extract.NormalizeMediaType("", path, nil))
}

type outputFile struct {
	name string
	text string
}

// writeOutputs stores the translation, and the summary when present, next
// to each other in outDir and returns the written file names.
func writeOutputs(outDir, source string, result processing.Result) ([]string, error) {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	files := []outputFile{{name: base + "." + result.Translation.Language + ".txt", text: result.Translation.TranslatedText}}
	if result.Summary != nil {
		files = append(files, outputFile{name: base + ".summary.txt", text: result.Summary.Summary})
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(outDir, f.name), []byte(f.text+"\n"), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, f.name)
	}
	return written, nil
}
