package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"doctranslate-backend/internal/documents"
	"doctranslate-backend/internal/processing"
	"doctranslate-backend/internal/shared/telemetry"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TRANSLATION_PROVIDER", "none")
	t.Setenv("OCR_URL", "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		processJSON = false
		processSummarize = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLanguagesCommand(t *testing.T) {
	out, err := runRoot(t, "languages")
	if err != nil {
		t.Fatalf("languages: %v", err)
	}
	if !strings.Contains(out, "hi\tHindi") || !strings.Contains(out, "gu\tGujarati") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestProcessCommandJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("Hello. Thank you."), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out, err := runRoot(t, "process", "--file", path, "--lang", "bn", "--summarize", "--json")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	var payload struct {
		Document struct {
			Processed bool `json:"processed"`
		} `json:"document"`
		Translation struct {
			Language string `json:"language"`
		} `json:"translation"`
		Summary *struct {
			Summary string `json:"summary"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if !payload.Document.Processed || payload.Translation.Language != "bn" || payload.Summary == nil {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestProcessCommandRejectsUnknownLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("Hello."), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := runRoot(t, "process", "-f", path, "-l", "xx"); err == nil {
		t.Fatalf("expected unsupported language error")
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	result := processing.Result{
		Translation: documents.Translation{Language: "ta", TranslatedText: "வணக்கம்"},
		Summary:     &documents.Summary{Language: "original", Summary: "Summary: Hello"},
	}
	written, err := writeOutputs(dir, "/inbox/letter.pdf", result)
	if err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}
	if strings.Join(written, ",") != "letter.ta.txt,letter.summary.txt" {
		t.Fatalf("unexpected files %v", written)
	}
	data, err := os.ReadFile(filepath.Join(dir, "letter.ta.txt"))
	if err != nil || string(data) != "வணக்கம்\n" {
		t.Fatalf("unexpected translation file %q, %v", data, err)
	}
}

func TestAcceptDocument(t *testing.T) {
	for path, want := range map[string]bool{
		"/in/a.pdf":      true,
		"/in/b.docx":     true,
		"/in/c.txt":      true,
		"/in/.d.txt.swp": false,
		"/in/e.exe":      false,
		"/in/translated": false,
	} {
		if got := acceptDocument(path); got != want {
			t.Fatalf("acceptDocument(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatchRejectsUnknownLanguage(t *testing.T) {
	if _, err := runRoot(t, "watch", "--dir", t.TempDir(), "--lang", "xx"); err == nil {
		t.Fatalf("expected unsupported language error")
	}
}

func newTestPipeline(t *testing.T) *pipeline {
	t.Helper()
	t.Setenv("TRANSLATION_PROVIDER", "none")
	t.Setenv("OCR_URL", "")
	t.Cleanup(telemetry.SetOutput(io.Discard))
	p, err := newPipeline(context.Background())
	if err != nil {
		t.Fatalf("newPipeline: %v", err)
	}
	return p
}

func TestPipelineRunsUseFreshRepo(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("doc%d.txt", i))
		if err := os.WriteFile(path, []byte("Hello."), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		result, err := p.run(context.Background(), path, "hi", false)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if result.Document.ID != 1 {
			t.Fatalf("run %d: expected a fresh repo, got document id %d", i, result.Document.ID)
		}
	}
}

func TestWatchHandlerConcurrentOutput(t *testing.T) {
	p := newTestPipeline(t)
	prevLang, prevTimeout := watchLanguage, watchFileTimeout
	watchLanguage, watchFileTimeout = "ta", time.Minute
	t.Cleanup(func() { watchLanguage, watchFileTimeout = prevLang, prevTimeout })

	in, out := t.TempDir(), t.TempDir()
	var buf bytes.Buffer
	handle := newWatchHandler(p, out, &syncWriter{w: &buf})

	const files = 8
	var wg sync.WaitGroup
	errs := make(chan error, files)
	for i := 0; i < files; i++ {
		path := filepath.Join(in, fmt.Sprintf("note%d.txt", i))
		if err := os.WriteFile(path, []byte("Thank you."), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- handle(context.Background(), path)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != files {
		t.Fatalf("expected %d progress lines, got %q", files, buf.String())
	}
	for i := 0; i < files; i++ {
		want := fmt.Sprintf("note%d.txt -> note%d.ta.txt", i, i)
		if !strings.Contains(buf.String(), want+"\n") {
			t.Fatalf("missing %q in %q", want, buf.String())
		}
		if _, err := os.Stat(filepath.Join(out, fmt.Sprintf("note%d.ta.txt", i))); err != nil {
			t.Fatalf("output %d: %v", i, err)
		}
	}
}
