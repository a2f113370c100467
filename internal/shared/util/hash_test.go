package util

import (
	"errors"
	"strings"
	"testing"
)

func TestChecksum(t *testing.T) {
	got := Checksum([]byte("hello"))
	if got != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("unexpected digest %s", got)
	}
	if Checksum([]byte("hello")) != got {
		t.Fatalf("expected stable digest")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "report.pdf", want: "report.pdf"},
		{in: "  dir/sub\\file.txt ", want: "dir_sub_file.txt"},
		{in: "my  quarterly\treport.docx", want: "my_quarterly_report.docx"},
		{in: "scan\x00\x07.png", want: "scan.png"},
		{in: "नमस्ते दुनिया.txt", want: "नमस्ते_दुनिया.txt"},
		{in: "../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "/", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestSanitizeFileNameKeepsExtensionWhenTruncating(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("a", 300) + ".pdf")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if len([]rune(got)) != maxFileNameRunes || !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("unexpected truncation %q (%d runes)", got, len([]rune(got)))
	}
}

func TestSanitizeError(t *testing.T) {
	if SanitizeError(nil) != "" {
		t.Fatalf("expected empty string for nil")
	}
	got := SanitizeError(errors.New("line one\nline two\r\n"))
	if got != "line one line two" {
		t.Fatalf("unexpected sanitized error %q", got)
	}
	long := SanitizeError(errors.New(strings.Repeat("x", 600)))
	if len(long) != 500 {
		t.Fatalf("expected truncation to 500, got %d", len(long))
	}
}
