package summarize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences breaks text after '.', '?' or '!' when the mark is followed
// by whitespace. Terminators stay attached to their sentence; blank sentences
// are dropped.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !isTerminator(r) || i >= len(text) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(next) {
			continue
		}
		out = appendSentence(out, text[start:i])
		for i < len(text) {
			ws, n := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(ws) {
				break
			}
			i += n
		}
		start = i
	}
	return appendSentence(out, text[start:])
}

// SplitTerminator separates a sentence from its trailing run of terminators.
func SplitTerminator(sentence string) (body, terminator string) {
	body = strings.TrimRightFunc(sentence, isTerminator)
	return body, sentence[len(body):]
}

func appendSentence(out []string, s string) []string {
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return append(out, trimmed)
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}
