// Package summarize produces extractive summaries by scoring sentences on
// word frequency and keeping the densest ones in reading order.
package summarize

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"doctranslate-backend/internal/shared/telemetry"
)

const (
	// DefaultTargetLength is the summary length guideline in characters.
	DefaultTargetLength = 250

	minSentences   = 3
	briefWordLimit = 50
	shortLabel     = "Summary: "
	keyPointsLabel = "Key Points Summary:\n\n"
	briefLabel     = "Brief Summary:\n\n"
	degradedLabel  = "Summary:\n\n"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {}, "of": {}, "from": {}, "that": {},
	"this": {}, "it": {}, "i": {}, "we": {}, "you": {}, "he": {}, "she": {}, "they": {}, "them": {},
}

// Extractive summarizes text with a fixed target length.
type Extractive struct {
	TargetLength int
}

// Summarize implements the pipeline summarizer contract. It never fails.
func (e Extractive) Summarize(_ context.Context, text string) string {
	target := e.TargetLength
	if target <= 0 {
		target = DefaultTargetLength
	}
	return Summarize(text, target)
}

// Summarize returns a labeled extractive summary of text. Internal failures
// degrade to a truncated prefix of the input.
func Summarize(text string, targetLength int) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("summarize.degraded", map[string]any{
				"error":       fmt.Sprint(r),
				"text_length": len(text),
			})
			summary = degraded(text)
		}
	}()

	sentences := SplitSentences(text)
	textLength := utf8.RuneCountInString(text)
	if textLength <= targetLength || len(sentences) <= minSentences {
		return shortLabel + text
	}

	freq := wordFrequency(text)
	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		scores[i] = scoreSentence(s, freq)
	}

	keep := sentenceBudget(len(sentences), targetLength, textLength)
	picked := topByScore(scores, keep)

	selected := make([]string, len(picked))
	for i, idx := range picked {
		selected[i] = sentences[idx]
	}
	return keyPointsLabel + strings.Join(selected, " ")
}

// sentenceBudget is max(3, min(ceil(n/3), ceil(n*target/length*2))).
func sentenceBudget(n, targetLength, textLength int) int {
	third := int(math.Ceil(float64(n) / 3))
	scaled := int(math.Ceil(float64(n) * (float64(targetLength) / float64(textLength)) * 2))
	keep := third
	if scaled < keep {
		keep = scaled
	}
	if keep < minSentences {
		keep = minSentences
	}
	if keep > n {
		keep = n
	}
	return keep
}

// topByScore returns the indexes of the k best scores in ascending index order.
func topByScore(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	top := append([]int(nil), idx[:k]...)
	sort.Ints(top)
	return top
}

func wordFrequency(text string) map[string]int {
	freq := make(map[string]int)
	for _, w := range tokenize(text) {
		if utf8.RuneCountInString(w) <= 1 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		freq[w]++
	}
	return freq
}

func scoreSentence(sentence string, freq map[string]int) float64 {
	words := tokenize(sentence)
	score := 0
	for _, w := range words {
		score += freq[w]
	}
	return float64(score) / math.Max(1, float64(len(words)))
}

// tokenize lowercases, drops punctuation and splits on whitespace.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', unicode.IsMark(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)
	return strings.Fields(cleaned)
}

func degraded(text string) string {
	words := strings.Fields(text)
	if len(words) > briefWordLimit {
		return briefLabel + strings.Join(words[:briefWordLimit], " ") + "..."
	}
	return degradedLabel + text
}
