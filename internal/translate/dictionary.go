package translate

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"doctranslate-backend/internal/summarize"
)

// maxPhraseWords bounds the token window used for phrase matching.
const maxPhraseWords = 3

//go:embed dictionaries.yaml
var dictionariesYAML []byte

// Dictionary maps lowercase phrases to their translation.
type Dictionary map[string]string

// LoadDictionaries parses per-language phrase dictionaries from YAML.
func LoadDictionaries(raw []byte) (map[string]Dictionary, error) {
	var parsed map[string]map[string]string
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse dictionaries: %w", err)
	}
	out := make(map[string]Dictionary, len(parsed))
	for lang, entries := range parsed {
		dict := make(Dictionary, len(entries))
		for phrase, translation := range entries {
			key := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
			if key == "" || strings.TrimSpace(translation) == "" {
				continue
			}
			if n := len(strings.Fields(key)); n > maxPhraseWords {
				return nil, fmt.Errorf("dictionary %s: phrase %q has %d words, max %d", lang, phrase, n, maxPhraseWords)
			}
			dict[key] = translation
		}
		out[lang] = dict
	}
	return out, nil
}

// DefaultDictionaries returns the embedded dictionaries.
func DefaultDictionaries() (map[string]Dictionary, error) {
	return LoadDictionaries(dictionariesYAML)
}

type token struct {
	raw   string
	lead  string
	core  string
	trail string
}

func splitToken(raw string) token {
	left := strings.TrimLeftFunc(raw, unicode.IsPunct)
	core := strings.TrimRightFunc(left, unicode.IsPunct)
	return token{
		raw:   raw,
		lead:  raw[:len(raw)-len(left)],
		core:  core,
		trail: left[len(core):],
	}
}

// Substitute replaces dictionary phrases sentence by sentence. Longer
// windows are tried first; a token belongs to at most one match and
// unmatched tokens are kept verbatim.
func (d Dictionary) Substitute(text string) string {
	sentences := summarize.SplitSentences(text)
	out := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		body, terminator := summarize.SplitTerminator(sentence)
		translated := d.substituteSentence(body)
		if translated == "" && terminator == "" {
			continue
		}
		out = append(out, translated+terminator)
	}
	return strings.Join(out, " ")
}

func (d Dictionary) substituteSentence(sentence string) string {
	words := strings.Fields(sentence)
	tokens := make([]token, len(words))
	for i, w := range words {
		tokens[i] = splitToken(w)
	}

	slots := make([]string, len(tokens))
	consumed := make([]bool, len(tokens))
	for size := maxPhraseWords; size >= 1; size-- {
		for i := 0; i+size <= len(tokens); i++ {
			window := tokens[i : i+size]
			if anyConsumed(consumed[i:i+size]) || !contiguous(window) {
				continue
			}
			translation, ok := d[phraseKey(window)]
			if !ok {
				continue
			}
			slots[i] = window[0].lead + translation + window[size-1].trail
			for j := i; j < i+size; j++ {
				consumed[j] = true
			}
		}
	}

	parts := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		switch {
		case slots[i] != "":
			parts = append(parts, slots[i])
		case !consumed[i]:
			parts = append(parts, tok.raw)
		}
	}
	return strings.Join(parts, " ")
}

// contiguous reports whether window reads as one phrase: every token has a
// core and no punctuation separates neighbours.
func contiguous(window []token) bool {
	for i, tok := range window {
		if tok.core == "" {
			return false
		}
		if i > 0 && tok.lead != "" {
			return false
		}
		if i < len(window)-1 && tok.trail != "" {
			return false
		}
	}
	return true
}

func phraseKey(window []token) string {
	cores := make([]string, len(window))
	for i, tok := range window {
		cores[i] = strings.ToLower(tok.core)
	}
	return strings.Join(cores, " ")
}

func anyConsumed(flags []bool) bool {
	for _, f := range flags {
		if f {
			return true
		}
	}
	return false
}
