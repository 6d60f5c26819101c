package textutil

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"dubby/internal/language"
	"dubby/internal/transcript"
)

// DefaultFillerWords lists hesitation tokens stripped per ISO 639-1 language.
var DefaultFillerWords = map[string][]string{
	"en": {"um", "umm", "uh", "uhm", "erm", "hmm", "mm"},
	"ko": {"음", "으음", "어", "아"},
	"ja": {"えーと", "えっと", "えー", "あのー", "うーん"},
}

// Languages written without spaces between words match fillers anywhere
// in the text instead of requiring whitespace on both sides.
var unspacedLanguages = map[string]bool{
	"ja": true,
	"zh": true,
	"th": true,
}

// maxPasses bounds the fixed-point loop; each pass strictly shortens the text.
const maxPasses = 16

// Normalizer cleans recognized text before captioning or synthesis.
type Normalizer struct {
	language string
	filler   *regexp.Regexp
}

// NewNormalizer builds a normalizer for the given source language. Extra
// filler words are keyed by language and added to the defaults.
func NewNormalizer(lang string, extra map[string][]string) (*Normalizer, error) {
	code := language.ToISO2(lang)
	words := append([]string(nil), DefaultFillerWords[code]...)
	for key, values := range extra {
		if language.ToISO2(key) != code {
			continue
		}
		words = append(words, values...)
	}
	n := &Normalizer{language: code}
	pattern := fillerPattern(words, unspacedLanguages[code])
	if pattern == "" {
		return n, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile filler pattern for %q: %w", code, err)
	}
	n.filler = re
	return n, nil
}

func fillerPattern(words []string, unspaced bool) string {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(words))
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(norm.NFC.String(w))
		if w == "" {
			continue
		}
		key := fold.String(w)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return ""
	}
	// Longest first so "umm" wins over "um".
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	alternation := strings.Join(quoted, "|")
	if unspaced {
		return `(?i)(?:` + alternation + `)[、。,.…!?！？]*`
	}
	return `(?i)(^|\s)(?:` + alternation + `)[,.…!?]*(\s|$)`
}

// Language returns the ISO 639-1 code the normalizer was built for.
func (n *Normalizer) Language() string {
	if n == nil {
		return ""
	}
	return n.language
}

// Normalize applies NFC composition, strips filler words, collapses whitespace
// runs, and trims. Applying it twice yields the same result as applying it once.
func (n *Normalizer) Normalize(text string) string {
	text = collapseSpace(norm.NFC.String(text))
	if n == nil || n.filler == nil {
		return text
	}
	for range maxPasses {
		next := collapseSpace(n.filler.ReplaceAllString(text, " "))
		if next == text {
			break
		}
		text = next
	}
	return text
}

// NormalizeSegments returns a copy of segments with normalized text. No
// segment is dropped; empty text is left for callers to skip.
func (n *Normalizer) NormalizeSegments(segments []transcript.Segment) []transcript.Segment {
	out := make([]transcript.Segment, len(segments))
	for i, seg := range segments {
		seg.Text = n.Normalize(seg.Text)
		out[i] = seg
	}
	return out
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
