package language

import (
	"errors"
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnsupported reports a target language outside the configured set.
var ErrUnsupported = errors.New("unsupported language")

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"vi", "vie", "", "Vietnamese", []string{"vietnamese"}},
	{"th", "tha", "", "Thai", []string{"thai"}},
	{"id", "ind", "", "Indonesian", []string{"indonesian"}},
}

// DefaultSupported lists the target languages offered when none are configured.
var DefaultSupported = []string{"ko", "en", "ja", "zh-CN"}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	if base := baseOf(code); base != "" && base != code {
		if e, ok := byCode2[base]; ok {
			return e
		}
	}
	return nil
}

// baseOf returns the primary subtag of a BCP-47 tag ("zh-CN" -> "zh").
func baseOf(code string) string {
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// Canonical parses a BCP-47 tag and returns its canonical spelling ("zh-cn" -> "zh-CN").
func Canonical(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: empty language code", ErrUnsupported)
	}
	if e := lookup(code); e != nil && !strings.ContainsAny(code, "-_") {
		return e.code2, nil
	}
	tag, err := xlanguage.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnsupported, code, err)
	}
	return tag.String(), nil
}

// Supported validates code against the allowed set and returns the canonical tag.
// A base-only entry ("zh") admits any regional variant of that language.
func Supported(code string, allowed []string) (string, error) {
	canonical, err := Canonical(code)
	if err != nil {
		return "", err
	}
	if len(allowed) == 0 {
		allowed = DefaultSupported
	}
	base := ToISO2(canonical)
	for _, candidate := range allowed {
		want, err := Canonical(candidate)
		if err != nil {
			continue
		}
		if strings.EqualFold(want, canonical) {
			return canonical, nil
		}
		if !strings.Contains(want, "-") && want == base {
			return canonical, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupported, code, strings.Join(allowed, ", "))
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter).
// Returns "und" for unrecognized 2-letter codes, passes through 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	if tag, err := xlanguage.Parse(strings.TrimSpace(code)); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeList deduplicates and canonicalizes a list of language codes.
// Entries that fail to parse are dropped.
func NormalizeList(languages []string) []string {
	if len(languages) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		canonical, err := Canonical(lang)
		if err != nil {
			continue
		}
		key := strings.ToLower(canonical)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, canonical)
	}
	return normalized
}

// Same reports whether a and b name the same language. A base-only tag
// matches any regional variant of it ("fr" and "fr-FR"), but two distinct
// regions do not ("zh-CN" and "zh-TW").
func Same(a, b string) bool {
	ca, errA := Canonical(a)
	cb, errB := Canonical(b)
	if errA != nil || errB != nil {
		return false
	}
	if strings.EqualFold(ca, cb) {
		return true
	}
	if strings.Contains(ca, "-") && strings.Contains(cb, "-") {
		return false
	}
	return ToISO2(ca) != "" && ToISO2(ca) == ToISO2(cb)
}
