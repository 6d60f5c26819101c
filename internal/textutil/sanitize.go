package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// fileNameRune maps characters that break paths on common filesystems.
// Separators turn into dashes, shell and Windows reserved characters are
// dropped and control characters are removed.
func fileNameRune(r rune) rune {
	switch r {
	case '/', '\\', ':', '*':
		return '-'
	case '?', '"', '<', '>', '|':
		return -1
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}

// SanitizeFileName makes name safe to use as an output file base name. The
// result is NFC-normalized so decomposed accents from macOS sources compare
// equal to composed ones.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(strings.Map(fileNameRune, norm.NFC.String(name)))
}

// SanitizeToken lowercases value into a token of letters, digits, '-' and
// '_'. Anything else becomes '_'. Empty results read "unknown".
func SanitizeToken(value string) string {
	token := strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == '_':
			return r
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return unicode.ToLower(r)
		default:
			return '_'
		}
	}, strings.TrimSpace(value))
	if token = strings.Trim(token, "_-"); token == "" {
		return "unknown"
	}
	return token
}
