package transcript

import "context"

// TranslationResult is the outcome of translating one segment's text.
type TranslationResult struct {
	Text string
	Err  error
}

// Resolve returns the translated text, or source when translation failed or
// came back empty. The boolean reports whether the fallback was taken.
func (r TranslationResult) Resolve(source string) (string, bool) {
	if r.Err != nil {
		return source, true
	}
	if r.Text == "" && source != "" {
		return source, true
	}
	return r.Text, false
}

// TranslateFunc translates one segment's text. It never panics on failure;
// errors travel in the result.
type TranslateFunc func(ctx context.Context, text string) TranslationResult
