package dubbing

import (
	"context"

	"dubby/internal/media/audio"
	"dubby/internal/transcript"
)

// TranslationResult is the outcome of translating one segment's text.
type TranslationResult = transcript.TranslationResult

// Synthesizer renders text in targetLanguage as encoded audio. It is never
// called with empty text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, targetLanguage string) ([]byte, error)
}

// ClipDecoder turns an encoded payload into a mono clip.
type ClipDecoder interface {
	Decode(ctx context.Context, data []byte) (audio.Clip, error)
}

// SynthesizeFunc produces the natural-length clip for one segment's text.
type SynthesizeFunc func(ctx context.Context, text string) (audio.Clip, error)

// SynthesizeWith binds a synthesizer and decoder to a target language.
func SynthesizeWith(s Synthesizer, d ClipDecoder, targetLanguage string) SynthesizeFunc {
	return func(ctx context.Context, text string) (audio.Clip, error) {
		data, err := s.Synthesize(ctx, text, targetLanguage)
		if err != nil {
			return audio.Clip{}, err
		}
		return d.Decode(ctx, data)
	}
}
