package openai

import (
	"context"
	"io"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"dubby/internal/services"
)

// Synthesize renders text as speech. The voice model picks pronunciation
// from the text itself, so targetLanguage only labels errors and logs. The
// payload is in the configured tts_format (WAV by default).
func (c *Client) Synthesize(ctx context.Context, text, targetLanguage string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, services.Wrap(services.ErrInput, "synthesize", "create speech", "empty text for "+targetLanguage, nil)
	}
	resp, err := c.api.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(c.cfg.TTSModel),
		Input:          text,
		Voice:          goopenai.SpeechVoice(c.cfg.TTSVoice),
		ResponseFormat: goopenai.SpeechResponseFormat(c.cfg.TTSFormat),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classify("synthesize", "create speech", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrTransient, "synthesize", "read speech", "", err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrTransient, "synthesize", "read speech", "empty audio payload", nil)
	}
	return data, nil
}
