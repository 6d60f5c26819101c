package openai

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	langpkg "dubby/internal/language"
	"dubby/internal/logging"
	"dubby/internal/services"
	"dubby/internal/transcript"
)

// Recognize uploads the speech track of source to the transcription endpoint
// and returns its verbose segments.
func (c *Client) Recognize(ctx context.Context, source transcript.Source) ([]transcript.Segment, error) {
	if strings.TrimSpace(source.Path) == "" {
		return nil, services.Wrap(services.ErrInput, "asr", "recognize", "media path required", nil)
	}
	scratch, err := os.MkdirTemp(c.cfg.WorkDir, "asr-")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "asr", "prepare", "create scratch directory", err)
	}
	defer os.RemoveAll(scratch)

	// Mono low-bitrate mp3 keeps long recordings under the upload limit.
	upload := filepath.Join(scratch, "speech.mp3")
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", source.Path,
		"-map", source.AudioMap(), "-vn", "-sn", "-dn",
		"-ac", "1", "-ar", "16000",
		"-c:a", "libmp3lame", "-b:a", "48k",
		upload,
	}
	if _, err := c.run(ctx, c.cfg.FFmpegBinary, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "asr", "extract audio", "ffmpeg could not extract speech audio", err)
	}

	resp, err := c.api.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    c.cfg.ASRModel,
		FilePath: upload,
		Format:   goopenai.AudioResponseFormatVerboseJSON,
		Language: langpkg.ToISO2(source.Language),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classify("asr", "transcription", err)
	}

	segments := make([]transcript.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, transcript.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	logging.WithContext(ctx, c.logger).Info("transcription completed",
		logging.String(logging.FieldEventType, "openai_asr_completed"),
		logging.String("model", c.cfg.ASRModel),
		logging.Int("segments", len(segments)),
		logging.Float64("duration_seconds", resp.Duration),
	)
	return segments, nil
}
