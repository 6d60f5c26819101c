package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dubby/internal/config"
	"dubby/internal/jobs"
	"dubby/internal/media/audio"
	"dubby/internal/media/ffprobe"
	"dubby/internal/media/remux"
	"dubby/internal/services"
	"dubby/internal/services/openai"
	"dubby/internal/services/whisperx"
)

// Build wires the production collaborators described by cfg. The OpenAI
// client is only created when an API key is configured, so caption jobs with
// the local recognizer run without credentials.
func Build(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	store, err := jobs.Open(cfg.JobsDBPath())
	if err != nil {
		return nil, err
	}

	ffmpeg := cfg.FFmpegBinary()
	ffprobeBinary := cfg.FFprobeBinary()
	d := Dependencies{
		Store:      store,
		Decoder:    audio.NewDecoder(ffmpeg, cfg.Paths.WorkDir, cfg.Dubbing.SampleRate),
		Compositor: remux.NewCompositor(ffmpeg, logger),
		Probe: func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, ffprobeBinary, path)
		},
	}

	var client *openai.Client
	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		client = openai.NewClient(openai.Config{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			ASRModel:       cfg.OpenAI.ASRModel,
			TranslateModel: cfg.OpenAI.TranslateModel,
			TTSModel:       cfg.OpenAI.TTSModel,
			TTSVoice:       cfg.OpenAI.TTSVoice,
			TTSFormat:      cfg.OpenAI.TTSFormat,
			FFmpegBinary:   ffmpeg,
			WorkDir:        cfg.Paths.WorkDir,
		}, openai.WithLogger(logger))
		d.Translator = client
		d.Synthesizer = client
	}

	switch cfg.ASR.Backend {
	case config.ASRBackendOpenAI:
		if client == nil {
			_ = store.Close()
			return nil, services.Wrap(services.ErrConfiguration, "asr", "backend", "openai backend selected", cfg.RequireOpenAIKey())
		}
		d.Recognizer = client
	case config.ASRBackendWhisperX, "":
		d.Recognizer = whisperx.NewRecognizer(whisperx.Config{
			Model:       cfg.ASR.Model,
			CUDAEnabled: cfg.ASR.WhisperXCUDAEnabled,
			VADMethod:   cfg.ASR.WhisperXVADMethod,
			HFToken:     cfg.ASR.WhisperXHuggingFace,
		}, ffmpeg, cfg.Paths.WorkDir, logger)
	default:
		_ = store.Close()
		return nil, fmt.Errorf("unknown asr backend %q", cfg.ASR.Backend)
	}

	return NewService(cfg, d, logger), nil
}

func synthesizePolicy(cfg *config.Config) services.CallPolicy {
	return services.CallPolicy{Timeout: cfg.SynthesizeTimeout()}
}
