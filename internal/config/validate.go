package config

import (
	"errors"
	"fmt"

	"dubby/internal/language"
)

var ttsFormats = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"flac": true,
	"opus": true,
	"aac":  true,
	"pcm":  true,
}

// Validate ensures the configuration is usable. Credentials are checked
// separately by RequireOpenAIKey because caption-only jobs with a local
// recognizer never need them.
func (c *Config) Validate() error {
	if err := c.validateLanguages(); err != nil {
		return err
	}
	if err := c.validateASR(); err != nil {
		return err
	}
	if err := c.validateDubbing(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return ensurePositiveMap(map[string]int{
		"timeouts.asr":        c.Timeouts.ASR,
		"timeouts.translate":  c.Timeouts.Translate,
		"timeouts.synthesize": c.Timeouts.Synthesize,
		"timeouts.mux":        c.Timeouts.Mux,
	})
}

func (c *Config) validateLanguages() error {
	if _, err := language.Canonical(c.Languages.Source); err != nil {
		return fmt.Errorf("languages.source: %w", err)
	}
	for _, code := range c.Languages.Supported {
		if _, err := language.Canonical(code); err != nil {
			return fmt.Errorf("languages.supported: %w", err)
		}
	}
	return nil
}

func (c *Config) validateASR() error {
	switch c.ASR.Backend {
	case ASRBackendWhisperX, ASRBackendOpenAI:
	default:
		return fmt.Errorf("asr.backend must be %q or %q, got %q", ASRBackendWhisperX, ASRBackendOpenAI, c.ASR.Backend)
	}
	switch c.ASR.WhisperXVADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("asr.whisperx_vad_method must be silero or pyannote, got %q", c.ASR.WhisperXVADMethod)
	}
	if c.ASR.WhisperXVADMethod == "pyannote" && c.ASR.WhisperXHuggingFace == "" {
		return errors.New("asr.whisperx_hf_token must be set when asr.whisperx_vad_method is pyannote")
	}
	return nil
}

func (c *Config) validateDubbing() error {
	d := c.Dubbing
	if d.SampleRate < 8000 || d.SampleRate > 96000 {
		return fmt.Errorf("dubbing.sample_rate must be between 8000 and 96000, got %d", d.SampleRate)
	}
	if d.Workers < 1 || d.Workers > 32 {
		return fmt.Errorf("dubbing.workers must be between 1 and 32, got %d", d.Workers)
	}
	if d.MinSpeedRatio < 0 {
		return errors.New("dubbing.min_speed_ratio must be >= 0")
	}
	if d.MaxSpeedRatio < 0 {
		return errors.New("dubbing.max_speed_ratio must be >= 0")
	}
	if d.MinSpeedRatio > 0 && d.MaxSpeedRatio > 0 && d.MinSpeedRatio > d.MaxSpeedRatio {
		return errors.New("dubbing.min_speed_ratio must not exceed dubbing.max_speed_ratio")
	}
	if !ttsFormats[c.OpenAI.TTSFormat] {
		return fmt.Errorf("openai.tts_format: unsupported value %q", c.OpenAI.TTSFormat)
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Captions.Format {
	case "vtt", "srt":
		return nil
	default:
		return fmt.Errorf("captions.format must be vtt or srt, got %q", c.Captions.Format)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
