package config

import (
	"fmt"
	"os"
	"strings"

	"dubby/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLanguages()
	c.normalizeASR()
	c.normalizeOpenAI()
	c.normalizeDubbing()
	c.normalizeText()
	c.Captions.Format = strings.ToLower(strings.TrimSpace(c.Captions.Format))
	if c.Captions.Format == "" {
		c.Captions.Format = defaultCaptionFormat
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir()
	}
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLanguages() {
	c.Languages.Source = strings.TrimSpace(c.Languages.Source)
	if c.Languages.Source == "" {
		c.Languages.Source = defaultSourceLanguage
	}
	if canonical, err := language.Canonical(c.Languages.Source); err == nil {
		c.Languages.Source = canonical
	}
	if len(c.Languages.Supported) == 0 {
		c.Languages.Supported = append([]string(nil), language.DefaultSupported...)
	}
}

func (c *Config) normalizeASR() {
	c.ASR.Backend = strings.ToLower(strings.TrimSpace(c.ASR.Backend))
	if c.ASR.Backend == "" {
		c.ASR.Backend = ASRBackendWhisperX
	}
	c.ASR.Model = strings.TrimSpace(c.ASR.Model)
	if c.ASR.Model == "" {
		c.ASR.Model = defaultWhisperXModel
	}
	c.ASR.WhisperXVADMethod = strings.ToLower(strings.TrimSpace(c.ASR.WhisperXVADMethod))
	if c.ASR.WhisperXVADMethod == "" {
		c.ASR.WhisperXVADMethod = defaultWhisperXVADMethod
	}
	c.ASR.WhisperXHuggingFace = strings.TrimSpace(c.ASR.WhisperXHuggingFace)
	if c.ASR.WhisperXHuggingFace == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.ASR.WhisperXHuggingFace = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.ASR.WhisperXHuggingFace = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeOpenAI() {
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	if c.OpenAI.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.OpenAI.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenAI.BaseURL = strings.TrimSpace(c.OpenAI.BaseURL)
	if c.OpenAI.BaseURL == "" {
		if value, ok := os.LookupEnv("OPENAI_BASE_URL"); ok {
			c.OpenAI.BaseURL = strings.TrimSpace(value)
		}
	}
	c.OpenAI.BaseURL = strings.TrimRight(c.OpenAI.BaseURL, "/")
	c.OpenAI.ASRModel = defaultString(c.OpenAI.ASRModel, defaultASRModel)
	c.OpenAI.TranslateModel = defaultString(c.OpenAI.TranslateModel, defaultTranslateModel)
	c.OpenAI.TTSModel = defaultString(c.OpenAI.TTSModel, defaultTTSModel)
	c.OpenAI.TTSVoice = defaultString(c.OpenAI.TTSVoice, defaultTTSVoice)
	c.OpenAI.TTSFormat = strings.ToLower(defaultString(c.OpenAI.TTSFormat, defaultTTSFormat))
}

func (c *Config) normalizeDubbing() {
	if c.Dubbing.SampleRate == 0 {
		c.Dubbing.SampleRate = defaultSampleRate
	}
	if c.Dubbing.Workers == 0 {
		c.Dubbing.Workers = defaultWorkers
	}
}

func (c *Config) normalizeText() {
	if len(c.Text.FillerWords) == 0 {
		return
	}
	normalized := make(map[string][]string, len(c.Text.FillerWords))
	for lang, words := range c.Text.FillerWords {
		key := language.ToISO2(lang)
		if key == "" {
			key = strings.ToLower(strings.TrimSpace(lang))
		}
		for _, word := range words {
			if word = strings.TrimSpace(word); word != "" {
				normalized[key] = append(normalized[key], word)
			}
		}
	}
	c.Text.FillerWords = normalized
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func defaultString(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}
