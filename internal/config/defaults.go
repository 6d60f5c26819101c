package config

import "dubby/internal/language"

const (
	defaultConfigPath        = "~/.config/dubby/config.toml"
	defaultLogDir            = "~/.local/share/dubby/logs"
	defaultStateDir          = "~/.local/share/dubby"
	defaultSourceLanguage    = "en"
	defaultWhisperXModel     = "large-v3-turbo"
	defaultWhisperXVADMethod = "silero"
	defaultASRModel          = "whisper-1"
	defaultTranslateModel    = "gpt-4o-mini"
	defaultTTSModel          = "tts-1"
	defaultTTSVoice          = "alloy"
	defaultTTSFormat         = "wav"
	defaultSampleRate        = 24000
	defaultWorkers           = 4
	defaultCaptionFormat     = "vtt"
	defaultASRTimeout        = 1800
	defaultTranslateTimeout  = 60
	defaultSynthesizeTimeout = 120
	defaultMuxTimeout        = 600
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Recognizer backends.
const (
	ASRBackendWhisperX = "whisperx"
	ASRBackendOpenAI   = "openai"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir(),
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Languages: Languages{
			Source:    defaultSourceLanguage,
			Supported: append([]string(nil), language.DefaultSupported...),
		},
		ASR: ASR{
			Backend:           ASRBackendWhisperX,
			Model:             defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVADMethod,
		},
		OpenAI: OpenAI{
			ASRModel:       defaultASRModel,
			TranslateModel: defaultTranslateModel,
			TTSModel:       defaultTTSModel,
			TTSVoice:       defaultTTSVoice,
			TTSFormat:      defaultTTSFormat,
		},
		Dubbing: Dubbing{
			SampleRate: defaultSampleRate,
			Workers:    defaultWorkers,
		},
		Captions: Captions{
			Format: defaultCaptionFormat,
		},
		Timeouts: Timeouts{
			ASR:        defaultASRTimeout,
			Translate:  defaultTranslateTimeout,
			Synthesize: defaultSynthesizeTimeout,
			Mux:        defaultMuxTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
