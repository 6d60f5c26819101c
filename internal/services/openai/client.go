package openai

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"dubby/internal/deps"
	"dubby/internal/logging"
	"dubby/internal/services"
)

// Default model and voice names used when Config leaves them blank.
const (
	DefaultASRModel       = goopenai.Whisper1
	DefaultTranslateModel = "gpt-4o-mini"
	DefaultTTSModel       = string(goopenai.TTSModel1)
	DefaultTTSVoice       = string(goopenai.VoiceAlloy)
	DefaultTTSFormat      = string(goopenai.SpeechResponseFormatWav)
)

// Config captures the runtime settings required to talk to an
// OpenAI-compatible API.
type Config struct {
	APIKey         string
	BaseURL        string
	ASRModel       string
	TranslateModel string
	TTSModel       string
	TTSVoice       string
	TTSFormat      string
	// FFmpegBinary and WorkDir are used to shrink media to a speech-only
	// upload before recognition.
	FFmpegBinary string
	WorkDir      string
}

// Client wraps go-openai for recognition, translation, and speech synthesis.
type Client struct {
	cfg    Config
	api    *goopenai.Client
	run    deps.CommandRunner
	logger *slog.Logger
}

// Option customizes the client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	run        deps.CommandRunner
	logger     *slog.Logger
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithCommandRunner overrides how ffmpeg is executed (useful for tests).
func WithCommandRunner(run deps.CommandRunner) Option {
	return func(o *clientOptions) {
		if run != nil {
			o.run = run
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	options := clientOptions{run: deps.Run, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&options)
	}
	cfg = Config{
		APIKey:         strings.TrimSpace(cfg.APIKey),
		BaseURL:        strings.TrimSpace(cfg.BaseURL),
		ASRModel:       valueOr(cfg.ASRModel, DefaultASRModel),
		TranslateModel: valueOr(cfg.TranslateModel, DefaultTranslateModel),
		TTSModel:       valueOr(cfg.TTSModel, DefaultTTSModel),
		TTSVoice:       valueOr(cfg.TTSVoice, DefaultTTSVoice),
		TTSFormat:      valueOr(cfg.TTSFormat, DefaultTTSFormat),
		FFmpegBinary:   deps.ResolveFFmpegPath(cfg.FFmpegBinary),
		WorkDir:        cfg.WorkDir,
	}
	apiConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if options.httpClient != nil {
		apiConfig.HTTPClient = options.httpClient
	}
	return &Client{
		cfg:    cfg,
		api:    goopenai.NewClientWithConfig(apiConfig),
		run:    options.run,
		logger: logging.NewComponentLogger(options.logger, "openai"),
	}
}

func valueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// classify tags an API error with the marker that decides whether the call
// site retries it.
func classify(stage, operation string, err error) error {
	if err == nil {
		return nil
	}
	status := 0
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, stage, operation, "api key rejected", err)
	case status == http.StatusBadRequest || status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		return services.Wrap(services.ErrValidation, stage, operation, "request rejected", err)
	default:
		return services.Wrap(services.ErrTransient, stage, operation, "api call failed", err)
	}
}
