package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dubby/internal/deps"
	langpkg "dubby/internal/language"
	"dubby/internal/logging"
	"dubby/internal/services"
	"dubby/internal/transcript"
)

// Recognizer transcribes media with a local WhisperX run.
type Recognizer struct {
	cfg     Config
	ffmpeg  string
	uvx     string
	workDir string
	run     deps.CommandRunner
	logger  *slog.Logger
}

// Option customizes a Recognizer.
type Option func(*Recognizer)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(run deps.CommandRunner) Option {
	return func(r *Recognizer) {
		if run != nil {
			r.run = run
		}
	}
}

// WithUVXBinary overrides the uvx executable.
func WithUVXBinary(path string) Option {
	return func(r *Recognizer) {
		if strings.TrimSpace(path) != "" {
			r.uvx = path
		}
	}
}

// NewRecognizer creates a WhisperX recognizer. Scratch files are created
// under workDir and removed after each call.
func NewRecognizer(cfg Config, ffmpegBinary, workDir string, logger *slog.Logger, opts ...Option) *Recognizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Recognizer{
		cfg:     cfg,
		ffmpeg:  deps.ResolveFFmpegPath(ffmpegBinary),
		uvx:     UVXCommand,
		workDir: workDir,
		// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
		run:    deps.RunWithEnv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1"),
		logger: logging.NewComponentLogger(logger, "whisperx"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Model returns the configured model name for logging.
func (r *Recognizer) Model() string {
	return r.cfg.model()
}

// Recognize extracts the speech track of source, runs WhisperX on it and
// returns the timed segments in WhisperX order.
func (r *Recognizer) Recognize(ctx context.Context, source transcript.Source) ([]transcript.Segment, error) {
	if strings.TrimSpace(source.Path) == "" {
		return nil, services.Wrap(services.ErrInput, "asr", "recognize", "media path required", nil)
	}
	scratch, err := os.MkdirTemp(r.workDir, "whisperx-")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "asr", "prepare", "create scratch directory", err)
	}
	defer os.RemoveAll(scratch)

	logger := logging.WithContext(ctx, r.logger)
	wavPath := filepath.Join(scratch, "speech.wav")
	if _, err := r.run(ctx, r.ffmpeg, buildExtractArgs(source, wavPath)...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "asr", "extract audio", "ffmpeg could not extract speech audio", err)
	}

	logger.Info("whisperx transcription started",
		logging.String(logging.FieldEventType, "whisperx_started"),
		logging.String("model", r.Model()),
		logging.Bool("cuda", r.cfg.CUDAEnabled),
		logging.String("language", source.Language),
		logging.String("audio_map", source.AudioMap()),
	)
	args := r.buildArgs(wavPath, scratch, langpkg.ToISO2(source.Language))
	if _, err := r.run(ctx, r.uvx, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "asr", "whisperx", "transcription failed", err)
	}

	raw, err := LoadSegments(filepath.Join(scratch, outputJSONName(filepath.Base(wavPath))))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "asr", "parse output", "whisperx output unreadable", err)
	}
	segments := make([]transcript.Segment, 0, len(raw))
	for _, seg := range raw {
		segments = append(segments, transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	logger.Info("whisperx transcription completed",
		logging.String(logging.FieldEventType, "whisperx_completed"),
		logging.Int("segments", len(segments)),
	)
	return segments, nil
}

// Word represents a single word with timing from WhisperX output.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
