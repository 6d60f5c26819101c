package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"dubby/internal/deps"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// WorkDir holds per-job scratch directories; each job removes its own.
	WorkDir string `toml:"work_dir"`
	// OutputDir receives captions and dubbed media. Empty means next to the source.
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	// StateDir holds the job history database.
	StateDir string `toml:"state_dir"`
}

// Languages contains the source hint and the allowed target set.
type Languages struct {
	Source    string   `toml:"source"`
	Supported []string `toml:"supported"`
}

// ASR selects and tunes the speech recognizer.
type ASR struct {
	Backend             string `toml:"backend"`
	Model               string `toml:"model"`
	WhisperXCUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
	WhisperXVADMethod   string `toml:"whisperx_vad_method"`
	WhisperXHuggingFace string `toml:"whisperx_hf_token"`
}

// OpenAI contains connection settings for the OpenAI-compatible API used for
// translation, speech synthesis, and optionally recognition.
type OpenAI struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ASRModel       string `toml:"asr_model"`
	TranslateModel string `toml:"translate_model"`
	TTSModel       string `toml:"tts_model"`
	TTSVoice       string `toml:"tts_voice"`
	TTSFormat      string `toml:"tts_format"`
}

// Dubbing tunes the time-aligned track assembly.
type Dubbing struct {
	SampleRate int `toml:"sample_rate"`
	Workers    int `toml:"workers"`
	// MinSpeedRatio and MaxSpeedRatio bound the playback-rate change applied
	// to each clip. Zero leaves that side unbounded.
	MinSpeedRatio float64 `toml:"min_speed_ratio"`
	MaxSpeedRatio float64 `toml:"max_speed_ratio"`
	// ClampOverflow lets a clamped clip run past its slot instead of being
	// trimmed to it.
	ClampOverflow bool `toml:"clamp_overflow"`
	KeepTrack     bool `toml:"keep_track"`
}

// Captions contains caption output settings.
type Captions struct {
	Format string `toml:"format"`
}

// Text contains recognized-text cleanup settings.
type Text struct {
	FillerWords map[string][]string `toml:"filler_words"`
}

// Timeouts bounds each external call, in seconds.
type Timeouts struct {
	ASR        int `toml:"asr"`
	Translate  int `toml:"translate"`
	Synthesize int `toml:"synthesize"`
	Mux        int `toml:"mux"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubby.
//
// Configuration sections by subsystem:
//   - Paths: scratch, output, log, and state directories
//   - Languages: source hint and supported targets
//   - ASR: recognizer backend and WhisperX tuning
//   - OpenAI: translation, TTS, and cloud ASR connection
//   - Dubbing: sample rate, worker pool, and speed clamp policy
//   - Captions: caption serialization
//   - Text: filler-word stripping
//   - Timeouts: per-call bounds for external tools and APIs
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Languages Languages `toml:"languages"`
	ASR       ASR       `toml:"asr"`
	OpenAI    OpenAI    `toml:"openai"`
	Dubbing   Dubbing   `toml:"dubbing"`
	Captions  Captions  `toml:"captions"`
	Text      Text      `toml:"text"`
	Timeouts  Timeouts  `toml:"timeouts"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dubby.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work, log, and state directories. The output
// directory is created too when configured.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.StateDir}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		dirs = append(dirs, c.Paths.OutputDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JobsDBPath returns the location of the job history database.
func (c *Config) JobsDBPath() string {
	return filepath.Join(c.Paths.StateDir, "jobs.db")
}

// FFmpegBinary returns the ffmpeg executable name used for extraction and muxing.
func (c *Config) FFmpegBinary() string {
	return deps.ResolveFFmpegPath("")
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return deps.ResolveFFprobePath("")
}

// RequireOpenAIKey returns an error naming the fix when no API key is set.
func (c *Config) RequireOpenAIKey() error {
	if strings.TrimSpace(c.OpenAI.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("openai.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'dubby config init')", defaultPath)
}

// ASRTimeout returns the recognizer timeout.
func (c *Config) ASRTimeout() time.Duration { return seconds(c.Timeouts.ASR) }

// TranslateTimeout returns the per-segment translation timeout.
func (c *Config) TranslateTimeout() time.Duration { return seconds(c.Timeouts.Translate) }

// SynthesizeTimeout returns the per-segment synthesis timeout.
func (c *Config) SynthesizeTimeout() time.Duration { return seconds(c.Timeouts.Synthesize) }

// MuxTimeout returns the multiplexer timeout.
func (c *Config) MuxTimeout() time.Duration { return seconds(c.Timeouts.Mux) }

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultWorkDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "dubby", "work")
	}
	return "~/.cache/dubby/work"
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
