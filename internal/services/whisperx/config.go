package whisperx

// Config holds the WhisperX runtime settings taken from the [asr] section.
type Config struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" or "pyannote"; pyannote needs HFToken.
	VADMethod string
	HFToken   string
}

const (
	// UVXCommand launches WhisperX in an ephemeral Python environment.
	UVXCommand   = "uvx"
	DefaultModel = "large-v3-turbo"
	// SampleRate is the rate the extracted speech track is resampled to.
	SampleRate = 16000

	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL = "https://pypi.org/simple"

	VADMethodSilero   = "silero"
	VADMethodPyannote = "pyannote"
)

// Decoding knobs passed through verbatim. Sentence resolution keeps the
// segments close to dialogue lines so each one can become a dub slot.
var decodeFlags = []string{
	"--batch_size", "4",
	"--output_format", "json",
	"--segment_resolution", "sentence",
	"--chunk_size", "15",
	"--beam_size", "5",
	"--temperature", "0.0",
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}

func (c Config) vadMethod() string {
	if c.VADMethod == "" {
		return VADMethodSilero
	}
	return c.VADMethod
}

// indexArgs are the uvx flags selecting where torch wheels come from.
func (c Config) indexArgs() []string {
	if c.CUDAEnabled {
		return []string{"--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL}
	}
	return []string{"--index-url", PypiIndexURL}
}

func (c Config) vadArgs() []string {
	method := c.vadMethod()
	args := []string{"--vad_method", method}
	if method == VADMethodPyannote && c.HFToken != "" {
		args = append(args, "--hf_token", c.HFToken)
	}
	return args
}

// deviceArgs pins CPU runs to float32; the int8 default is unsupported on
// most CPUs.
func (c Config) deviceArgs() []string {
	if c.CUDAEnabled {
		return []string{"--device", "cuda"}
	}
	return []string{"--device", "cpu", "--compute_type", "float32"}
}
