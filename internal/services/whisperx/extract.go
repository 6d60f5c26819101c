package whisperx

import (
	"fmt"
	"strconv"

	"dubby/internal/transcript"
)

// buildExtractArgs converts the speech track of source to the mono 16kHz PCM
// WAV WhisperX expects.
func buildExtractArgs(source transcript.Source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source.Path,
		"-map", source.AudioMap(),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(SampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
}

// buildArgs constructs the uvx command arguments for WhisperX. An empty
// language lets WhisperX detect it.
func (r *Recognizer) buildArgs(source, outputDir, language string) []string {
	args := make([]string, 0, 32)
	args = append(args, r.cfg.indexArgs()...)
	args = append(args, "whisperx", source, "--model", r.Model(), "--output_dir", outputDir)
	args = append(args, decodeFlags...)
	args = append(args, r.cfg.vadArgs()...)
	if language != "" {
		args = append(args, "--language", language)
	}
	return append(args, r.cfg.deviceArgs()...)
}

func outputJSONName(source string) string {
	return fmt.Sprintf("%s.json", trimExt(source))
}
