// Package whisperx runs local WhisperX speech recognition through uvx.
//
// Media is first reduced to a mono 16kHz WAV with ffmpeg, WhisperX writes a
// JSON transcript into a scratch directory, and the sentence-level segments
// are returned as transcript.Segment values. Model, CUDA, and VAD settings
// come from Config.
package whisperx
