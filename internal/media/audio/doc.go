// Package audio holds the PCM primitives of the dub pipeline: mono clips,
// playback-rate adjustment, the growing dub timeline and its WAV encoding,
// and the speech track choice made before recognition.
//
// Samples are 16-bit values carried in Go ints. Every operation works on
// mono audio at the sample rate of the clip; decoding downmixes and
// resamples so that callers only ever see one layout.
//
// Key types:
//   - Clip: an immutable mono sample buffer
//   - Timeline: the append/mix buffer the assembler fills
//   - Decoder: turns synthesized audio bytes into Clips
//   - Selection: the audio stream chosen for recognition
package audio
