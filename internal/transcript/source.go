package transcript

import "strconv"

// Source identifies the speech a recognizer should transcribe.
type Source struct {
	Path string
	// AudioTrack is the position among the audio streams of Path.
	AudioTrack int
	// Language is a hint; empty lets the recognizer detect it.
	Language string
}

// AudioMap returns the ffmpeg -map selector for the speech track.
func (s Source) AudioMap() string {
	track := s.AudioTrack
	if track < 0 {
		track = 0
	}
	return "0:a:" + strconv.Itoa(track)
}
