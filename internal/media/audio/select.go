package audio

import (
	"strconv"
	"strings"

	"dubby/internal/language"
	"dubby/internal/media/ffprobe"
)

// Selection names the audio stream recognition should listen to.
type Selection struct {
	Primary ffprobe.Stream
	// PrimaryIndex is the container stream index, -1 when there is no audio.
	PrimaryIndex int
	// Ordinal is the position among audio streams, as used by ffmpeg's 0:a:N.
	Ordinal int
}

// Found reports whether any audio stream was selected.
func (s Selection) Found() bool { return s.PrimaryIndex >= 0 }

// PrimaryLabel returns a human-readable summary of the selected stream.
func (s Selection) PrimaryLabel() string {
	if !s.Found() {
		return ""
	}
	return formatStreamSummary(s.Primary)
}

// Select picks the main dialogue track for sourceLanguage. Tracks tagged with
// that language win, then tracks whose title does not mark them as
// commentary or audio description, then the default-flagged track. Earlier
// tracks win ties. An empty sourceLanguage skips the language preference.
func Select(streams []ffprobe.Stream, sourceLanguage string) Selection {
	candidates := buildCandidates(streams, sourceLanguage)
	if len(candidates) == 0 {
		return Selection{PrimaryIndex: -1, Ordinal: -1}
	}
	best := candidates[0]
	bestScore := scorePrimary(best)
	for _, cand := range candidates[1:] {
		if score := scorePrimary(cand); score > bestScore {
			best = cand
			bestScore = score
		}
	}
	return Selection{
		Primary:      best.stream,
		PrimaryIndex: best.stream.Index,
		Ordinal:      best.order,
	}
}

type candidate struct {
	stream         ffprobe.Stream
	order          int
	title          string
	languageMatch  bool
	secondary      bool
	channels       int
	defaultFlagged bool
}

func buildCandidates(streams []ffprobe.Stream, sourceLanguage string) []candidate {
	result := make([]candidate, 0, len(streams))
	order := 0
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		cand := candidate{
			stream:         stream,
			order:          order,
			title:          normalizeTitle(stream.Tags),
			channels:       stream.Channels,
			defaultFlagged: stream.Disposition["default"] == 1,
		}
		if sourceLanguage != "" {
			if tag := normalizeLanguage(stream.Tags); tag != "" {
				cand.languageMatch = language.Same(sourceLanguage, tag)
			}
		}
		cand.secondary = isSecondaryTrack(cand.title) ||
			stream.Disposition["comment"] == 1 ||
			stream.Disposition["visual_impaired"] == 1
		result = append(result, cand)
		order++
	}
	return result
}

func scorePrimary(cand candidate) float64 {
	score := 0.0
	if cand.languageMatch {
		score += 1000
	}
	if !cand.secondary {
		score += 500
	}
	if cand.defaultFlagged {
		score += 50
	}
	// Mono and stereo mixes keep dialogue at the front; surround is fine too.
	if cand.channels > 0 {
		score += 10
	}
	score -= float64(cand.order) * 0.1
	return score
}

var secondaryKeywords = []string{
	"commentary",
	"description",
	"descriptive",
	"narration",
	"karaoke",
	"instrumental",
	"music only",
}

func isSecondaryTrack(title string) bool {
	for _, keyword := range secondaryKeywords {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

func normalizeLanguage(tags map[string]string) string {
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "LANG"} {
		if value, ok := tags[key]; ok {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

func normalizeTitle(tags map[string]string) string {
	for _, key := range []string{"title", "TITLE", "handler_name", "HANDLER_NAME"} {
		if value, ok := tags[key]; ok {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := normalizeLanguage(stream.Tags); lang != "" {
		parts = append(parts, lang)
	}
	if stream.CodecName != "" {
		parts = append(parts, stream.CodecName)
	}
	if stream.Channels > 0 {
		parts = append(parts, strconv.Itoa(stream.Channels)+"ch")
	}
	if title := strings.TrimSpace(stream.Tags["title"]); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}
