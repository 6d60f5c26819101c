package workflow

import (
	"path/filepath"
	"strings"

	"dubby/internal/subtitles"
	"dubby/internal/textutil"
)

// containerExtensions lists source containers that accept an AAC track next
// to a copied video stream. Anything else is remuxed into MP4.
var containerExtensions = map[string]bool{
	".mp4": true,
	".m4v": true,
	".mov": true,
	".mkv": true,
}

// outputPlan fixes where a job writes its artifacts.
type outputPlan struct {
	dir  string
	base string
	lang string
}

func newOutputPlan(sourcePath, outputDir, targetLanguage string) outputPlan {
	dir := strings.TrimSpace(outputDir)
	if dir == "" {
		dir = filepath.Dir(sourcePath)
	}
	name := filepath.Base(sourcePath)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if clean := textutil.SanitizeFileName(base); clean != "" {
		base = clean
	}
	return outputPlan{dir: dir, base: base, lang: textutil.SanitizeToken(targetLanguage)}
}

func (p outputPlan) path(suffix string) string {
	return filepath.Join(p.dir, p.base+"."+p.lang+suffix)
}

// CaptionPath is <base>.<lang>.vtt or .srt.
func (p outputPlan) CaptionPath(format subtitles.Format) string {
	return p.path(format.Extension())
}

// VideoPath is <base>.<lang>.dub<ext>, keeping the source container when it
// can carry AAC.
func (p outputPlan) VideoPath(sourcePath string) string {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	if !containerExtensions[ext] {
		ext = ".mp4"
	}
	return p.path(".dub" + ext)
}

// AudioOnlyPath is used when the source has no video stream.
func (p outputPlan) AudioOnlyPath() string {
	return p.path(".dub.m4a")
}

// TrackPath is where --keep-track leaves the assembled WAV.
func (p outputPlan) TrackPath() string {
	return p.path(".dub.wav")
}
