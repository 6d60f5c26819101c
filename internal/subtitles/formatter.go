package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"dubby/internal/fileutil"
	"dubby/internal/logging"
	"dubby/internal/textutil"
	"dubby/internal/transcript"
)

// Cue is one caption block. Index is 1-based and gapless.
type Cue struct {
	Index   int
	StartMS int64
	EndMS   int64
	Text    string
}

// Document is a rendered caption file plus the counters gathered while
// building it.
type Document struct {
	Format    Format
	Cues      []Cue
	Skipped   int
	Fallbacks int
}

// Content serializes the document.
func (d Document) Content() string {
	var b strings.Builder
	if d.Format != FormatSRT {
		b.WriteString("WEBVTT\n")
		for _, cue := range d.Cues {
			b.WriteString("\n")
			writeCueBody(&b, cue, FormatVTT)
		}
		return b.String()
	}
	for i, cue := range d.Cues {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(cue.Index))
		b.WriteString("\n")
		writeCueBody(&b, cue, FormatSRT)
	}
	return b.String()
}

func writeCueBody(b *strings.Builder, cue Cue, format Format) {
	b.WriteString(FormatTimestamp(cue.StartMS, format))
	b.WriteString(" --> ")
	b.WriteString(FormatTimestamp(cue.EndMS, format))
	b.WriteString("\n")
	b.WriteString(cue.Text)
	b.WriteString("\n")
}

// WriteFile writes the document to path atomically.
func (d Document) WriteFile(path string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(d.Content()), 0o644); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	return nil
}

// Formatter builds caption documents from recognized segments.
type Formatter struct {
	format     Format
	normalizer *textutil.Normalizer
	logger     *slog.Logger
}

// NewFormatter returns a formatter. A nil normalizer leaves text untouched
// apart from whitespace cleanup.
func NewFormatter(format Format, normalizer *textutil.Normalizer, logger *slog.Logger) *Formatter {
	if format == "" {
		format = FormatVTT
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Formatter{format: format, normalizer: normalizer, logger: logger}
}

// Format emits one cue per usable segment in input order. Degenerate
// segments and segments whose text normalizes to nothing are skipped. When
// translate is non-nil each cue's text is replaced by its translation, or
// kept as-is if translation fails. Format only returns an error when ctx is
// canceled.
func (f *Formatter) Format(ctx context.Context, segments []transcript.Segment, translate transcript.TranslateFunc) (Document, error) {
	logger := logging.WithContext(ctx, f.logger)
	doc := Document{Format: f.format}
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		if seg.Degenerate() {
			doc.Skipped++
			logger.Debug("skipping degenerate segment",
				logging.Int("segment", i),
				logging.Float64("start", seg.Start),
				logging.Float64("end", seg.End),
			)
			continue
		}
		text := f.normalizer.Normalize(seg.Text)
		if text == "" {
			doc.Skipped++
			continue
		}
		if translate != nil {
			result := translate(ctx, text)
			translated, fellBack := result.Resolve(text)
			if fellBack {
				doc.Fallbacks++
				attrs := []logging.Attr{
					logging.Int("segment", i),
					logging.String(logging.FieldImpact, "cue keeps source text"),
				}
				if result.Err != nil {
					attrs = append(attrs, logging.Error(result.Err))
				}
				logging.WarnWithContext(logger, "caption translation fell back to source text", "caption_translation_fallback", attrs...)
			}
			text = cueText(translated)
			if text == "" {
				text = cueText(seg.Text)
			}
		}
		doc.Cues = append(doc.Cues, Cue{
			Index:   len(doc.Cues) + 1,
			StartMS: seg.StartMS(),
			EndMS:   seg.EndMS(),
			Text:    text,
		})
	}
	logger.Info("captions formatted",
		logging.String(logging.FieldEventType, "captions_formatted"),
		logging.String("format", string(f.format)),
		logging.Int("cues", len(doc.Cues)),
		logging.Int("skipped", doc.Skipped),
		logging.Int("fallbacks", doc.Fallbacks),
	)
	return doc, nil
}

// cueText keeps a cue on one logical block; a blank line would end it early.
func cueText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
