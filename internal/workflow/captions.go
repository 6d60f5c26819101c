package workflow

import (
	"context"
	"fmt"

	"dubby/internal/logging"
	"dubby/internal/services"
	"dubby/internal/subtitles"
)

func (r *jobRun) captions(ctx context.Context) error {
	format, err := subtitles.ParseFormat(r.svc.cfg.Captions.Format)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, StageCaptions, "format", "", err)
	}
	formatter := subtitles.NewFormatter(format, r.normalizer, r.svc.logger)
	doc, err := formatter.Format(ctx, r.segments, r.translateFunc())
	if err != nil {
		return err
	}

	path := r.plan.CaptionPath(format)
	if err := doc.WriteFile(path); err != nil {
		return services.Wrap(services.ErrConfiguration, StageCaptions, "write", path, err)
	}
	if doc.Fallbacks > 0 {
		r.job.Warnings = append(r.job.Warnings,
			fmt.Sprintf("%d cue(s) kept source text after translation failed", doc.Fallbacks))
	}
	for _, issue := range subtitles.ValidateContent(path, r.media.DurationSeconds()) {
		r.job.Warnings = append(r.job.Warnings, "caption check: "+issue)
	}
	r.job.CaptionPath = path

	logging.WithContext(ctx, r.svc.logger).Info("captions written",
		logging.String(logging.FieldEventType, "captions_written"),
		logging.String("path", path),
		logging.Int("cues", len(doc.Cues)),
		logging.Int("fallbacks", doc.Fallbacks),
	)
	return nil
}
