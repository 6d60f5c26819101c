package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"dubby/internal/dubbing"
	"dubby/internal/fileutil"
	"dubby/internal/logging"
	"dubby/internal/media/audio"
	"dubby/internal/services"
)

func (r *jobRun) dub(ctx context.Context) error {
	var track *audio.Timeline
	if err := r.stage(ctx, StageAssemble, func(ctx context.Context) error {
		var err error
		track, err = r.assemble(ctx)
		return err
	}); err != nil {
		return err
	}
	return r.stage(ctx, StageMux, func(ctx context.Context) error {
		return r.mux(ctx, track)
	})
}

func (r *jobRun) assemble(ctx context.Context) (*audio.Timeline, error) {
	if r.job.SegmentCount == 0 {
		return nil, services.Wrap(services.ErrValidation, StageAssemble, "transcript", "no speech to dub", nil)
	}
	synthesize := dubbing.SynthesizeWith(r.svc.deps.Synthesizer, r.svc.deps.Decoder, r.targetLanguage)
	timeline, report, err := r.svc.deps.Assembler.Assemble(ctx, r.segments, synthesize, r.translateFunc())
	if err != nil {
		return nil, err
	}
	r.job.Warnings = append(r.job.Warnings, report.Messages()...)
	if report.Placed == 0 {
		return nil, services.Wrap(services.ErrExternalTool, StageAssemble, "synthesize",
			fmt.Sprintf("speech synthesis failed for all %d segment(s)", report.Failed), report.Err())
	}
	return timeline, nil
}

func (r *jobRun) mux(ctx context.Context, track *audio.Timeline) error {
	wavPath := filepath.Join(r.workDir, "dub.wav")
	if err := track.WriteWAV(wavPath); err != nil {
		return services.Wrap(services.ErrConfiguration, StageMux, "write track", wavPath, err)
	}

	muxCtx := ctx
	if timeout := r.svc.cfg.MuxTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		muxCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		output string
		err    error
	)
	if r.media.HasVideo() {
		output = r.plan.VideoPath(r.job.SourcePath)
		err = r.svc.deps.Compositor.Compose(muxCtx, r.job.SourcePath, wavPath, output)
	} else {
		output = r.plan.AudioOnlyPath()
		err = r.svc.deps.Compositor.ComposeAudioOnly(muxCtx, wavPath, output)
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(muxCtx.Err(), context.DeadlineExceeded) {
			return errors.Join(services.ErrTimeout, err)
		}
		return err
	}
	if r.media.HasVideo() {
		r.job.VideoPath = output
	} else {
		r.job.AudioPath = output
	}

	if r.req.KeepTrack || r.svc.cfg.Dubbing.KeepTrack {
		r.keepTrack(ctx, wavPath)
	}
	return nil
}

// keepTrack moves the assembled WAV next to the output. A failure leaves the
// composited media in place and is recorded as a warning.
func (r *jobRun) keepTrack(ctx context.Context, wavPath string) {
	dest := r.plan.TrackPath()
	logger := logging.WithContext(ctx, r.svc.logger)
	if err := fileutil.MoveFile(wavPath, dest); err != nil {
		r.job.Warnings = append(r.job.Warnings, "keep track: "+err.Error())
		logging.WarnWithContext(logger, "could not keep dub track", "keep_track_failed",
			logging.String("path", dest),
			logging.Error(err),
			logging.String(logging.FieldImpact, "composited media is unaffected"),
		)
		return
	}
	if r.job.AudioPath == "" {
		r.job.AudioPath = dest
	}
	logger.Info("dub track kept",
		logging.String(logging.FieldEventType, "dub_track_kept"),
		logging.String("path", dest),
	)
}
