package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"dubby/internal/jobs"
	"dubby/internal/language"
	"dubby/internal/logging"
	"dubby/internal/media/audio"
	"dubby/internal/media/ffprobe"
	"dubby/internal/services"
	"dubby/internal/textutil"
	"dubby/internal/transcript"
	"dubby/internal/workdir"
)

// Stage names recorded on the job row and stamped on log lines.
const (
	StageValidate  = "validate"
	StageProbe     = "probe"
	StageASR       = "asr"
	StageNormalize = "normalize"
	StageCaptions  = "captions"
	StageAssemble  = "assemble"
	StageMux       = "mux"
)

// jobRun carries the state of one Run call.
type jobRun struct {
	svc    *Service
	req    Request
	job    *jobs.Job
	logger *slog.Logger

	sourceLanguage string
	targetLanguage string
	workDir        string
	plan           outputPlan
	media          ffprobe.Result
	segments       []transcript.Segment
	normalizer     *textutil.Normalizer
}

// Run executes one job to completion. The job row is created first so that
// every request, including rejected ones, appears in history. The returned
// Result never carries artifact paths when the job did not complete.
func (s *Service) Run(ctx context.Context, req Request) Result {
	if err := s.ready(); err != nil {
		return resultFromJob(nil, err)
	}
	job, err := s.deps.Store.Create(ctx, jobs.NewJob{
		Action:         req.Action,
		SourcePath:     strings.TrimSpace(req.SourcePath),
		SourceLanguage: strings.TrimSpace(req.SourceLanguage),
		TargetLanguage: strings.TrimSpace(req.TargetLanguage),
	})
	if err != nil {
		return resultFromJob(nil, services.Wrap(services.ErrInput, StageValidate, "create job", "", err))
	}

	ctx = services.WithJobID(ctx, job.ID)
	ctx = services.WithAction(ctx, string(job.Action))
	ctx = services.WithRequestID(ctx, uuid.NewString())
	r := &jobRun{
		svc:    s,
		req:    req,
		job:    job,
		logger: logging.WithContext(ctx, s.logger),
	}
	r.logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("source_file", job.SourcePath),
		logging.String("target_language", job.TargetLanguage),
	)
	start := time.Now()
	runErr := r.execute(ctx)
	r.finish(ctx, runErr, time.Since(start))
	return resultFromJob(job, runErr)
}

func (r *jobRun) execute(ctx context.Context) error {
	if err := r.stage(ctx, StageValidate, r.validate); err != nil {
		return err
	}

	workDir, err := workdir.Create(r.svc.cfg.Paths.WorkDir, r.job.ID)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, StageValidate, "create work directory", "", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			r.logger.Warn("work directory cleanup failed",
				logging.String("path", workDir),
				logging.Error(err),
			)
		}
	}()
	r.workDir = workDir

	for _, step := range []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageProbe, r.probe},
		{StageASR, r.recognize},
		{StageNormalize, r.normalize},
	} {
		if err := r.stage(ctx, step.name, step.fn); err != nil {
			return err
		}
	}

	switch r.job.Action {
	case jobs.ActionCaption:
		return r.stage(ctx, StageCaptions, r.captions)
	case jobs.ActionDub:
		return r.dub(ctx)
	default:
		return services.Wrap(services.ErrInput, StageValidate, "action", fmt.Sprintf("unknown action %q", r.job.Action), nil)
	}
}

// stage records the transition on the job row and runs fn with the stage
// name on ctx.
func (r *jobRun) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, r.svc.logger)
	r.job.Stage = name
	if r.job.Status == jobs.StatusRunning {
		r.persist(ctx)
	}
	started := time.Now()
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(stageCtx); err != nil {
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(started)),
	)
	return nil
}

func (r *jobRun) persist(ctx context.Context) {
	if err := r.svc.deps.Store.Update(context.WithoutCancel(ctx), r.job); err != nil {
		r.logger.Warn("failed to persist job progress",
			logging.String("stage", r.job.Stage),
			logging.Error(err),
		)
	}
}

func (r *jobRun) validate(ctx context.Context) error {
	cfg := r.svc.cfg
	target, err := language.Supported(r.req.TargetLanguage, cfg.Languages.Supported)
	if err != nil {
		return services.Wrap(services.ErrInput, StageValidate, "target language", "", err)
	}
	sourceHint := strings.TrimSpace(r.req.SourceLanguage)
	if sourceHint == "" {
		sourceHint = cfg.Languages.Source
	}
	source, err := language.Canonical(sourceHint)
	if err != nil {
		return services.Wrap(services.ErrInput, StageValidate, "source language", "", err)
	}

	info, err := os.Stat(r.job.SourcePath)
	switch {
	case err != nil:
		return services.Wrap(services.ErrInput, StageValidate, "source file", "source media not readable", err)
	case info.IsDir():
		return services.Wrap(services.ErrInput, StageValidate, "source file", r.job.SourcePath+" is a directory", nil)
	}

	if !language.Same(source, target) && r.svc.deps.Translator == nil {
		return r.credentialsError("translation")
	}
	if r.job.Action == jobs.ActionDub && (r.svc.deps.Synthesizer == nil || r.svc.deps.Decoder == nil) {
		return r.credentialsError("speech synthesis")
	}

	r.sourceLanguage = source
	r.targetLanguage = target
	outputDir := r.req.OutputDir
	if strings.TrimSpace(outputDir) == "" {
		outputDir = cfg.Paths.OutputDir
	}
	r.plan = newOutputPlan(r.job.SourcePath, outputDir, target)
	if err := os.MkdirAll(r.plan.dir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, StageValidate, "output directory", "", err)
	}

	r.job.SourceLanguage = source
	r.job.TargetLanguage = target
	r.job.Status = jobs.StatusRunning
	r.persist(ctx)
	return nil
}

func (r *jobRun) credentialsError(feature string) error {
	cause := r.svc.cfg.RequireOpenAIKey()
	if cause == nil {
		cause = errors.New("no backend configured")
	}
	return services.Wrap(services.ErrConfiguration, StageValidate, feature, "unavailable", cause)
}

func (r *jobRun) probe(ctx context.Context) error {
	media, err := r.svc.deps.Probe(ctx, r.job.SourcePath)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrValidation, StageProbe, "ffprobe", "source is not readable media", err)
	}
	if !media.HasAudio() {
		return services.Wrap(services.ErrValidation, StageProbe, "audio", "source has no audio stream", nil)
	}
	r.media = media
	logging.WithContext(ctx, r.svc.logger).Info("media probed",
		logging.String(logging.FieldEventType, "media_probed"),
		logging.Bool("video", media.HasVideo()),
		logging.Int("audio_streams", media.AudioStreamCount()),
		logging.Float64("duration_seconds", media.DurationSeconds()),
	)
	return nil
}

func (r *jobRun) recognize(ctx context.Context) error {
	selection := audio.Select(r.media.Streams, r.sourceLanguage)
	source := transcript.Source{
		Path:       r.job.SourcePath,
		AudioTrack: selection.Ordinal,
		Language:   r.sourceLanguage,
	}
	logger := logging.WithContext(ctx, r.svc.logger)
	logger.Info("speech track selected",
		logging.String(logging.FieldEventType, "speech_track_selected"),
		logging.Int("stream_index", selection.PrimaryIndex),
		logging.String("track", selection.PrimaryLabel()),
	)

	policy := services.CallPolicy{Timeout: r.svc.cfg.ASRTimeout()}
	segments, err := services.Call(ctx, policy, func(callCtx context.Context) ([]transcript.Segment, error) {
		return r.svc.deps.Recognizer.Recognize(callCtx, source)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech recognition: %w", err)
	}
	if !transcript.InOrder(segments) {
		logging.WarnWithContext(logger, "recognizer returned segments out of order", "asr_out_of_order",
			logging.String(logging.FieldImpact, "overlapping segments are mixed rather than sequenced"),
		)
	}
	r.segments = segments
	return nil
}

func (r *jobRun) normalize(ctx context.Context) error {
	normalizer, err := textutil.NewNormalizer(r.sourceLanguage, r.svc.cfg.Text.FillerWords)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, StageNormalize, "filler words", "", err)
	}
	r.normalizer = normalizer
	r.segments = normalizer.NormalizeSegments(r.segments)
	r.job.SegmentCount = speakable(r.segments)
	logging.WithContext(ctx, r.svc.logger).Info("transcript normalized",
		logging.String(logging.FieldEventType, "transcript_normalized"),
		logging.Int("segments", len(r.segments)),
		logging.Int("speakable", r.job.SegmentCount),
	)
	return nil
}

// speakable counts segments with a usable slot and text.
func speakable(segments []transcript.Segment) int {
	count := 0
	for _, seg := range segments {
		if !seg.Degenerate() && strings.TrimSpace(seg.Text) != "" {
			count++
		}
	}
	return count
}

// translateFunc returns nil when no translation is needed.
func (r *jobRun) translateFunc() transcript.TranslateFunc {
	if language.Same(r.sourceLanguage, r.targetLanguage) {
		return nil
	}
	translator := r.svc.deps.Translator
	policy := services.CallPolicy{Timeout: r.svc.cfg.TranslateTimeout()}
	source, target := r.sourceLanguage, r.targetLanguage
	return func(ctx context.Context, text string) transcript.TranslationResult {
		out, err := services.Call(ctx, policy, func(callCtx context.Context) (string, error) {
			return translator.Translate(callCtx, text, source, target)
		})
		return transcript.TranslationResult{Text: out, Err: err}
	}
}

func (r *jobRun) finish(ctx context.Context, runErr error, elapsed time.Duration) {
	job := r.job
	if runErr == nil {
		job.Status = jobs.StatusCompleted
		job.ErrorMessage = ""
		r.persist(ctx)
		r.logger.Info("job completed",
			logging.String(logging.FieldEventType, "job_complete"),
			logging.Duration("job_duration", elapsed),
			logging.Int("segments", job.SegmentCount),
			logging.Int("warnings", len(job.Warnings)),
			logging.Any("artifacts", job.Artifacts()),
		)
		return
	}

	job.Status = services.FailureStatus(runErr)
	job.ErrorMessage = strings.TrimSpace(runErr.Error())
	job.ClearArtifacts()
	r.persist(ctx)

	attrs := []logging.Attr{
		logging.String("resolved_status", string(job.Status)),
		logging.String("last_stage", job.Stage),
		logging.Duration("job_duration", elapsed),
		logging.Error(runErr),
	}
	switch job.Status {
	case jobs.StatusCanceled:
		r.logger.Info("job canceled", logging.Args(append(attrs, logging.String(logging.FieldEventType, "job_canceled"))...)...)
	case jobs.StatusRejected:
		logging.WarnWithContext(r.logger, "job rejected", "job_rejected",
			append(attrs, logging.String(logging.FieldImpact, "no external calls were made"))...)
	default:
		logging.ErrorWithContext(r.logger, "job failed", "job_failed", append(attrs, logging.Alert("job_failure"))...)
	}
}
