package dubbing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"dubby/internal/logging"
	"dubby/internal/media/audio"
	"dubby/internal/services"
	"dubby/internal/transcript"
)

const (
	DefaultSampleRate = 24000
	DefaultWorkers    = 4
)

// Options configures an Assembler.
type Options struct {
	SampleRate int
	Workers    int
	// MinSpeedRatio and MaxSpeedRatio clamp the playback-rate change. Zero
	// leaves that bound open.
	MinSpeedRatio float64
	MaxSpeedRatio float64
	// ClampOverflow keeps a clamped clip whole even when it runs past its
	// slot. Otherwise the clip is trimmed to the slot and timing stays exact.
	ClampOverflow bool
	// Synthesize bounds each synthesis call.
	Synthesize services.CallPolicy
}

// Assembler builds dub tracks. It holds no per-job state and may be shared.
type Assembler struct {
	opts   Options
	logger *slog.Logger
}

// NewAssembler returns an assembler with defaults filled in.
func NewAssembler(opts Options, logger *slog.Logger) *Assembler {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{opts: opts, logger: logging.NewComponentLogger(logger, "dubbing")}
}

// SampleRate returns the rate of every timeline the assembler produces.
func (a *Assembler) SampleRate() int { return a.opts.SampleRate }

type job struct {
	index   int
	segment transcript.Segment
	text    string
}

type outcome struct {
	clip      audio.Clip
	fellBack  bool
	translate error
	err       error
}

// Assemble translates (when translate is non-nil), synthesizes, and places
// every usable segment on a fresh timeline. Only cancellation of ctx returns
// an error; per-segment failures are recorded on the Report.
func (a *Assembler) Assemble(ctx context.Context, segments []transcript.Segment, synthesize SynthesizeFunc, translate transcript.TranslateFunc) (*audio.Timeline, Report, error) {
	logger := logging.WithContext(ctx, a.logger)
	report := Report{Segments: len(segments)}
	if synthesize == nil {
		return nil, report, services.Wrap(services.ErrConfiguration, "dubbing", "assemble", "no synthesizer configured", nil)
	}

	jobs := make([]job, 0, len(segments))
	for i, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if seg.Degenerate() || text == "" {
			report.Skipped++
			logger.Debug("skipping segment",
				logging.Int("segment", i),
				logging.Float64("start", seg.Start),
				logging.Float64("end", seg.End),
				logging.Bool("empty_text", text == ""),
			)
			continue
		}
		jobs = append(jobs, job{index: i, segment: seg, text: text})
	}

	results, err := a.synthesizeAll(ctx, logger, jobs, synthesize, translate)
	if err != nil {
		return nil, Report{}, err
	}

	timeline := audio.NewTimeline(a.opts.SampleRate)
	for n, j := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, Report{}, err
		}
		a.place(timeline, j, results[n], &report, logger)
	}

	logger.Info("dub track assembled",
		logging.String(logging.FieldEventType, "dub_assembled"),
		logging.Int("segments", report.Segments),
		logging.Int("placed", report.Placed),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Int("fallbacks", report.Fallbacks),
		logging.Int("clamped", report.Clamped),
		logging.Int("overlaps", report.Overlaps),
		logging.Int64("duration_ms", timeline.DurationMS()),
	)
	return timeline, report, nil
}

// synthesizeAll runs translate and synthesize for each job on the worker
// pool. Results are indexed like jobs.
func (a *Assembler) synthesizeAll(ctx context.Context, logger *slog.Logger, jobs []job, synthesize SynthesizeFunc, translate transcript.TranslateFunc) ([]outcome, error) {
	results := make([]outcome, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	var (
		mu      sync.Mutex
		done    int
		sampler = logging.NewProgressSampler(10)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for n, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var res outcome
			text := j.text
			if translate != nil {
				tr := translate(gctx, text)
				text, res.fellBack = tr.Resolve(j.text)
				res.translate = tr.Err
			}
			res.clip, res.err = services.Call(gctx, a.opts.Synthesize, func(callCtx context.Context) (audio.Clip, error) {
				return synthesize(callCtx, text)
			})
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[n] = res

			mu.Lock()
			done++
			if sampler.ShouldLogCount(done, len(jobs)) {
				logger.Info("dub synthesis progress",
					logging.String(logging.FieldEventType, "dub_synthesis_progress"),
					logging.Int("done", done),
					logging.Int("total", len(jobs)),
				)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return results, nil
}

func (a *Assembler) place(timeline *audio.Timeline, j job, res outcome, report *Report, logger *slog.Logger) {
	rate := a.opts.SampleRate
	start := audio.SamplesForMS(j.segment.StartMS(), rate)
	end := audio.SamplesForMS(j.segment.EndMS(), rate)
	slot := end - start

	if res.fellBack {
		report.Fallbacks++
		if res.translate != nil {
			report.warn(j.index, errors.Join(errors.New("translation fell back to source text"), res.translate))
		}
	}
	if res.err != nil || res.clip.Empty() || slot <= 0 {
		err := res.err
		if err == nil {
			err = errors.New("synthesizer returned no audio")
		}
		report.Failed++
		report.warn(j.index, err)
		logging.WarnWithContext(logger, "segment audio skipped", "dub_segment_skipped",
			logging.Int("segment", j.index),
			logging.Error(err),
			logging.String(logging.FieldImpact, "slot left silent"),
		)
		// Keep later segments and the track length anchored to absolute time.
		timeline.PadTo(end)
		return
	}

	clip := audio.Resample(res.clip, rate)
	ratio := float64(clip.Len()) / float64(slot)
	clamped := false
	if a.opts.MinSpeedRatio > 0 && ratio < a.opts.MinSpeedRatio {
		ratio, clamped = a.opts.MinSpeedRatio, true
	}
	if a.opts.MaxSpeedRatio > 0 && ratio > a.opts.MaxSpeedRatio {
		ratio, clamped = a.opts.MaxSpeedRatio, true
	}
	adjusted := audio.AdjustPlaybackRate(clip, ratio)
	fitted := audio.Fit(adjusted, slot)
	if clamped {
		report.Clamped++
		if a.opts.ClampOverflow && adjusted.Len() > slot {
			fitted = adjusted
		}
	}

	if timeline.Len() <= start {
		timeline.PadTo(start)
		timeline.Append(fitted.Samples)
	} else {
		// Overlap with the previous segment is mixed in place, not corrected.
		report.Overlaps++
		logger.Debug("segment overlaps previous audio",
			logging.Int("segment", j.index),
			logging.Int("overlap_samples", timeline.Len()-start),
		)
		timeline.MixAt(start, fitted.Samples)
	}
	report.Placed++
}
