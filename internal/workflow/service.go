package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dubby/internal/config"
	"dubby/internal/dubbing"
	"dubby/internal/jobs"
	"dubby/internal/logging"
	"dubby/internal/media/ffprobe"
	"dubby/internal/transcript"
	"dubby/internal/workdir"
)

// staleWorkDirAge bounds how long a scratch directory of a job still marked
// running survives a restart.
const staleWorkDirAge = 24 * time.Hour

// Recognizer turns the speech of a media file into timed segments.
type Recognizer interface {
	Recognize(ctx context.Context, source transcript.Source) ([]transcript.Segment, error)
}

// Translator translates one piece of text between two languages.
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
}

// Compositor writes the final media file.
type Compositor interface {
	Compose(ctx context.Context, videoPath, audioPath, outputPath string) error
	ComposeAudioOnly(ctx context.Context, audioPath, outputPath string) error
}

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Dependencies are the collaborators a Service runs jobs with. Translator and
// Synthesizer may be nil when no API credentials are configured; jobs that
// need them then fail with a configuration error.
type Dependencies struct {
	Recognizer  Recognizer
	Translator  Translator
	Synthesizer dubbing.Synthesizer
	Decoder     dubbing.ClipDecoder
	Assembler   *dubbing.Assembler
	Compositor  Compositor
	Probe       ProbeFunc
	Store       *jobs.Store
}

// Service runs caption and dub jobs.
type Service struct {
	cfg    *config.Config
	deps   Dependencies
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewService constructs a service. The store is owned by the service and
// closed by Close.
func NewService(cfg *config.Config, d Dependencies, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	if d.Assembler == nil {
		d.Assembler = dubbing.NewAssembler(assemblerOptions(cfg), logger)
	}
	return &Service{
		cfg:    cfg,
		deps:   d,
		logger: logging.NewComponentLogger(logger, "workflow"),
	}
}

// Start verifies the service can run jobs: required collaborators are
// present, scratch and state directories exist, and the store answers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("workflow service closed")
	}
	if s.started {
		return nil
	}
	var missing []string
	if s.deps.Recognizer == nil {
		missing = append(missing, "recognizer")
	}
	if s.deps.Compositor == nil {
		missing = append(missing, "compositor")
	}
	if s.deps.Probe == nil {
		missing = append(missing, "probe")
	}
	if s.deps.Store == nil {
		missing = append(missing, "job store")
	}
	if len(missing) > 0 {
		return fmt.Errorf("workflow service missing %v", missing)
	}
	if err := s.cfg.EnsureDirectories(); err != nil {
		return err
	}
	if err := s.deps.Store.Ping(ctx); err != nil {
		return fmt.Errorf("job store unavailable: %w", err)
	}
	s.reclaimWorkDirs(ctx)
	s.started = true
	s.logger.Debug("workflow service started",
		logging.String("store", s.deps.Store.Path()),
		logging.String("work_dir", s.cfg.Paths.WorkDir),
	)
	return nil
}

// Close releases the job store. It is safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.started = false
	if s.deps.Store != nil {
		return s.deps.Store.Close()
	}
	return nil
}

// reclaimWorkDirs removes scratch directories left behind by killed runs.
// Directories of jobs still marked pending or running are kept until they
// pass staleWorkDirAge, since another process may own them.
func (s *Service) reclaimWorkDirs(ctx context.Context) {
	root := s.cfg.Paths.WorkDir
	results := []workdir.CleanResult{workdir.CleanStale(ctx, root, staleWorkDirAge, s.logger)}

	live, err := s.deps.Store.List(ctx, jobs.ListOptions{Statuses: []jobs.Status{jobs.StatusPending, jobs.StatusRunning}})
	if err != nil {
		s.logger.Warn("skipping orphaned work directory cleanup", logging.Error(err))
	} else {
		ids := make([]string, 0, len(live))
		for _, job := range live {
			ids = append(ids, job.ID)
		}
		results = append(results, workdir.CleanOrphaned(ctx, root, workdir.ActiveSet(ids), s.logger))
	}

	removed := 0
	for _, result := range results {
		removed += len(result.Removed)
		if result.Err != nil {
			logging.WarnWithContext(s.logger, "work directory cleanup incomplete", "workdir_cleanup_failed",
				logging.Error(result.Err),
				logging.String(logging.FieldErrorHint, "check paths.work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
		}
	}
	if removed > 0 {
		s.logger.Info("reclaimed work directories", logging.Int("count", removed))
	}
}

// Store exposes the job history for read-only callers such as the CLI.
func (s *Service) Store() *jobs.Store { return s.deps.Store }

func (s *Service) ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return errors.New("workflow service not started")
	}
	return nil
}

func assemblerOptions(cfg *config.Config) dubbing.Options {
	return dubbing.Options{
		SampleRate:    cfg.Dubbing.SampleRate,
		Workers:       cfg.Dubbing.Workers,
		MinSpeedRatio: cfg.Dubbing.MinSpeedRatio,
		MaxSpeedRatio: cfg.Dubbing.MaxSpeedRatio,
		ClampOverflow: cfg.Dubbing.ClampOverflow,
		Synthesize:    synthesizePolicy(cfg),
	}
}
