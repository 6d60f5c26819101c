package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewJob describes a job about to start.
type NewJob struct {
	Action         Action
	SourcePath     string
	SourceLanguage string
	TargetLanguage string
}

// Create inserts a pending job with a fresh identifier.
func (s *Store) Create(ctx context.Context, req NewJob) (*Job, error) {
	if strings.TrimSpace(req.SourcePath) == "" {
		return nil, errors.New("create job: source path required")
	}
	if req.Action != ActionCaption && req.Action != ActionDub {
		return nil, fmt.Errorf("create job: invalid action %q", req.Action)
	}
	now := time.Now().UTC()
	job := &Job{
		ID:             uuid.NewString(),
		Action:         req.Action,
		SourcePath:     req.SourcePath,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	timestamp := now.Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (
            id, action, source_path, source_language, target_language,
            status, segment_count, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		job.ID,
		job.Action,
		job.SourcePath,
		nullableString(job.SourceLanguage),
		job.TargetLanguage,
		job.Status,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// Update persists changes to an existing job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	warnings, err := encodeWarnings(job.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	job.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs
         SET source_language = ?, target_language = ?, status = ?, stage = ?,
             caption_path = ?, video_path = ?, audio_path = ?, error_message = ?,
             warnings_json = ?, segment_count = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(job.SourceLanguage),
		job.TargetLanguage,
		job.Status,
		nullableString(job.Stage),
		nullableString(job.CaptionPath),
		nullableString(job.VideoPath),
		nullableString(job.AudioPath),
		nullableString(job.ErrorMessage),
		warnings,
		job.SegmentCount,
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update job %s: not found", job.ID)
	}
	return nil
}

// Get fetches a job by identifier. A unique identifier prefix of at least
// eight characters also matches. It returns nil when nothing matches.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if len(id) < 8 {
		return nil, nil
	}
	matches, err := s.query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id LIKE ? ORDER BY created_at DESC LIMIT 2`, id+"%")
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, nil
	}
	return matches[0], nil
}

// ListOptions filters List.
type ListOptions struct {
	Statuses []Status
	Limit    int
}

// List returns jobs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := make([]any, 0, len(opts.Statuses)+1)
	if len(opts.Statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(opts.Statuses)) + `)`
		for _, status := range opts.Statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}
	return s.query(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*Job, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Clear deletes jobs in the given statuses, or every terminal job when none
// are given. Running and pending rows are kept so a live job is never lost.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	if len(statuses) == 0 {
		for _, status := range allStatuses {
			if status.IsTerminal() {
				statuses = append(statuses, status)
			}
		}
	}
	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, status)
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE status IN (`+makePlaceholders(len(statuses))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
