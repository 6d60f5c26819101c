package jobs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const jobColumns = "id, action, source_path, source_language, target_language, status, stage, caption_path, video_path, audio_path, error_message, warnings_json, segment_count, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id             string
		action         string
		sourcePath     string
		sourceLanguage sql.NullString
		targetLanguage string
		status         string
		stage          sql.NullString
		captionPath    sql.NullString
		videoPath      sql.NullString
		audioPath      sql.NullString
		errorMessage   sql.NullString
		warningsJSON   sql.NullString
		segmentCount   int
		createdRaw     string
		updatedRaw     string
	)
	if err := scanner.Scan(
		&id,
		&action,
		&sourcePath,
		&sourceLanguage,
		&targetLanguage,
		&status,
		&stage,
		&captionPath,
		&videoPath,
		&audioPath,
		&errorMessage,
		&warningsJSON,
		&segmentCount,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:             id,
		Action:         Action(action),
		SourcePath:     sourcePath,
		SourceLanguage: sourceLanguage.String,
		TargetLanguage: targetLanguage,
		Status:         Status(status),
		Stage:          stage.String,
		CaptionPath:    captionPath.String,
		VideoPath:      videoPath.String,
		AudioPath:      audioPath.String,
		ErrorMessage:   errorMessage.String,
		SegmentCount:   segmentCount,
	}
	if warningsJSON.Valid && strings.TrimSpace(warningsJSON.String) != "" {
		_ = json.Unmarshal([]byte(warningsJSON.String), &job.Warnings)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func encodeWarnings(warnings []string) (any, error) {
	if len(warnings) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(warnings)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
