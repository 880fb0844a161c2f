package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VideoPatch is a partial update of a video row. Nil fields are left
// untouched. Column names are fixed here, never assembled from input.
type VideoPatch struct {
	FilePath            *string
	AudioPath           *string
	SubtitlePath        *string
	DurationSeconds     *float64
	Width               *int
	Height              *int
	FileSizeMB          *float64
	UploadStatus        *string
	UploadAttempts      *int
	LastUploadAttemptAt *time.Time
	UploadErrorMessage  *string
}

// setClauses returns the SET fragments and positional args for the patch.
func (p VideoPatch) setClauses() ([]string, []any) {
	var clauses []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.FilePath != nil {
		add("file_path", *p.FilePath)
	}
	if p.AudioPath != nil {
		add("audio_path", *p.AudioPath)
	}
	if p.SubtitlePath != nil {
		add("subtitle_path", *p.SubtitlePath)
	}
	if p.DurationSeconds != nil {
		add("duration_seconds", *p.DurationSeconds)
	}
	if p.Width != nil {
		add("width", *p.Width)
	}
	if p.Height != nil {
		add("height", *p.Height)
	}
	if p.FileSizeMB != nil {
		add("file_size_mb", *p.FileSizeMB)
	}
	if p.UploadStatus != nil {
		add("upload_status", *p.UploadStatus)
	}
	if p.UploadAttempts != nil {
		add("upload_attempts", *p.UploadAttempts)
	}
	if p.LastUploadAttemptAt != nil {
		add("last_upload_attempt_at", *p.LastUploadAttemptAt)
	}
	if p.UploadErrorMessage != nil {
		add("upload_error_message", *p.UploadErrorMessage)
	}

	return clauses, args
}

// IsEmpty reports whether the patch would change nothing.
func (p VideoPatch) IsEmpty() bool {
	clauses, _ := p.setClauses()
	return len(clauses) == 0
}

// UpdateVideo applies a partial update to one video row.
func (s *Store) UpdateVideo(ctx context.Context, id uuid.UUID, patch VideoPatch) error {
	clauses, args := patch.setClauses()
	if len(clauses) == 0 {
		return nil
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE videos SET %s WHERE id = $%d",
		strings.Join(clauses, ", "), len(args))
	_, err := s.pool.Exec(ctx, q, args...)
	return err
}
