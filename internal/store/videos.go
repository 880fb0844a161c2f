package store

import (
	"context"

	"github.com/google/uuid"
)

// InsertVideo persists a freshly rendered artifact with upload_status pending.
func (s *Store) InsertVideo(ctx context.Context, v *Video) error {
	const q = `INSERT INTO videos (script_id, channel_id, language, file_path, audio_path, subtitle_path,
		duration_seconds, width, height, file_size_mb, upload_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q, v.ScriptID, v.ChannelID, v.Language, v.FilePath,
		v.AudioPath, v.SubtitlePath, v.DurationSeconds, v.Width, v.Height,
		v.FileSizeMB, UploadPending).Scan(&v.ID, &v.CreatedAt)
}

// MarkUploadSuccess transitions a video to its terminal success state.
func (s *Store) MarkUploadSuccess(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE videos
		SET upload_status = $1, last_upload_attempt_at = NOW(), upload_error_message = NULL
		WHERE id = $2`
	_, err := s.pool.Exec(ctx, q, UploadUploaded, id)
	return err
}

// MarkUploadFailed records a classified failure and counts the attempt.
// Quota exhaustion gets its own status so the retry sweep can apply the
// cool-down gate; everything else is eligible again next cycle.
func (s *Store) MarkUploadFailed(ctx context.Context, id uuid.UUID, isQuota bool, message string) error {
	status := UploadFailed
	if isQuota {
		status = UploadQuotaExceeded
	}
	const q = `UPDATE videos
		SET upload_status = $1,
		    upload_attempts = upload_attempts + 1,
		    last_upload_attempt_at = NOW(),
		    upload_error_message = $2
		WHERE id = $3`
	_, err := s.pool.Exec(ctx, q, status, message, id)
	return err
}

// PermanentlyFailVideo pushes the attempt counter to the ceiling so the row
// drops out of the retry candidate set for good.
func (s *Store) PermanentlyFailVideo(ctx context.Context, id uuid.UUID, maxAttempts int, reason string) error {
	const q = `UPDATE videos
		SET upload_status = $1,
		    upload_attempts = GREATEST(upload_attempts, $2),
		    last_upload_attempt_at = NOW(),
		    upload_error_message = $3
		WHERE id = $4`
	_, err := s.pool.Exec(ctx, q, UploadFailed, maxAttempts, reason, id)
	return err
}

// RetryCandidates selects videos eligible for another upload attempt:
// failed rows immediately, quota_exceeded rows after the cool-down, both
// under the attempt ceiling and only where the owning channel still holds a
// token. Oldest attempt first, never-attempted rows ahead of everything.
func (s *Store) RetryCandidates(ctx context.Context, cooldownHours, maxAttempts, limit int) ([]Video, error) {
	const q = `SELECT v.id, v.script_id, v.channel_id, v.language, v.file_path, v.audio_path, v.subtitle_path,
		v.duration_seconds, v.width, v.height, v.file_size_mb,
		v.upload_status, v.upload_attempts, v.last_upload_attempt_at, v.upload_error_message, v.created_at
		FROM videos v
		JOIN channels c ON c.id = v.channel_id
		WHERE (v.upload_status = 'failed'
		    OR (v.upload_status = 'quota_exceeded'
		        AND (v.last_upload_attempt_at IS NULL
		             OR v.last_upload_attempt_at < NOW() - make_interval(hours => $1))))
		  AND v.upload_attempts < $2
		  AND c.access_token IS NOT NULL
		ORDER BY v.last_upload_attempt_at ASC NULLS FIRST
		LIMIT $3`
	rows, err := s.pool.Query(ctx, q, cooldownHours, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Video
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.ID, &v.ScriptID, &v.ChannelID, &v.Language, &v.FilePath,
			&v.AudioPath, &v.SubtitlePath, &v.DurationSeconds, &v.Width, &v.Height,
			&v.FileSizeMB, &v.UploadStatus, &v.UploadAttempts, &v.LastUploadAttemptAt,
			&v.UploadErrorMessage, &v.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// UploadContextFor reconstructs the metadata an upload needs from rows the
// pipeline already persisted.
func (s *Store) UploadContextFor(ctx context.Context, videoID uuid.UUID) (*UploadContext, error) {
	const q = `SELECT v.id, v.script_id, v.channel_id, v.language, v.file_path, v.audio_path, v.subtitle_path,
		v.duration_seconds, v.width, v.height, v.file_size_mb,
		v.upload_status, v.upload_attempts, v.last_upload_attempt_at, v.upload_error_message, v.created_at,
		s.title, s.description, s.tags,
		c.id, c.name, c.language, c.voice_id, c.speaking_rate, c.pitch, c.group_id,
		c.enabled, c.cron_schedule, c.width, c.height, c.topic_prompt, c.script_prompt, c.upload_as_short,
		c.access_token, c.refresh_token, c.token_expiry, c.token_scope
		FROM videos v
		JOIN scripts s ON s.id = v.script_id
		JOIN channels c ON c.id = v.channel_id
		WHERE v.id = $1`
	var uc UploadContext
	v := &uc.Video
	c := &uc.Channel
	err := s.pool.QueryRow(ctx, q, videoID).Scan(&v.ID, &v.ScriptID, &v.ChannelID,
		&v.Language, &v.FilePath, &v.AudioPath, &v.SubtitlePath, &v.DurationSeconds,
		&v.Width, &v.Height, &v.FileSizeMB, &v.UploadStatus, &v.UploadAttempts,
		&v.LastUploadAttemptAt, &v.UploadErrorMessage, &v.CreatedAt,
		&uc.Title, &uc.Description, &uc.Tags,
		&c.ID, &c.Name, &c.Language, &c.VoiceID, &c.SpeakingRate, &c.Pitch, &c.GroupID,
		&c.Enabled, &c.CronSchedule, &c.Width, &c.Height, &c.TopicPrompt, &c.ScriptPrompt,
		&c.UploadAsShort, &c.AccessToken, &c.RefreshToken, &c.TokenExpiry, &c.TokenScope)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}
