package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const channelColumns = `id, name, language, voice_id, speaking_rate, pitch, group_id,
	enabled, cron_schedule, width, height, topic_prompt, script_prompt, upload_as_short,
	access_token, refresh_token, token_expiry, token_scope`

func scanChannel(row pgx.Row) (*Channel, error) {
	var c Channel
	err := row.Scan(&c.ID, &c.Name, &c.Language, &c.VoiceID, &c.SpeakingRate, &c.Pitch,
		&c.GroupID, &c.Enabled, &c.CronSchedule, &c.Width, &c.Height,
		&c.TopicPrompt, &c.ScriptPrompt, &c.UploadAsShort,
		&c.AccessToken, &c.RefreshToken, &c.TokenExpiry, &c.TokenScope)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// EnabledChannels returns all channels eligible for scheduling.
func (s *Store) EnabledChannels(ctx context.Context) ([]Channel, error) {
	q := `SELECT ` + channelColumns + ` FROM channels WHERE enabled ORDER BY name`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Channel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

func (s *Store) ChannelByID(ctx context.Context, id uuid.UUID) (*Channel, error) {
	q := `SELECT ` + channelColumns + ` FROM channels WHERE id = $1`
	return scanChannel(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) ChannelByName(ctx context.Context, name string) (*Channel, error) {
	q := `SELECT ` + channelColumns + ` FROM channels WHERE name = $1`
	return scanChannel(s.pool.QueryRow(ctx, q, name))
}

// UpdateChannelToken persists a refreshed OAuth token bundle.
func (s *Store) UpdateChannelToken(ctx context.Context, id uuid.UUID, access, refresh string, expiry time.Time) error {
	const q = `UPDATE channels
		SET access_token = $1, refresh_token = $2, token_expiry = $3, updated_at = NOW()
		WHERE id = $4`
	_, err := s.pool.Exec(ctx, q, access, refresh, expiry, id)
	return err
}

// SetChannelEnabled toggles whether a channel is picked up by the scheduler
// and the retry sweep.
func (s *Store) SetChannelEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	const q = `UPDATE channels SET enabled = $1, updated_at = NOW() WHERE id = $2`
	_, err := s.pool.Exec(ctx, q, enabled, id)
	return err
}

// ClearChannelToken drops a revoked token bundle so the retry sweep stops
// selecting the channel's videos.
func (s *Store) ClearChannelToken(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE channels
		SET access_token = NULL, refresh_token = NULL, token_expiry = NULL, updated_at = NOW()
		WHERE id = $1`
	_, err := s.pool.Exec(ctx, q, id)
	return err
}
