package store

import (
	"context"
)

// UpsertYouTubeUpload records a successful publication. The unique key on the
// remote video id makes a repeated success report a no-op row-wise, so the
// upload path is idempotent.
func (s *Store) UpsertYouTubeUpload(ctx context.Context, u *YouTubeUpload) error {
	const q = `INSERT INTO youtube_uploads (video_id, remote_video_id, url, channel_name, title, privacy_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (remote_video_id) DO UPDATE
		SET url = EXCLUDED.url,
		    title = EXCLUDED.title,
		    privacy_status = EXCLUDED.privacy_status
		RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q, u.VideoID, u.RemoteVideoID, u.URL,
		u.ChannelName, u.Title, u.PrivacyStatus).Scan(&u.ID, &u.CreatedAt)
}
