package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// TopicID derives a stable identifier from the topic title. Duplicate titles
// collide on upsert, which surfaces repeated LLM output without blocking the run.
func TopicID(title string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(title))))
	return hex.EncodeToString(sum[:])[:12]
}

// UpsertTopic inserts a topic or, on a duplicate title, re-tags the existing
// row with the current execution.
func (s *Store) UpsertTopic(ctx context.Context, t *Topic) (bool, error) {
	const q = `INSERT INTO topics (id, title, description, image_keywords, video_keywords, execution_id, tokens_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET description = EXCLUDED.description,
		    image_keywords = EXCLUDED.image_keywords,
		    video_keywords = EXCLUDED.video_keywords,
		    execution_id = EXCLUDED.execution_id,
		    tokens_used = EXCLUDED.tokens_used
		RETURNING (xmax = 0), created_at`
	var inserted bool
	err := s.pool.QueryRow(ctx, q, t.ID, t.Title, t.Description, t.ImageKeywords,
		t.VideoKeywords, t.ExecutionID, t.TokensUsed).Scan(&inserted, &t.CreatedAt)
	if err != nil {
		return false, err
	}
	return inserted, nil
}
