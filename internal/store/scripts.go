package store

import (
	"context"
)

// UpsertScript inserts a narration script or replaces the existing one for the
// same (topic, language) pair. Re-generation never duplicates.
func (s *Store) UpsertScript(ctx context.Context, script *Script) error {
	const q = `INSERT INTO scripts (topic_id, language, title, narrative, description, tags, estimated_duration, word_count, tokens_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (topic_id, language) DO UPDATE
		SET title = EXCLUDED.title,
		    narrative = EXCLUDED.narrative,
		    description = EXCLUDED.description,
		    tags = EXCLUDED.tags,
		    estimated_duration = EXCLUDED.estimated_duration,
		    word_count = EXCLUDED.word_count,
		    tokens_used = EXCLUDED.tokens_used
		RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q, script.TopicID, script.Language, script.Title,
		script.Narrative, script.Description, script.Tags, script.EstimatedDuration,
		script.WordCount, script.TokensUsed).Scan(&script.ID, &script.CreatedAt)
}
