package app

import (
	"context"
	"fmt"
	"log/slog"

	"clipforge/internal/distribution"
	"clipforge/internal/distribution/youtube"
	"clipforge/internal/store"
)

// RetryPendingUploads sweeps videos stuck in a retryable state and replays
// their uploads with the metadata persisted at render time. The first quota
// failure short-circuits the rest of the batch since every remaining attempt
// would burn against the same exhausted quota.
func (p *Pipeline) RetryPendingUploads(ctx context.Context) error {
	cfg := p.service.Config()
	db := p.service.DB()

	if p.service.Uploader() == nil || p.service.Credentials() == nil {
		slog.Warn("uploader not configured, leaving failed uploads untouched")
		return nil
	}

	candidates, err := db.RetryCandidates(ctx, cfg.Upload.QuotaCooldownHours, cfg.Upload.MaxAttempts, cfg.Upload.RetryBatchSize)
	if err != nil {
		return fmt.Errorf("list retry candidates: %w", err)
	}
	if len(candidates) == 0 {
		slog.Info("no uploads awaiting retry")
		return nil
	}

	slog.Info("retrying failed uploads", "count", len(candidates))

	var succeeded, failed, skipped int
	quotaHit := false

	for i := range candidates {
		vid := &candidates[i]
		if quotaHit {
			skipped++
			continue
		}

		switch p.retryOne(ctx, vid) {
		case retrySucceeded:
			succeeded++
		case retryQuota:
			failed++
			quotaHit = true
		default:
			failed++
		}
	}

	slog.Info("retry sweep finished", "succeeded", succeeded, "failed", failed, "skipped", skipped)
	return nil
}

type retryOutcome int

const (
	retrySucceeded retryOutcome = iota
	retryFailed
	retryQuota
)

func (p *Pipeline) retryOne(ctx context.Context, vid *store.Video) retryOutcome {
	cfg := p.service.Config()
	db := p.service.DB()

	uploadCtx, err := db.UploadContextFor(ctx, vid.ID)
	if err != nil {
		slog.Error("could not load upload context", "video", vid.ID, "error", err)
		return retryFailed
	}
	ch := &uploadCtx.Channel

	// A channel disabled or stripped of credentials since the render can
	// never succeed; park the video instead of burning attempts on it.
	if !ch.Enabled || !ch.HasToken() {
		reason := "channel disabled"
		if ch.Enabled {
			reason = "channel credentials removed"
		}
		slog.Warn("channel can no longer upload", "channel", ch.Name, "video", vid.ID, "reason", reason)
		if err := db.PermanentlyFailVideo(ctx, vid.ID, cfg.Upload.MaxAttempts, reason); err != nil {
			slog.Error("failed to park video", "video", vid.ID, "error", err)
		}
		return retryFailed
	}

	response, err := p.service.Uploader().Upload(ctx, p.service.Credentials()(ch), distribution.UploadRequest{
		FilePath:    uploadCtx.Video.FilePath,
		Title:       uploadCtx.Title,
		Description: uploadCtx.Description,
		Tags:        append(uploadCtx.Tags, cfg.YouTube.DefaultTags...),
		Privacy:     cfg.YouTube.PrivacyStatus,
		AsShort:     ch.UploadAsShort,
	})
	if err != nil {
		if p.handleUploadFailure(ctx, nil, ch, vid.ID, err) == youtube.FailureQuota {
			return retryQuota
		}
		return retryFailed
	}

	p.finishUpload(ctx, ch, &uploadCtx.Video, uploadCtx.Title, response)
	return retrySucceeded
}
