package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"clipforge/internal/distribution"
	"clipforge/internal/distribution/youtube"
	"clipforge/internal/store"
)

// uploadVideo attempts the first upload of a freshly rendered video. Failure
// here is never fatal to the pass: the video stays on disk in a retryable
// state and the sweep picks it up later.
func (p *Pipeline) uploadVideo(ctx context.Context, executionID uuid.UUID, ch *store.Channel, script *store.Script, vid *store.Video) {
	cfg := p.service.Config()
	if cfg.Upload.ContentOnly {
		slog.Info("content-only mode, skipping upload", "channel", ch.Name)
		return
	}
	if !ch.HasToken() {
		slog.Info("channel has no credentials, leaving video pending", "channel", ch.Name)
		return
	}
	if p.service.Uploader() == nil || p.service.Credentials() == nil {
		slog.Warn("uploader not configured, leaving video pending", "channel", ch.Name)
		return
	}

	response, err := p.service.Uploader().Upload(ctx, p.service.Credentials()(ch), distribution.UploadRequest{
		FilePath:    vid.FilePath,
		Title:       script.Title,
		Description: script.Description,
		Tags:        append(script.Tags, cfg.YouTube.DefaultTags...),
		Privacy:     cfg.YouTube.PrivacyStatus,
		AsShort:     ch.UploadAsShort,
	})
	if err != nil {
		p.handleUploadFailure(ctx, &executionID, ch, vid.ID, err)
		return
	}

	p.finishUpload(ctx, ch, vid, script.Title, response)
}

// finishUpload records the success and reclaims the render workspace. The
// upload already happened, so persistence or cleanup problems only warn.
func (p *Pipeline) finishUpload(ctx context.Context, ch *store.Channel, vid *store.Video, title string, response *distribution.UploadResponse) {
	db := p.service.DB()

	upload := &store.YouTubeUpload{
		VideoID:       vid.ID,
		RemoteVideoID: response.RemoteID,
		URL:           response.URL,
		ChannelName:   ch.Name,
		Title:         title,
		PrivacyStatus: p.service.Config().YouTube.PrivacyStatus,
	}
	if err := db.UpsertYouTubeUpload(ctx, upload); err != nil {
		slog.Warn("failed to record upload", "channel", ch.Name, "error", err)
	}
	if err := db.MarkUploadSuccess(ctx, vid.ID); err != nil {
		slog.Warn("failed to mark video uploaded", "channel", ch.Name, "error", err)
	}

	slog.Info("uploaded", "channel", ch.Name, "url", response.URL)
	removeWorkspace(vid.FilePath)

	// The workspace is gone; blank the artifact paths so nothing trusts them.
	empty := ""
	patch := store.VideoPatch{FilePath: &empty, AudioPath: &empty, SubtitlePath: &empty}
	if err := db.UpdateVideo(ctx, vid.ID, patch); err != nil {
		slog.Warn("failed to clear artifact paths", "channel", ch.Name, "error", err)
	}
}

// handleUploadFailure classifies the error and records the attempt so the
// retry sweep can apply the right policy. executionID is nil when the
// failure happens outside a pipeline run.
func (p *Pipeline) handleUploadFailure(ctx context.Context, executionID *uuid.UUID, ch *store.Channel, videoID uuid.UUID, uploadErr error) youtube.FailureKind {
	db := p.service.DB()
	kind := youtube.Classify(uploadErr)
	message := uploadErr.Error()

	switch kind {
	case youtube.FailureQuota:
		slog.Warn("upload quota exhausted", "channel", ch.Name, "error", uploadErr)
		if err := db.MarkUploadFailed(ctx, videoID, true, message); err != nil {
			slog.Error("failed to record quota failure", "channel", ch.Name, "error", err)
		}
	case youtube.FailureAuth:
		slog.Warn("upload credentials rejected, channel needs re-authorization", "channel", ch.Name, "error", uploadErr)
		if err := db.MarkUploadFailed(ctx, videoID, false, store.AuthRequiredPrefix+message); err != nil {
			slog.Error("failed to record auth failure", "channel", ch.Name, "error", err)
		}
		// Revoked credentials fail every future attempt the same way. Dropping
		// the token bundle removes the channel's videos from the retry
		// candidate set until an operator re-authorizes it.
		if err := db.ClearChannelToken(ctx, ch.ID); err != nil {
			slog.Error("failed to clear revoked token", "channel", ch.Name, "error", err)
		}
		entry := &store.ErrorLog{
			ExecutionID:    executionID,
			Scope:          ch.Name,
			Message:        fmt.Sprintf("upload auth failure: %s", message),
			RequiresReauth: true,
		}
		if err := db.InsertErrorLog(ctx, entry); err != nil {
			slog.Warn("failed to persist error log", "channel", ch.Name, "error", err)
		}
	default:
		slog.Warn("upload failed, will retry", "channel", ch.Name, "error", uploadErr)
		if err := db.MarkUploadFailed(ctx, videoID, false, message); err != nil {
			slog.Error("failed to record upload failure", "channel", ch.Name, "error", err)
		}
	}
	return kind
}

// removeWorkspace deletes the session directory holding an uploaded video
// and its intermediates. Best effort only.
func removeWorkspace(filePath string) {
	if filePath == "" {
		return
	}
	dir := filepath.Dir(filePath)
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("failed to remove workspace", "dir", dir, "error", err)
	}
}
