package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipforge/internal/llm"
	"clipforge/internal/speech"
	"clipforge/internal/storage"
	"clipforge/internal/store"
	"clipforge/internal/video"
)

// narrationWordsPerMinute drives the estimated duration stored alongside a
// script before any audio exists.
const narrationWordsPerMinute = 150.0

type Pipeline struct {
	service *Service
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

// groupRun accumulates what one topic group produced, for telemetry.
type groupRun struct {
	tokensUsed int
	storageMB  float64
}

// Execute runs one full pipeline pass over the given channels: shared-topic
// groups render one topic in every member's language, independents each get
// their own. A failing group never takes its siblings down; only a database
// that cannot be reached fails the whole run.
func (p *Pipeline) Execute(ctx context.Context, channels []store.Channel) (err error) {
	db := p.service.DB()
	if pingErr := db.Ping(ctx); pingErr != nil {
		return fmt.Errorf("database unreachable: %w", pingErr)
	}

	execution, err := db.StartExecution(ctx)
	if err != nil {
		return fmt.Errorf("start execution: %w", err)
	}
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("panic: %v", r)
			if failErr := db.FailExecution(ctx, execution.ID, message); failErr != nil {
				slog.Error("failed to record execution failure", "error", failErr)
			}
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	valid := p.validChannels(ctx, execution.ID, channels)
	if len(valid) == 0 {
		slog.Info("no runnable channels this pass")
		return db.CompleteExecution(ctx, execution.ID, 0)
	}

	groups, independents := Partition(valid)

	for key, members := range groups {
		p.runGroup(ctx, execution.ID, key, members)
	}
	for _, ch := range independents {
		p.runGroup(ctx, execution.ID, ch.Name, []store.Channel{ch})
	}

	return db.CompleteExecution(ctx, execution.ID, time.Since(started).Seconds())
}

// validChannels drops channels missing a topic or script prompt. An excluded
// channel is logged and recorded but never aborts the pass.
func (p *Pipeline) validChannels(ctx context.Context, executionID uuid.UUID, channels []store.Channel) []store.Channel {
	valid := make([]store.Channel, 0, len(channels))
	for _, ch := range channels {
		if strings.TrimSpace(ch.TopicPrompt) == "" || strings.TrimSpace(ch.ScriptPrompt) == "" {
			slog.Warn("channel missing prompts, excluding from pass", "channel", ch.Name)
			p.recordError(ctx, executionID, ch.Name, "channel excluded: topic or script prompt empty", false)
			continue
		}
		valid = append(valid, ch)
	}
	return valid
}

// runGroup contains one topic group end to end. Errors are logged and
// persisted here so the caller can move on to the next group.
func (p *Pipeline) runGroup(ctx context.Context, executionID uuid.UUID, key string, members []store.Channel) {
	slog.Info("processing group", "group", key, "channels", len(members))

	run, err := p.processGroup(ctx, executionID, key, members)
	if err != nil {
		slog.Error("group failed", "group", key, "error", err)
		p.recordError(ctx, executionID, key, err.Error(), false)
		return
	}

	usage := &store.ResourceUsage{
		ExecutionID: executionID,
		GroupKey:    key,
		StorageMB:   run.storageMB,
		TokensUsed:  run.tokensUsed,
	}
	if err := p.service.DB().InsertResourceUsage(ctx, usage); err != nil {
		slog.Warn("failed to record resource usage", "group", key, "error", err)
	}
}

func (p *Pipeline) processGroup(ctx context.Context, executionID uuid.UUID, key string, members []store.Channel) (*groupRun, error) {
	if p.service.TTS() == nil {
		return nil, fmt.Errorf("speech provider not configured")
	}
	if p.service.Assembler() == nil {
		return nil, fmt.Errorf("video assembler not configured")
	}

	client, err := p.service.LLM().Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve llm provider: %w", err)
	}

	run := &groupRun{}

	topic, err := p.generateTopic(ctx, client, executionID, members[0])
	if err != nil {
		return nil, err
	}
	run.tokensUsed += topic.TokensUsed

	scripts, err := p.generateScripts(ctx, client, topic, members)
	if err != nil {
		return nil, err
	}
	for _, script := range scripts {
		run.tokensUsed += script.TokensUsed
	}

	for i := range members {
		ch := &members[i]
		script := scripts[ch.Language]
		if script == nil {
			return nil, fmt.Errorf("no script generated for language %q", ch.Language)
		}
		vid, err := p.renderChannel(ctx, ch, script)
		if err != nil {
			return nil, fmt.Errorf("render channel %s: %w", ch.Name, err)
		}
		// Count the whole session dir: audio and subtitles live there too.
		if size, err := storage.DirSizeMB(filepath.Dir(vid.FilePath)); err == nil {
			run.storageMB += size
		} else {
			run.storageMB += vid.FileSizeMB
		}

		p.uploadVideo(ctx, executionID, ch, script, vid)
	}

	return run, nil
}

// generateTopic picks one subject for the whole group and upserts it under a
// title-derived id so repeated selections collapse onto the same row.
func (p *Pipeline) generateTopic(ctx context.Context, client llm.Client, executionID uuid.UUID, lead store.Channel) (*store.Topic, error) {
	result, err := client.GenerateTopic(ctx, llm.TopicRequest{
		Language:       lead.Language,
		ChannelName:    lead.Name,
		PromptTemplate: lead.TopicPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("generate topic: %w", err)
	}

	topic := &store.Topic{
		ID:            store.TopicID(result.Title),
		Title:         result.Title,
		Description:   result.Description,
		ImageKeywords: result.ImageKeywords,
		VideoKeywords: result.VideoKeywords,
		ExecutionID:   executionID,
		TokensUsed:    result.TokensUsed,
	}
	inserted, err := p.service.DB().UpsertTopic(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("persist topic: %w", err)
	}
	if !inserted {
		slog.Warn("topic already covered, regenerating content for it", "topic", topic.Title)
	}
	return topic, nil
}

// generateScripts produces one narration per distinct language in the group.
// Channels sharing a language share the script.
func (p *Pipeline) generateScripts(ctx context.Context, client llm.Client, topic *store.Topic, members []store.Channel) (map[string]*store.Script, error) {
	scripts := make(map[string]*store.Script)
	for _, ch := range members {
		if _, done := scripts[ch.Language]; done {
			continue
		}

		result, err := client.GenerateScript(ctx, llm.ScriptRequest{
			TopicTitle:       topic.Title,
			TopicDescription: topic.Description,
			Language:         ch.Language,
			PromptTemplate:   ch.ScriptPrompt,
		})
		if err != nil {
			return nil, fmt.Errorf("generate script (%s): %w", ch.Language, err)
		}

		wordCount := len(strings.Fields(result.Narrative))
		script := &store.Script{
			TopicID:           topic.ID,
			Language:          ch.Language,
			Title:             result.Title,
			Narrative:         result.Narrative,
			Description:       result.Description,
			Tags:              result.Tags,
			EstimatedDuration: float64(wordCount) / narrationWordsPerMinute * 60,
			WordCount:         wordCount,
			TokensUsed:        result.TokensUsed,
		}
		if err := p.service.DB().UpsertScript(ctx, script); err != nil {
			return nil, fmt.Errorf("persist script (%s): %w", ch.Language, err)
		}
		scripts[ch.Language] = script
	}
	return scripts, nil
}

// renderChannel synthesizes narration, writes subtitles and composes the final
// video for one channel, then records it with upload_status pending.
func (p *Pipeline) renderChannel(ctx context.Context, ch *store.Channel, script *store.Script) (*store.Video, error) {
	sess := newSession(p.service.Config().Video.OutputDir)
	if err := sess.finalize(ch.Name); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	_ = os.WriteFile(sess.scriptPath(), []byte(script.Narrative), 0644)

	slog.Info("synthesizing narration", "channel", ch.Name, "words", script.WordCount)
	speechResult, err := p.service.TTS().Synthesize(ctx, script.Narrative, speech.VoiceConfig{
		ID:           ch.VoiceID,
		Language:     ch.Language,
		SpeakingRate: ch.SpeakingRate,
		Pitch:        ch.Pitch,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	if err := os.WriteFile(sess.audioPath(), speechResult.Audio, 0644); err != nil {
		return nil, fmt.Errorf("save audio: %w", err)
	}

	if err := video.WriteSRT(speechResult.Timings, sess.subtitlePath()); err != nil {
		return nil, fmt.Errorf("write subtitles: %w", err)
	}

	slog.Info("assembling video", "channel", ch.Name)
	result, err := p.service.Assembler().Assemble(ctx, video.AssembleRequest{
		AudioPath:     sess.audioPath(),
		SubtitlePath:  sess.subtitlePath(),
		AudioDuration: speech.AudioDuration(speechResult.Timings),
		OutputPath:    sess.videoPath(),
		Width:         ch.Width,
		Height:        ch.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble video: %w", err)
	}

	sizeMB, err := storage.FileSizeMB(result.OutputPath)
	if err != nil {
		slog.Warn("could not stat output file", "path", result.OutputPath, "error", err)
	}

	vid := &store.Video{
		ScriptID:        script.ID,
		ChannelID:       ch.ID,
		Language:        ch.Language,
		FilePath:        result.OutputPath,
		AudioPath:       sess.audioPath(),
		SubtitlePath:    sess.subtitlePath(),
		DurationSeconds: result.Duration,
		Width:           result.Width,
		Height:          result.Height,
		FileSizeMB:      sizeMB,
		UploadStatus:    store.UploadPending,
	}
	if err := p.service.DB().InsertVideo(ctx, vid); err != nil {
		return nil, fmt.Errorf("persist video: %w", err)
	}
	return vid, nil
}

func (p *Pipeline) recordError(ctx context.Context, executionID uuid.UUID, scope, message string, reauth bool) {
	entry := &store.ErrorLog{
		ExecutionID:    &executionID,
		Scope:          scope,
		Message:        message,
		RequiresReauth: reauth,
	}
	if err := p.service.DB().InsertErrorLog(ctx, entry); err != nil {
		slog.Warn("failed to persist error log", "scope", scope, "error", err)
	}
}
