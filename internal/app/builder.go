package app

import (
	"context"
	"fmt"
	"time"

	"clipforge/internal/distribution"
	"clipforge/internal/distribution/youtube"
	"clipforge/internal/llm"
	"clipforge/internal/llm/deepseek"
	"clipforge/internal/llm/groq"
	"clipforge/internal/speech"
	"clipforge/internal/speech/elevenlabs"
	"clipforge/internal/storage"
	"clipforge/internal/store"
	"clipforge/internal/video"
	"clipforge/pkg/config"
)

const providerCacheTTL = 10 * time.Minute

type BuildResult struct {
	Service *Service
	Store   *store.Store
}

// BuildService wires every stage from configuration. The database is the one
// hard requirement; TTS falls back to a silent stub and the uploader stays
// nil when credentials are absent, leaving videos in the pending state.
func BuildService(ctx context.Context, cfg *config.Config, verbose bool) (*BuildResult, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// Candidate order is fallback order: the selector pings each in turn
	// and sticks with the first healthy provider until the cache expires.
	var candidates []llm.Client
	if cfg.GroqAPIKey != "" {
		groqClient, err := groq.NewClient(cfg.GroqAPIKey, cfg.Groq.Model)
		if err != nil {
			return nil, fmt.Errorf("build groq client: %w", err)
		}
		candidates = append(candidates, groqClient)
	}
	if cfg.DeepSeekAPIKey != "" {
		candidates = append(candidates, deepseek.NewClient(cfg.DeepSeekAPIKey, cfg.DeepSeek.Model))
	}
	selector := llm.NewSelector(candidates, providerCacheTTL)

	var ttsProvider speech.Provider
	if cfg.ElevenLabsAPIKey != "" {
		ttsProvider = elevenlabs.NewClient(elevenlabs.Config{
			APIKey:     cfg.ElevenLabsAPIKey,
			Model:      cfg.ElevenLabs.Model,
			Stability:  cfg.ElevenLabs.Stability,
			Similarity: cfg.ElevenLabs.Similarity,
		})
	} else {
		wordsPerMinute := speech.DefaultWordsPerMinute * cfg.ElevenLabs.Speed
		if wordsPerMinute <= 0 {
			wordsPerMinute = speech.DefaultWordsPerMinute
		}
		ttsProvider = speech.NewStubProvider(wordsPerMinute)
	}

	localStorage := storage.NewLocalStorage(cfg.Video.BackgroundDir, cfg.Video.OutputDir)
	if err := localStorage.EnsureDirectories(); err != nil {
		db.Close()
		return nil, err
	}

	var backgrounds storage.BackgroundProvider = localStorage
	if cfg.GCS.Enabled {
		if cfg.GCSBucket == "" {
			db.Close()
			return nil, fmt.Errorf("GCS_BUCKET is required when gcs.enabled is set")
		}
		gcs, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCS.BackgroundDir, cfg.Video.CacheDir)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("build gcs storage: %w", err)
		}
		if err := gcs.EnsureCacheDir(); err != nil {
			db.Close()
			return nil, err
		}
		backgrounds = gcs
	}

	assembler := video.NewAssembler(backgrounds, verbose)

	var ytUploader distribution.Uploader
	var credentials CredentialFunc
	if cfg.YouTubeClientID != "" && cfg.YouTubeClientSecret != "" {
		ytUploader = youtube.NewClient(cfg.YouTubeClientID, cfg.YouTubeClientSecret)
		credentials = credentialFunc(cfg, db)
	}

	service := NewService(ServiceOptions{
		Config:      cfg,
		DB:          db,
		LLM:         selector,
		TTS:         ttsProvider,
		Uploader:    ytUploader,
		Assembler:   assembler,
		Credentials: credentials,
	})

	return &BuildResult{Service: service, Store: db}, nil
}

// credentialFunc picks where OAuth tokens live: per-channel database rows in
// normal operation, a shared token file for single-channel setups.
func credentialFunc(cfg *config.Config, db *store.Store) CredentialFunc {
	if cfg.Upload.CredentialSource == "file" {
		source := youtube.NewFileCredentials(cfg.YouTubeTokenPath)
		return func(*store.Channel) distribution.CredentialSource { return source }
	}
	return func(ch *store.Channel) distribution.CredentialSource {
		return youtube.NewChannelCredentials(db, ch)
	}
}
