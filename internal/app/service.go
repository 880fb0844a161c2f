package app

import (
	"context"

	"github.com/google/uuid"

	"clipforge/internal/distribution"
	"clipforge/internal/llm"
	"clipforge/internal/speech"
	"clipforge/internal/store"
	"clipforge/internal/video"
	"clipforge/pkg/config"
)

// Store is the persistence surface the pipeline and retry sweep consume.
// Implemented by *store.Store; narrowed here so tests can fake it.
type Store interface {
	Ping(ctx context.Context) error

	StartExecution(ctx context.Context) (*store.Execution, error)
	CompleteExecution(ctx context.Context, id uuid.UUID, durationSeconds float64) error
	FailExecution(ctx context.Context, id uuid.UUID, message string) error

	EnabledChannels(ctx context.Context) ([]store.Channel, error)
	ClearChannelToken(ctx context.Context, id uuid.UUID) error

	UpsertTopic(ctx context.Context, t *store.Topic) (bool, error)
	UpsertScript(ctx context.Context, script *store.Script) error

	InsertVideo(ctx context.Context, v *store.Video) error
	UpdateVideo(ctx context.Context, id uuid.UUID, patch store.VideoPatch) error
	MarkUploadSuccess(ctx context.Context, id uuid.UUID) error
	MarkUploadFailed(ctx context.Context, id uuid.UUID, isQuota bool, message string) error
	PermanentlyFailVideo(ctx context.Context, id uuid.UUID, maxAttempts int, reason string) error
	RetryCandidates(ctx context.Context, cooldownHours, maxAttempts, limit int) ([]store.Video, error)
	UploadContextFor(ctx context.Context, videoID uuid.UUID) (*store.UploadContext, error)

	UpsertYouTubeUpload(ctx context.Context, u *store.YouTubeUpload) error
	InsertResourceUsage(ctx context.Context, u *store.ResourceUsage) error
	InsertErrorLog(ctx context.Context, e *store.ErrorLog) error
}

// Assembler is the video composition stage.
type Assembler interface {
	Assemble(ctx context.Context, req video.AssembleRequest) (*video.AssembleResult, error)
}

// CredentialFunc resolves the OAuth credential source for one channel.
type CredentialFunc func(channel *store.Channel) distribution.CredentialSource

type Service struct {
	cfg         *config.Config
	db          Store
	llm         *llm.Selector
	tts         speech.Provider
	uploader    distribution.Uploader
	assembler   Assembler
	credentials CredentialFunc
}

type ServiceOptions struct {
	Config      *config.Config
	DB          Store
	LLM         *llm.Selector
	TTS         speech.Provider
	Uploader    distribution.Uploader
	Assembler   Assembler
	Credentials CredentialFunc
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:         opts.Config,
		db:          opts.DB,
		llm:         opts.LLM,
		tts:         opts.TTS,
		uploader:    opts.Uploader,
		assembler:   opts.Assembler,
		credentials: opts.Credentials,
	}
}

func (s *Service) Config() *config.Config          { return s.cfg }
func (s *Service) DB() Store                       { return s.db }
func (s *Service) LLM() *llm.Selector              { return s.llm }
func (s *Service) TTS() speech.Provider            { return s.tts }
func (s *Service) Uploader() distribution.Uploader { return s.uploader }
func (s *Service) Assembler() Assembler            { return s.assembler }
func (s *Service) Credentials() CredentialFunc     { return s.credentials }
