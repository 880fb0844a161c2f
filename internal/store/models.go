package store

import (
	"time"

	"github.com/google/uuid"
)

// Execution statuses.
const (
	ExecutionRunning   = "running"
	ExecutionCompleted = "completed"
	ExecutionFailed    = "failed"
)

// Video upload statuses.
const (
	UploadPending       = "pending"
	UploadUploaded      = "uploaded"
	UploadFailed        = "failed"
	UploadQuotaExceeded = "quota_exceeded"
)

// AuthRequiredPrefix marks upload errors that need manual re-authentication,
// as opposed to failures that self-heal on retry.
const AuthRequiredPrefix = "AUTH_REQUIRED:"

type Execution struct {
	ID              uuid.UUID
	StartedAt       time.Time
	CompletedAt     *time.Time
	Status          string
	DurationSeconds float64
	ErrorMessage    *string
}

type Channel struct {
	ID            uuid.UUID
	Name          string
	Language      string
	VoiceID       string
	SpeakingRate  float64
	Pitch         float64
	GroupID       *string
	Enabled       bool
	CronSchedule  string
	Width         int
	Height        int
	TopicPrompt   string
	ScriptPrompt  string
	UploadAsShort bool

	AccessToken  *string
	RefreshToken *string
	TokenExpiry  *time.Time
	TokenScope   *string
}

// HasToken reports whether the channel carries an OAuth access token.
func (c *Channel) HasToken() bool {
	return c.AccessToken != nil && *c.AccessToken != ""
}

type Topic struct {
	ID            string // derived from title, stable across runs
	Title         string
	Description   string
	ImageKeywords []string
	VideoKeywords []string
	ExecutionID   uuid.UUID
	TokensUsed    int
	CreatedAt     time.Time
}

type Script struct {
	ID                uuid.UUID
	TopicID           string
	Language          string
	Title             string
	Narrative         string
	Description       string
	Tags              []string
	EstimatedDuration float64
	WordCount         int
	TokensUsed        int
	CreatedAt         time.Time
}

type Video struct {
	ID                  uuid.UUID
	ScriptID            uuid.UUID
	ChannelID           uuid.UUID
	Language            string
	FilePath            string
	AudioPath           string
	SubtitlePath        string
	DurationSeconds     float64
	Width               int
	Height              int
	FileSizeMB          float64
	UploadStatus        string
	UploadAttempts      int
	LastUploadAttemptAt *time.Time
	UploadErrorMessage  *string
	CreatedAt           time.Time
}

type YouTubeUpload struct {
	ID            uuid.UUID
	VideoID       uuid.UUID
	RemoteVideoID string
	URL           string
	ChannelName   string
	Title         string
	PrivacyStatus string
	CreatedAt     time.Time
}

type ResourceUsage struct {
	ID          uuid.UUID
	ExecutionID uuid.UUID
	GroupKey    string
	StorageMB   float64
	TokensUsed  int
	CreatedAt   time.Time
}

type ErrorLog struct {
	ID          uuid.UUID
	ExecutionID *uuid.UUID // nil for rows logged outside a pipeline run

	Scope          string
	Message        string
	RequiresReauth bool
	CreatedAt      time.Time
}

// UploadContext joins the persisted rows a retry attempt needs: never
// regenerate content, always re-use what the pipeline stored.
type UploadContext struct {
	Video       Video
	Channel     Channel
	Title       string
	Description string
	Tags        []string
}
