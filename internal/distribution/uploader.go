package distribution

import (
	"context"

	"golang.org/x/oauth2"
)

type UploadRequest struct {
	FilePath    string
	Title       string
	Description string
	Tags        []string
	Privacy     string
	AsShort     bool
}

type UploadResponse struct {
	RemoteID string
	URL      string
	Title    string
}

// CredentialSource abstracts where a channel's OAuth tokens live: a token
// file for single-operator deployments, or the channel's database row for
// multi-channel ones. Persist is called when the token source refreshed.
type CredentialSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
	Persist(ctx context.Context, token *oauth2.Token) error
}

type Uploader interface {
	Upload(ctx context.Context, creds CredentialSource, req UploadRequest) (*UploadResponse, error)
	Platform() string
}
