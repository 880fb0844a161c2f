package youtube

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"clipforge/internal/distribution"
)

const (
	categoryID = "22"
	platform   = "youtube"
	shortsTag  = "#Shorts"
)

var scopes = []string{
	youtubeapi.YoutubeUploadScope,
	youtubeapi.YoutubeScope,
}

var _ distribution.Uploader = (*Client)(nil)

type Client struct {
	config *oauth2.Config
}

func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
			RedirectURL:  "http://localhost:8080/callback",
		},
	}
}

func (c *Client) Upload(ctx context.Context, creds distribution.CredentialSource, req distribution.UploadRequest) (*distribution.UploadResponse, error) {
	token, err := creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	tokenSource := c.config.TokenSource(ctx, token)

	service, err := youtubeapi.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	title := req.Title
	description := req.Description
	if req.AsShort {
		description = description + "\n\n" + shortsTag
	}

	upload := &youtubeapi.Video{
		Snippet: &youtubeapi.VideoSnippet{
			Title:       title,
			Description: description,
			Tags:        req.Tags,
			CategoryId:  categoryID,
		},
		Status: &youtubeapi.VideoStatus{
			PrivacyStatus: req.Privacy,
		},
	}

	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = file.Close() }()

	call := service.Videos.Insert([]string{"snippet", "status"}, upload).Media(file)
	inserted, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	// The token source may have refreshed; hand the fresh bundle back so the
	// next run does not redo the refresh round-trip.
	if fresh, err := tokenSource.Token(); err == nil && fresh.AccessToken != token.AccessToken {
		if err := creds.Persist(ctx, fresh); err != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", err)
		}
	}

	return &distribution.UploadResponse{
		RemoteID: inserted.Id,
		URL:      fmt.Sprintf("https://youtube.com/watch?v=%s", inserted.Id),
		Title:    title,
	}, nil
}

func (c *Client) Platform() string {
	return platform
}
