package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"

	"clipforge/internal/distribution"
	"clipforge/internal/store"
)

// FileCredentials reads and writes a token bundle at a fixed path, for
// deployments where one operator owns every channel.
type FileCredentials struct {
	path string
}

var _ distribution.CredentialSource = (*FileCredentials)(nil)

func NewFileCredentials(path string) *FileCredentials {
	return &FileCredentials{path: path}
}

func (f *FileCredentials) Token(ctx context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &token, nil
}

func (f *FileCredentials) Persist(ctx context.Context, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// ChannelCredentials adapts a channel's database token bundle.
type ChannelCredentials struct {
	store   *store.Store
	channel *store.Channel
}

var _ distribution.CredentialSource = (*ChannelCredentials)(nil)

func NewChannelCredentials(s *store.Store, channel *store.Channel) *ChannelCredentials {
	return &ChannelCredentials{store: s, channel: channel}
}

func (c *ChannelCredentials) Token(ctx context.Context) (*oauth2.Token, error) {
	// Reload so a refresh persisted earlier in the run is not clobbered by the
	// stale copy loaded when the batch started.
	ch, err := c.store.ChannelByID(ctx, c.channel.ID)
	if err != nil {
		return nil, fmt.Errorf("reload channel %s: %w", c.channel.Name, err)
	}
	if !ch.HasToken() {
		return nil, fmt.Errorf("channel %s has no access token", ch.Name)
	}

	token := &oauth2.Token{AccessToken: *ch.AccessToken}
	if ch.RefreshToken != nil {
		token.RefreshToken = *ch.RefreshToken
	}
	if ch.TokenExpiry != nil {
		token.Expiry = *ch.TokenExpiry
	}
	return token, nil
}

func (c *ChannelCredentials) Persist(ctx context.Context, token *oauth2.Token) error {
	return c.store.UpdateChannelToken(ctx, c.channel.ID, token.AccessToken, token.RefreshToken, token.Expiry)
}
