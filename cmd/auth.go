package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	youtubeapi "google.golang.org/api/youtube/v3"

	"clipforge/internal/distribution/youtube"
	"clipforge/internal/store"
	"clipforge/pkg/config"
)

var (
	authInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	authSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	authErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var authChannel string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with external services",
	Long:  `Authenticate channels with YouTube using credentials from .env`,
}

var authYouTubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Authorize a YouTube channel (OAuth)",
	Long: `Complete the YouTube OAuth flow. With --channel the token bundle is
stored on that channel's database row; otherwise it goes to the shared
token file for single-channel setups.`,
	RunE: runAuthYouTube,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check authentication status for all services",
	RunE:  runAuthStatus,
}

func init() {
	authYouTubeCmd.Flags().StringVarP(&authChannel, "channel", "c", "", "Store the token on the named channel")
	authCmd.AddCommand(authYouTubeCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	fmt.Println(authInfoStyle.Render("\nService Authentication Status:\n"))

	if cfg.YouTubeClientID != "" && cfg.YouTubeClientSecret != "" {
		fmt.Println(authSuccessStyle.Render("✓ YouTube: OAuth client configured"))
	} else {
		fmt.Println(authErrorStyle.Render("✗ YouTube: missing YOUTUBE_CLIENT_ID or YOUTUBE_CLIENT_SECRET"))
	}

	if cfg.GroqAPIKey != "" {
		fmt.Println(authSuccessStyle.Render("✓ Groq: API key configured"))
	} else {
		fmt.Println(authErrorStyle.Render("✗ Groq: missing GROQ_API_KEY"))
	}

	if cfg.ElevenLabsAPIKey != "" {
		fmt.Println(authSuccessStyle.Render("✓ ElevenLabs: API key configured"))
	} else {
		fmt.Println(authInfoStyle.Render("○ ElevenLabs: not configured (silent stub audio)"))
	}

	if cfg.DatabaseURL == "" {
		fmt.Println(authErrorStyle.Render("✗ Database: missing DATABASE_URL"))
		fmt.Println()
		return nil
	}

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Println(authErrorStyle.Render("✗ Database: " + err.Error()))
		fmt.Println()
		return nil
	}
	defer db.Close()
	fmt.Println(authSuccessStyle.Render("✓ Database: connected"))

	channels, err := db.EnabledChannels(ctx)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		if ch.HasToken() {
			fmt.Println(authSuccessStyle.Render("  ✓ " + ch.Name + ": authorized"))
		} else {
			fmt.Println(authErrorStyle.Render("  ✗ " + ch.Name + ": run: clipforge auth youtube --channel " + ch.Name))
		}
	}

	fmt.Println()
	return nil
}

func runAuthYouTube(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	if cfg.YouTubeClientID == "" || cfg.YouTubeClientSecret == "" {
		return fmt.Errorf("YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET must be set in .env")
	}

	token, err := runYouTubeOAuthFlow(ctx, cfg.YouTubeClientID, cfg.YouTubeClientSecret)
	if err != nil {
		return err
	}

	if authChannel == "" {
		if err := youtube.NewFileCredentials(cfg.YouTubeTokenPath).Persist(ctx, token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Println(authSuccessStyle.Render("\n✓ Token saved to " + cfg.YouTubeTokenPath))
		return nil
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required to store a channel token")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	ch, err := db.ChannelByName(ctx, authChannel)
	if err != nil {
		return fmt.Errorf("channel %q not found: %w", authChannel, err)
	}
	if err := youtube.NewChannelCredentials(db, ch).Persist(ctx, token); err != nil {
		return fmt.Errorf("store channel token: %w", err)
	}

	fmt.Println(authSuccessStyle.Render("\n✓ Channel authorized: " + ch.Name))
	return nil
}

func runYouTubeOAuthFlow(ctx context.Context, clientID, clientSecret string) (*oauth2.Token, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			youtubeapi.YoutubeUploadScope,
			youtubeapi.YoutubeScope,
		},
		RedirectURL: "http://localhost:8085/callback",
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	listener, err := net.Listen("tcp", ":8085")
	if err != nil {
		return nil, fmt.Errorf("start callback server: %w", err)
	}

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
	}

	server.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no code in callback")
			_, _ = fmt.Fprintf(w, "<html><body><h1>Error</h1><p>No authorization code received.</p></body></html>")
			return
		}

		codeChan <- code
		_, _ = fmt.Fprintf(w, "<html><body><h1>Success!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Println(authInfoStyle.Render("\nOpening browser for YouTube authentication..."))
	fmt.Println(authInfoStyle.Render("If the browser doesn't open, visit:\n" + authURL))

	_ = browser.OpenURL(authURL)

	fmt.Println(authInfoStyle.Render("\nWaiting for authentication..."))

	select {
	case code := <-codeChan:
		token, err := oauthConfig.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchange code: %w", err)
		}
		return token, nil
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
