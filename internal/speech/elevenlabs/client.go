package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipforge/internal/speech"
	"clipforge/pkg/httputil"
)

const (
	baseURL = "https://api.elevenlabs.io/v1"
	timeout = 120 * time.Second
)

var _ speech.Provider = (*Client)(nil)

type Client struct {
	apiKey     string
	httpClient *httputil.RetryClient
	baseURL    string
	model      string
	stability  float64
	similarity float64
}

type Config struct {
	APIKey     string
	Model      string
	Stability  float64
	Similarity float64
}

type option func(*Client)

type timestampResponse struct {
	AudioBase64 string     `json:"audio_base64"`
	Alignment   *alignment `json:"alignment"`
}

type alignment struct {
	Characters          []string  `json:"characters"`
	CharacterStartTimes []float64 `json:"character_start_times_seconds"`
	CharacterEndTimes   []float64 `json:"character_end_times_seconds"`
}

func withBaseURL(url string) option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func withHTTPClient(client *http.Client, retry httputil.RetryConfig) option {
	return func(c *Client) {
		c.httpClient = httputil.NewRetryClient(client, retry)
	}
}

func NewClient(cfg Config, opts ...option) *Client {
	c := &Client{
		apiKey: cfg.APIKey,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: timeout},
			httputil.DefaultRetryConfig(),
		),
		baseURL:    baseURL,
		model:      cfg.Model,
		stability:  cfg.Stability,
		similarity: cfg.Similarity,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Synthesize(ctx context.Context, text string, voice speech.VoiceConfig) (*speech.SpeechResult, error) {
	req, err := c.buildRequest(ctx, text, voice)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs: %s - %s", resp.Status, string(body))
	}

	return parseResponse(text, body)
}

func (c *Client) buildRequest(ctx context.Context, text string, voice speech.VoiceConfig) (*http.Request, error) {
	speed := voice.SpeakingRate
	if speed <= 0 {
		speed = 1.0
	}

	payload := map[string]any{
		"text":     text,
		"model_id": c.model,
		"voice_settings": map[string]any{
			"stability":        c.stability,
			"similarity_boost": c.similarity,
			"speed":            speed,
		},
	}
	if voice.Language != "" {
		payload["language_code"] = voice.Language
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/with-timestamps", c.baseURL, voice.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	return req, nil
}

func parseResponse(text string, body []byte) (*speech.SpeechResult, error) {
	var tsResp timestampResponse
	if err := json.Unmarshal(body, &tsResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(tsResp.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}

	return &speech.SpeechResult{
		Audio:   audio,
		Timings: parseTimings(text, tsResp.Alignment),
	}, nil
}

func parseTimings(text string, align *alignment) []speech.WordTiming {
	if align == nil || len(align.Characters) == 0 {
		return speech.EstimateTimings(text, nil)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	timings := make([]speech.WordTiming, 0, len(words))
	charIdx := 0

	for _, word := range words {
		for charIdx < len(align.Characters) && align.Characters[charIdx] == " " {
			charIdx++
		}

		if charIdx >= len(align.Characters) {
			break
		}

		startIdx := charIdx
		wordLen := len(word)
		endIdx := startIdx
		matchedChars := 0
		for endIdx < len(align.Characters) && matchedChars < wordLen {
			if align.Characters[endIdx] != " " {
				matchedChars++
			}
			endIdx++
		}

		if startIdx < len(align.CharacterStartTimes) && endIdx > 0 && endIdx-1 < len(align.CharacterEndTimes) {
			timings = append(timings, speech.WordTiming{
				Word:      word,
				StartTime: align.CharacterStartTimes[startIdx],
				EndTime:   align.CharacterEndTimes[endIdx-1],
			})
		}

		charIdx = endIdx
	}

	if len(timings) == 0 {
		return speech.EstimateTimings(text, nil)
	}

	return timings
}
