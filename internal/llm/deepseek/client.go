package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipforge/internal/llm"
	"clipforge/pkg/httputil"
)

const (
	defaultBaseURL = "https://api.deepseek.com/v1/chat/completions"
	defaultTimeout = 60 * time.Second

	roleSystem = "system"
	roleUser   = "user"

	systemTopic = `You are a content strategist for short-form video channels.
Respond with a single JSON object: {"title": string, "description": string,
"image_keywords": [string], "video_keywords": [string]}.`

	systemScript = `You are a scriptwriter for short-form vertical videos.
Respond with a single JSON object: {"title": string, "narrative": string,
"description": string, "tags": [string]}. The narrative is pure spoken text,
no stage directions or speaker labels.`
)

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *httputil.RetryClient
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []choice  `json:"choices"`
	Usage   usage     `json:"usage"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Message message `json:"message"`
}

type usage struct {
	TotalTokens int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

var _ llm.Client = (*Client)(nil)

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: defaultTimeout},
			httputil.DefaultRetryConfig(),
		),
	}
}

func (c *Client) GenerateTopic(ctx context.Context, req llm.TopicRequest) (*llm.TopicResult, error) {
	prompt := renderTemplate(req.PromptTemplate, map[string]string{
		"language": req.Language,
		"channel":  req.ChannelName,
	})

	content, tokens, err := c.generateJSON(ctx, systemTopic, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate topic: %w", err)
	}

	var result llm.TopicResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parse topic response: %w", err)
	}
	if result.Title == "" {
		return nil, fmt.Errorf("topic response missing title")
	}
	result.TokensUsed = tokens
	return &result, nil
}

func (c *Client) GenerateScript(ctx context.Context, req llm.ScriptRequest) (*llm.ScriptResult, error) {
	prompt := renderTemplate(req.PromptTemplate, map[string]string{
		"language":    req.Language,
		"topic":       req.TopicTitle,
		"description": req.TopicDescription,
	})

	content, tokens, err := c.generateJSON(ctx, systemScript, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	var result llm.ScriptResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parse script response: %w", err)
	}
	if result.Narrative == "" {
		return nil, fmt.Errorf("script response missing narrative")
	}
	if result.Title == "" {
		result.Title = req.TopicTitle
	}
	result.TokensUsed = tokens
	return &result, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.chat(ctx, chatRequest{
		Model:     c.model,
		Messages:  []message{{Role: roleUser, Content: "ping"}},
		MaxTokens: 1,
	})
	return err
}

func (c *Client) generateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, int, error) {
	return c.chat(ctx, chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: roleSystem, Content: systemPrompt},
			{Role: roleUser, Content: userPrompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
}

func (c *Client) chat(ctx context.Context, body chatRequest) (string, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", 0, fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", 0, fmt.Errorf("api error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", 0, fmt.Errorf("no choices in response")
	}

	return stripFence(parsed.Choices[0].Message.Content), parsed.Usage.TotalTokens, nil
}

func renderTemplate(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func stripFence(content string) string {
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
