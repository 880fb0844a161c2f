package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conneroisu/groq-go"

	"clipforge/internal/llm"
)

var _ llm.Client = (*Client)(nil)

const (
	systemTopic  = "You are an editorial planner for short-form video channels. Respond with a single JSON object."
	systemScript = "You are a scriptwriter for short-form vertical videos. Hook in the first sentence, short punchy lines. Respond with a single JSON object."
)

type Client struct {
	client *groq.Client
	model  groq.ChatModel
}

func NewClient(apiKey, model string) (*Client, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

func (c *Client) GenerateTopic(ctx context.Context, req llm.TopicRequest) (*llm.TopicResult, error) {
	prompt := renderTemplate(req.PromptTemplate, map[string]string{
		"language": req.Language,
		"channel":  req.ChannelName,
	})

	content, usage, err := c.generateJSON(ctx, systemTopic, prompt)
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
	result.TokensUsed = usage
	return &result, nil
}

func (c *Client) GenerateScript(ctx context.Context, req llm.ScriptRequest) (*llm.ScriptResult, error) {
	prompt := renderTemplate(req.PromptTemplate, map[string]string{
		"language":    req.Language,
		"topic":       req.TopicTitle,
		"description": req.TopicDescription,
	})

	content, usage, err := c.generateJSON(ctx, systemScript, prompt)
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
	result.TokensUsed = usage
	return &result, nil
}

// Ping issues a minimal completion to confirm the provider answers.
func (c *Client) Ping(ctx context.Context) error {
	req := groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleUser, Content: "ping"},
		},
		MaxTokens: 1,
	}
	_, err := c.client.ChatCompletion(ctx, req)
	return err
}

func (c *Client) generateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, int, error) {
	req := groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: userPrompt},
		},
		ResponseFormat: &groq.ChatResponseFormat{Type: "json_object"},
	}

	resp, err := c.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", 0, fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", 0, fmt.Errorf("no response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", 0, fmt.Errorf("empty response")
	}

	return stripFence(content), resp.Usage.TotalTokens, nil
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
