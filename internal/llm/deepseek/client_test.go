package deepseek

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/internal/llm"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient("test-key", "deepseek-chat")
	c.baseURL = server.URL
	return c
}

func chatReply(t *testing.T, w http.ResponseWriter, content string, tokens int) {
	t.Helper()
	resp := chatResponse{
		Choices: []choice{{Message: message{Role: "assistant", Content: content}}},
		Usage:   usage{TotalTokens: tokens},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestGenerateTopic(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Error("expected json_object response format")
		}
		chatReply(t, w, `{"title":"Deep Sea Lights","description":"bioluminescence","image_keywords":["anglerfish"],"video_keywords":["deep sea"]}`, 42)
	})

	result, err := client.GenerateTopic(t.Context(), llm.TopicRequest{
		Language:       "en",
		ChannelName:    "ocean-facts",
		PromptTemplate: "pick a topic for {{channel}} in {{language}}",
	})
	if err != nil {
		t.Fatalf("GenerateTopic() error = %v", err)
	}
	if result.Title != "Deep Sea Lights" {
		t.Errorf("Title = %q", result.Title)
	}
	if result.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", result.TokensUsed)
	}
}

func TestGenerateScriptFencedReply(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "```json\n{\"title\":\"t\",\"narrative\":\"words\",\"description\":\"d\",\"tags\":[\"x\"]}\n```", 10)
	})

	result, err := client.GenerateScript(t.Context(), llm.ScriptRequest{
		TopicTitle:     "t",
		Language:       "en",
		PromptTemplate: "write about {{topic}}",
	})
	if err != nil {
		t.Fatalf("GenerateScript() error = %v", err)
	}
	if result.Narrative != "words" {
		t.Errorf("Narrative = %q", result.Narrative)
	}
}

func TestGenerateTopicMissingTitle(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"title":"","description":"empty"}`, 5)
	})

	if _, err := client.GenerateTopic(t.Context(), llm.TopicRequest{PromptTemplate: "x"}); err == nil {
		t.Fatal("expected error for topic without a title")
	}
}

func TestGenerateScriptMissingNarrative(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"title":"t","narrative":"","description":"d"}`, 5)
	})

	if _, err := client.GenerateScript(t.Context(), llm.ScriptRequest{TopicTitle: "t", PromptTemplate: "x"}); err == nil {
		t.Fatal("expected error for script without a narrative")
	}
}

func TestGenerateScriptFallsBackToTopicTitle(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"title":"","narrative":"words","description":"d"}`, 5)
	})

	result, err := client.GenerateScript(t.Context(), llm.ScriptRequest{TopicTitle: "Deep Sea Lights", PromptTemplate: "x"})
	if err != nil {
		t.Fatalf("GenerateScript() error = %v", err)
	}
	if result.Title != "Deep Sea Lights" {
		t.Errorf("Title = %q, want topic title fallback", result.Title)
	}
}

func TestAPIErrorSurfaces(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{
			Error: &apiError{Message: "invalid key", Type: "authentication_error"},
		})
	})

	if _, err := client.GenerateTopic(t.Context(), llm.TopicRequest{PromptTemplate: "x"}); err == nil {
		t.Fatal("expected error for api error response")
	}
}

func TestPing(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.MaxTokens != 1 {
			t.Errorf("MaxTokens = %d, want 1", req.MaxTokens)
		}
		chatReply(t, w, "pong", 1)
	})

	if err := client.Ping(t.Context()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}
