package llm

import "context"

// TopicRequest carries the channel identity and prompt template used to pick
// one subject for a group of channels.
type TopicRequest struct {
	Language       string
	ChannelName    string
	PromptTemplate string
}

type TopicResult struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ImageKeywords []string `json:"image_keywords"`
	VideoKeywords []string `json:"video_keywords"`
	TokensUsed    int      `json:"-"`
}

type ScriptRequest struct {
	TopicTitle       string
	TopicDescription string
	Language         string
	PromptTemplate   string
}

type ScriptResult struct {
	Title       string   `json:"title"`
	Narrative   string   `json:"narrative"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	TokensUsed  int      `json:"-"`
}

type Client interface {
	GenerateTopic(ctx context.Context, req TopicRequest) (*TopicResult, error)
	GenerateScript(ctx context.Context, req ScriptRequest) (*ScriptResult, error)
	Ping(ctx context.Context) error
}
