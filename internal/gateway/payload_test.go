package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsentry/prompt-sentry/models"
)

func anthropicRoute() models.GatewayRouteDecision {
	return models.GatewayRouteDecision{
		Provider:     models.Provider{Slug: "anthropic", BaseURL: "https://api.anthropic.com"},
		Model:        models.Model{ModelName: "claude-sonnet"},
		DecryptedKey: "sk-ant-test",
		ProviderURL:  "https://api.anthropic.com/v1/messages",
	}
}

func TestFormatAnthropicPayload_HoistsSystemMessage(t *testing.T) {
	payload := FormatAnthropicPayload("claude-sonnet", []models.ChatMessage{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	}, false).(anthropicPayload)

	assert.Equal(t, "be terse", payload.System)
	assert.Equal(t, 4096, payload.MaxTokens)
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "user", payload.Messages[0].Role)
	assert.Equal(t, "assistant", payload.Messages[1].Role)
}

func TestFormatGeminiPayload_RelabelsRoles(t *testing.T) {
	payload := FormatGeminiPayload([]models.ChatMessage{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	}).(geminiPayload)

	require.Len(t, payload.Contents, 3)
	assert.Equal(t, "user", payload.Contents[0].Role)
	assert.Equal(t, "user", payload.Contents[1].Role)
	assert.Equal(t, "model", payload.Contents[2].Role)
	assert.Equal(t, "answer", payload.Contents[2].Parts[0].Text)
}

func TestBuildUpstreamRequest_AnthropicHeaders(t *testing.T) {
	req := BuildUpstreamRequest(anthropicRoute(), []models.ChatMessage{{Role: "user", Content: "hi"}}, false)

	assert.Equal(t, "https://api.anthropic.com/v1/messages", req.URL)
	assert.Equal(t, "sk-ant-test", req.Headers["x-api-key"])
	assert.Equal(t, "2023-06-01", req.Headers["anthropic-version"])
	assert.NotContains(t, req.Headers, "Authorization")
}

func TestBuildUpstreamRequest_GeminiKeyInQuery(t *testing.T) {
	route := models.GatewayRouteDecision{
		Provider:     models.Provider{Slug: "google-gemini"},
		Model:        models.Model{ModelName: "gemini-pro"},
		DecryptedKey: "g-key",
		ProviderURL:  "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent",
	}

	req := BuildUpstreamRequest(route, nil, false)
	assert.Equal(t, route.ProviderURL+"?key=g-key", req.URL)
	assert.NotContains(t, req.Headers, "Authorization")
	assert.NotContains(t, req.Headers, "x-api-key")
}

func TestBuildUpstreamRequest_LocalSendsNoCredential(t *testing.T) {
	route := models.GatewayRouteDecision{
		Provider:    models.Provider{Slug: "ollama"},
		Model:       models.Model{ModelName: "llama3"},
		ProviderURL: "http://localhost:11434/api/chat",
		IsLocal:     true,
	}

	req := BuildUpstreamRequest(route, []models.ChatMessage{{Role: "user", Content: "hi"}}, true)
	assert.Equal(t, "http://localhost:11434/api/chat", req.URL)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, req.Headers)

	payload := req.Body.(chatCompletionsPayload)
	assert.Equal(t, "llama3", payload.Model)
	assert.True(t, payload.Stream)
}

func TestBuildUpstreamRequest_DefaultIsBearer(t *testing.T) {
	route := models.GatewayRouteDecision{
		Provider:     models.Provider{Slug: "openai"},
		Model:        models.Model{ModelName: "gpt-4"},
		DecryptedKey: "sk-test",
		ProviderURL:  "https://api.openai.com/v1/chat/completions",
	}

	req := BuildUpstreamRequest(route, nil, false)
	assert.Equal(t, "Bearer sk-test", req.Headers["Authorization"])
}

func TestBuildProviderURL_PerFamilyPaths(t *testing.T) {
	model := models.Model{ModelName: "m1"}

	tests := []struct {
		slug    string
		baseURL string
		want    string
	}{
		{"ollama", "http://localhost:11434/", "http://localhost:11434/api/chat"},
		{"anthropic", "https://api.anthropic.com", "https://api.anthropic.com/v1/messages"},
		{"claude-eu", "https://eu.anthropic.com", "https://eu.anthropic.com/v1/messages"},
		{"gemini", "https://g.example", "https://g.example/v1beta/models/m1:generateContent"},
		{"openai", "https://api.openai.com", "https://api.openai.com/v1/chat/completions"},
		{"mistral", "https://api.mistral.ai", "https://api.mistral.ai/v1/chat/completions"},
	}
	for _, tt := range tests {
		got := buildProviderURL(models.Provider{Slug: tt.slug, BaseURL: tt.baseURL}, model)
		assert.Equal(t, tt.want, got, "slug %s", tt.slug)
	}
}
