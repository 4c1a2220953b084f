package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsentry/prompt-sentry/models"
)

func TestNormalizeAnthropicResponse(t *testing.T) {
	raw := map[string]interface{}{
		"id":          "msg_01",
		"model":       "claude-sonnet",
		"stop_reason": "end_turn",
		"content": []interface{}{
			map[string]interface{}{"type": "text", "text": "hello there"},
		},
		"usage": map[string]interface{}{
			"input_tokens":  float64(12),
			"output_tokens": float64(5),
		},
	}

	resp := NormalizeAnthropicResponse(raw)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "msg_01", resp.ID)
	assert.Equal(t, "chat.completion", resp.Object)
	assert.Equal(t, "assistant", resp.Choices[0].Message.Role)
	assert.Equal(t, "hello there", resp.Choices[0].Message.Content)
	assert.Equal(t, "end_turn", resp.Choices[0].FinishReason)
	assert.EqualValues(t, 17, resp.Usage.TotalTokens)
}

func TestNormalizeGeminiResponse(t *testing.T) {
	raw := map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{
						map[string]interface{}{"text": "gemini says hi"},
					},
				},
			},
		},
		"usageMetadata": map[string]interface{}{
			"promptTokenCount":     float64(8),
			"candidatesTokenCount": float64(4),
			"totalTokenCount":      float64(12),
		},
	}

	resp := NormalizeGeminiResponse(raw)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "gemini says hi", resp.Choices[0].Message.Content)
	assert.EqualValues(t, 12, resp.Usage.TotalTokens)
}

func TestNormalizeOllamaResponse(t *testing.T) {
	raw := map[string]interface{}{
		"model": "llama3",
		"message": map[string]interface{}{
			"role":    "assistant",
			"content": "local answer",
		},
		"prompt_eval_count": float64(20),
		"eval_count":        float64(30),
	}

	resp := NormalizeOllamaResponse(raw)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "llama3", resp.Model)
	assert.Equal(t, "local answer", resp.Choices[0].Message.Content)
	assert.EqualValues(t, 50, resp.Usage.TotalTokens)
}

func TestNormalizeOllamaResponse_EmptyBody(t *testing.T) {
	resp := NormalizeOllamaResponse(map[string]interface{}{})
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "assistant", resp.Choices[0].Message.Role)
	assert.Equal(t, "", resp.Choices[0].Message.Content)
	assert.EqualValues(t, 0, resp.Usage.TotalTokens)
}

func TestNormalizeOpenAIResponse_PassThrough(t *testing.T) {
	raw := map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4",
		"choices": []interface{}{
			map[string]interface{}{
				"message":       map[string]interface{}{"role": "assistant", "content": "ok"},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     float64(3),
			"completion_tokens": float64(1),
			"total_tokens":      float64(4),
		},
	}

	resp := NormalizeOpenAIResponse(raw)
	assert.Equal(t, "chatcmpl-1", resp.ID)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "ok", resp.Choices[0].Message.Content)
	assert.EqualValues(t, 4, resp.Usage.TotalTokens)
}

func TestExtractTokenUsage_PerFamily(t *testing.T) {
	tests := []struct {
		name string
		slug string
		raw  map[string]interface{}
		want models.TokenUsage
	}{
		{
			name: "anthropic",
			slug: "anthropic",
			raw: map[string]interface{}{
				"usage": map[string]interface{}{"input_tokens": float64(10), "output_tokens": float64(2)},
			},
			want: models.TokenUsage{InputTokens: 10, OutputTokens: 2, TotalTokens: 12},
		},
		{
			name: "gemini",
			slug: "google",
			raw: map[string]interface{}{
				"usageMetadata": map[string]interface{}{
					"promptTokenCount": float64(7), "candidatesTokenCount": float64(3), "totalTokenCount": float64(10),
				},
			},
			want: models.TokenUsage{InputTokens: 7, OutputTokens: 3, TotalTokens: 10},
		},
		{
			name: "ollama",
			slug: "ollama",
			raw: map[string]interface{}{
				"prompt_eval_count": float64(11), "eval_count": float64(9),
			},
			want: models.TokenUsage{InputTokens: 11, OutputTokens: 9, TotalTokens: 20},
		},
		{
			name: "openai compatible",
			slug: "openai",
			raw: map[string]interface{}{
				"usage": map[string]interface{}{
					"prompt_tokens": float64(5), "completion_tokens": float64(5), "total_tokens": float64(10),
				},
			},
			want: models.TokenUsage{InputTokens: 5, OutputTokens: 5, TotalTokens: 10},
		},
		{
			name: "missing usage block",
			slug: "openai",
			raw:  map[string]interface{}{},
			want: models.TokenUsage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTokenUsage(tt.slug, tt.raw))
		})
	}
}
