// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"time"

	"github.com/promptsentry/prompt-sentry/models"
)

// Response normalizers flatten each provider family's native shape into
// the canonical chat-completion format, so callers see one response
// schema regardless of where the request landed.

func rawString(raw map[string]interface{}, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func rawNumber(raw map[string]interface{}, key string) int64 {
	switch v := raw[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func rawMap(raw map[string]interface{}, key string) map[string]interface{} {
	if v, ok := raw[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

func rawSlice(raw map[string]interface{}, key string) []interface{} {
	if v, ok := raw[key].([]interface{}); ok {
		return v
	}
	return nil
}

// NormalizeAnthropicResponse flattens the content-block array into a
// single assistant message.
func NormalizeAnthropicResponse(raw map[string]interface{}) models.CompletionResponse {
	var text string
	if content := rawSlice(raw, "content"); len(content) > 0 {
		if block, ok := content[0].(map[string]interface{}); ok {
			text = rawString(block, "text")
		}
	}

	finishReason := rawString(raw, "stop_reason")
	if finishReason == "" {
		finishReason = "stop"
	}
	id := rawString(raw, "id")
	if id == "" {
		id = fmt.Sprintf("anthropic-%d", time.Now().UnixMilli())
	}

	usage := rawMap(raw, "usage")
	input := rawNumber(usage, "input_tokens")
	output := rawNumber(usage, "output_tokens")

	return models.CompletionResponse{
		ID:     id,
		Object: "chat.completion",
		Model:  rawString(raw, "model"),
		Choices: []models.CompletionChoice{{
			Message:      models.ChatMessage{Role: "assistant", Content: text},
			FinishReason: finishReason,
		}},
		Usage: models.CompletionUsage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		},
	}
}

// NormalizeGeminiResponse extracts the first candidate's first part.
func NormalizeGeminiResponse(raw map[string]interface{}) models.CompletionResponse {
	var text string
	if candidates := rawSlice(raw, "candidates"); len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]interface{}); ok {
			if parts := rawSlice(rawMap(candidate, "content"), "parts"); len(parts) > 0 {
				if part, ok := parts[0].(map[string]interface{}); ok {
					text = rawString(part, "text")
				}
			}
		}
	}

	meta := rawMap(raw, "usageMetadata")

	return models.CompletionResponse{
		ID:     fmt.Sprintf("gemini-%d", time.Now().UnixMilli()),
		Object: "chat.completion",
		Model:  "gemini",
		Choices: []models.CompletionChoice{{
			Message:      models.ChatMessage{Role: "assistant", Content: text},
			FinishReason: "stop",
		}},
		Usage: models.CompletionUsage{
			PromptTokens:     rawNumber(meta, "promptTokenCount"),
			CompletionTokens: rawNumber(meta, "candidatesTokenCount"),
			TotalTokens:      rawNumber(meta, "totalTokenCount"),
		},
	}
}

// NormalizeOllamaResponse adapts Ollama's single-message reply.
func NormalizeOllamaResponse(raw map[string]interface{}) models.CompletionResponse {
	message := rawMap(raw, "message")
	role := rawString(message, "role")
	if role == "" {
		role = "assistant"
	}

	input := rawNumber(raw, "prompt_eval_count")
	output := rawNumber(raw, "eval_count")

	return models.CompletionResponse{
		ID:     fmt.Sprintf("local-%d", time.Now().UnixMilli()),
		Object: "chat.completion",
		Model:  rawString(raw, "model"),
		Choices: []models.CompletionChoice{{
			Message:      models.ChatMessage{Role: role, Content: rawString(message, "content")},
			FinishReason: "stop",
		}},
		Usage: models.CompletionUsage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		},
	}
}

// NormalizeOpenAIResponse decodes the already-canonical shape.
func NormalizeOpenAIResponse(raw map[string]interface{}) models.CompletionResponse {
	resp := models.CompletionResponse{
		ID:     rawString(raw, "id"),
		Object: rawString(raw, "object"),
		Model:  rawString(raw, "model"),
	}
	for i, c := range rawSlice(raw, "choices") {
		choice, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		message := rawMap(choice, "message")
		resp.Choices = append(resp.Choices, models.CompletionChoice{
			Index:        i,
			Message:      models.ChatMessage{Role: rawString(message, "role"), Content: rawString(message, "content")},
			FinishReason: rawString(choice, "finish_reason"),
		})
	}
	usage := rawMap(raw, "usage")
	resp.Usage = models.CompletionUsage{
		PromptTokens:     rawNumber(usage, "prompt_tokens"),
		CompletionTokens: rawNumber(usage, "completion_tokens"),
		TotalTokens:      rawNumber(usage, "total_tokens"),
	}
	return resp
}

// NormalizeResponse picks the right normalizer for the route's family.
func NormalizeResponse(route models.GatewayRouteDecision, raw map[string]interface{}) models.CompletionResponse {
	switch {
	case route.IsLocal:
		return NormalizeOllamaResponse(raw)
	case isAnthropicProvider(route.Provider.Slug):
		return NormalizeAnthropicResponse(raw)
	case isGeminiProvider(route.Provider.Slug):
		return NormalizeGeminiResponse(raw)
	default:
		return NormalizeOpenAIResponse(raw)
	}
}

// ExtractTokenUsage pulls the provider family's native token accounting
// out of a raw response body.
func ExtractTokenUsage(providerSlug string, raw map[string]interface{}) models.TokenUsage {
	switch {
	case isAnthropicProvider(providerSlug):
		usage := rawMap(raw, "usage")
		input := rawNumber(usage, "input_tokens")
		output := rawNumber(usage, "output_tokens")
		return models.TokenUsage{InputTokens: input, OutputTokens: output, TotalTokens: input + output}
	case isGeminiProvider(providerSlug):
		meta := rawMap(raw, "usageMetadata")
		return models.TokenUsage{
			InputTokens:  rawNumber(meta, "promptTokenCount"),
			OutputTokens: rawNumber(meta, "candidatesTokenCount"),
			TotalTokens:  rawNumber(meta, "totalTokenCount"),
		}
	case IsLocalProvider(providerSlug):
		input := rawNumber(raw, "prompt_eval_count")
		output := rawNumber(raw, "eval_count")
		return models.TokenUsage{InputTokens: input, OutputTokens: output, TotalTokens: input + output}
	default:
		usage := rawMap(raw, "usage")
		return models.TokenUsage{
			InputTokens:  rawNumber(usage, "prompt_tokens"),
			OutputTokens: rawNumber(usage, "completion_tokens"),
			TotalTokens:  rawNumber(usage, "total_tokens"),
		}
	}
}
