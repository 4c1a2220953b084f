// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"github.com/promptsentry/prompt-sentry/models"
)

// UpstreamRequest is everything the dispatcher needs for one provider
// call. Headers carry the credential except for the Gemini family, where
// the key rides in the URL query.
type UpstreamRequest struct {
	URL     string
	Headers map[string]string
	Body    interface{}
}

type anthropicPayload struct {
	Model     string               `json:"model"`
	MaxTokens int                  `json:"max_tokens"`
	System    string               `json:"system,omitempty"`
	Messages  []models.ChatMessage `json:"messages"`
	Stream    bool                 `json:"stream,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPayload struct {
	Contents []geminiContent `json:"contents"`
}

type chatCompletionsPayload struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

// FormatAnthropicPayload hoists a system message into the top-level
// system field and forwards the rest as-is.
func FormatAnthropicPayload(model string, messages []models.ChatMessage, stream bool) interface{} {
	payload := anthropicPayload{
		Model:     model,
		MaxTokens: 4096,
		Stream:    stream,
	}
	for _, m := range messages {
		if m.Role == "system" && payload.System == "" {
			payload.System = m.Content
			continue
		}
		if m.Role == "system" {
			continue
		}
		payload.Messages = append(payload.Messages, m)
	}
	return payload
}

// FormatGeminiPayload relabels assistant turns as "model" and everything
// else as "user", which is the only role pair the API accepts.
func FormatGeminiPayload(messages []models.ChatMessage) interface{} {
	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	return geminiPayload{Contents: contents}
}

// FormatChatCompletionsPayload is the OpenAI-compatible shape, also used
// for local Ollama which accepts the same message layout on /api/chat.
func FormatChatCompletionsPayload(model string, messages []models.ChatMessage, stream bool) interface{} {
	return chatCompletionsPayload{
		Model:    model,
		Messages: messages,
		Stream:   stream,
	}
}

// BuildUpstreamRequest shapes the payload, URL, and headers for the
// route's provider family.
func BuildUpstreamRequest(route models.GatewayRouteDecision, messages []models.ChatMessage, stream bool) UpstreamRequest {
	headers := map[string]string{"Content-Type": "application/json"}

	switch {
	case route.IsLocal:
		return UpstreamRequest{
			URL:     route.ProviderURL,
			Headers: headers,
			Body:    FormatChatCompletionsPayload(route.Model.ModelName, messages, stream),
		}
	case isAnthropicProvider(route.Provider.Slug):
		headers["x-api-key"] = route.DecryptedKey
		headers["anthropic-version"] = "2023-06-01"
		return UpstreamRequest{
			URL:     route.ProviderURL,
			Headers: headers,
			Body:    FormatAnthropicPayload(route.Model.ModelName, messages, stream),
		}
	case isGeminiProvider(route.Provider.Slug):
		return UpstreamRequest{
			URL:     route.ProviderURL + "?key=" + route.DecryptedKey,
			Headers: headers,
			Body:    FormatGeminiPayload(messages),
		}
	default:
		headers["Authorization"] = "Bearer " + route.DecryptedKey
		return UpstreamRequest{
			URL:     route.ProviderURL,
			Headers: headers,
			Body:    FormatChatCompletionsPayload(route.Model.ModelName, messages, stream),
		}
	}
}
