// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/firewall"
	"github.com/promptsentry/prompt-sentry/internal/gateway"
	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/router"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

func wantsStream(r *http.Request, req *models.ChatCompletionRequest) bool {
	return req.Stream || strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func roundCost(cost float64) float64 {
	return math.Round(cost*1_000_000) / 1_000_000
}

// pipeUpstream copies a streaming upstream body to the client as it
// arrives, flushing after every chunk. The caller keeps no accounting
// for piped responses.
func pipeUpstream(w http.ResponseWriter, resp *http.Response) {
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

func upstreamDetails(err error) any {
	var ue *gateway.UpstreamError
	if errors.As(err, &ue) {
		var decoded any
		if json.Unmarshal([]byte(ue.Body), &decoded) == nil {
			return decoded
		}
		return ue.Body
	}
	return err.Error()
}

func (h *Handler) chatCompletions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	started := time.Now()

	var req models.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.chatCompletions").Msg("Invalid JSON was passed")
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid request payload"}, http.StatusBadRequest)
		return
	}
	if req.Model == "" || len(req.Messages) == 0 {
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid request payload"}, http.StatusBadRequest)
		return
	}

	eval, err := h.deps.Firewall.Evaluate(r.Context(), &req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.chatCompletions").Msg("error evaluating request")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error evaluating request"}, http.StatusInternalServerError)
		return
	}

	if eval.Decision.Action == models.ActionBlock {
		h.deps.Firewall.LogOutcome(r.Context(), eval, firewall.Outcome{
			Model:         req.Model,
			Provider:      "-",
			SanitizedText: "[BLOCKED]",
			Action:        models.ActionBlock,
			Reasons:       eval.Decision.Reasons,
			StartedAt:     started,
		})

		if len(eval.Decision.FilesBlocked) > 0 {
			utils.WriteJSON(w, models.ErrorResponse{
				Error:        "Request blocked by file scope policy",
				Code:         models.CodeFileScopeBlocked,
				Reasons:      eval.Decision.Reasons,
				FilesBlocked: eval.Decision.FilesBlocked,
			}, http.StatusForbidden)
			return
		}

		risk := eval.Decision.RiskScore
		utils.WriteJSON(w, models.ErrorResponse{
			Error:     "Request blocked due to sensitive data",
			Code:      models.CodeFirewallBlocked,
			Reasons:   eval.Decision.Reasons,
			RiskScore: &risk,
		}, http.StatusForbidden)
		return
	}

	strictLocal := h.deps.StrictLocalEnv || eval.Policy.StrictLocal

	gatewayRoute, gwErr := h.deps.Gateway.Resolve(r.Context(), req.Model)
	if gwErr != nil && !errors.Is(gwErr, gateway.ErrNoRoute) {
		log.Err(gwErr).Str("func", "*Handler.chatCompletions").Msg("error resolving gateway route")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error resolving provider"}, http.StatusInternalServerError)
		return
	}
	if gwErr == nil && strictLocal && !gatewayRoute.IsLocal {
		// Registered cloud providers are off limits in strict-local mode.
		gwErr = gateway.ErrNoRoute
	}

	routingPolicy := *eval.Policy
	routingPolicy.StrictLocal = strictLocal
	smartRoute := h.deps.Smart.Resolve(eval.Decision.RiskScore, req.Model, routingPolicy)
	shouldRedact := eval.Decision.Action == models.ActionRedact || smartRoute.RequiresRedaction

	action := models.ActionAllow
	outbound := req.Messages
	sanitized := eval.RawText
	if shouldRedact {
		action = models.ActionRedact
		if len(eval.Replacements) > 0 {
			outbound, sanitized = firewall.RedactMessages(req.Messages, eval.Replacements)
		}
	}

	if eval.ModelPolicy != nil && !eval.ModelPolicy.Allowed {
		utils.WriteJSON(w, models.ErrorResponse{
			Error:        eval.ModelPolicy.Reason,
			Code:         models.CodeModelPolicyBlocked,
			FilesBlocked: eval.ModelPolicy.BlockedFiles,
		}, http.StatusForbidden)
		return
	}

	if gwErr == nil {
		h.completeViaGateway(w, r, eval, gatewayRoute, outbound, sanitized, action, wantsStream(r, &req), started)
		return
	}

	if strictLocal {
		routing := router.DefaultRouting()
		if eval.Policy.SmartRouting != nil {
			routing = *eval.Policy.SmartRouting
		}
		if !smartRoute.IsLocal || !router.IsLocalLLMAvailable(r.Context(), routing) {
			utils.WriteJSON(w, models.ErrorResponse{
				Error: "STRICT_LOCAL mode is enabled: only local LLM providers are allowed. No local provider found for this model.",
				Code:  models.CodeStrictLocalEnforced,
			}, http.StatusForbidden)
			return
		}
	}

	h.completeViaSmartRoute(w, r, eval, smartRoute, outbound, sanitized, action, started)
}

func (h *Handler) completeViaGateway(w http.ResponseWriter, r *http.Request, eval *firewall.Evaluation,
	route models.GatewayRouteDecision, outbound []models.ChatMessage, sanitized string,
	action models.Action, stream bool, started time.Time) {
	log := logger.FromRequest(r)

	if !route.CreditCheck.Allowed {
		remaining := 0.0
		utils.WriteJSON(w, models.ErrorResponse{
			Error:     "Credit limit exhausted",
			Code:      models.CodeCreditExhausted,
			Details:   route.CreditCheck.Message,
			LimitType: string(route.CreditCheck.LimitType),
			Remaining: &remaining,
		}, http.StatusTooManyRequests)
		return
	}

	upstream := gateway.BuildUpstreamRequest(route, outbound, stream)

	if stream {
		resp, err := h.deps.Dispatcher.Stream(r.Context(), upstream)
		if err != nil {
			log.Err(err).Str("func", "*Handler.completeViaGateway").Msg("error streaming from provider")
			utils.WriteJSON(w, models.ErrorResponse{
				Error:   "Upstream provider request failed",
				Details: upstreamDetails(err),
			}, http.StatusBadGateway)
			return
		}

		h.deps.Firewall.LogOutcome(r.Context(), eval, firewall.Outcome{
			Model:         route.Model.ModelName,
			Provider:      route.Provider.Name,
			SanitizedText: sanitized,
			Action:        action,
			Reasons:       eval.Decision.Reasons,
			StartedAt:     started,
		})
		pipeUpstream(w, resp)
		return
	}

	raw, err := h.deps.Dispatcher.Send(r.Context(), upstream)
	if err != nil {
		h.deps.Firewall.LogOutcome(r.Context(), eval, firewall.Outcome{
			Model:         route.Model.ModelName,
			Provider:      route.Provider.Name,
			SanitizedText: sanitized,
			Action:        action,
			Reasons:       []string{"Provider error: " + err.Error()},
			StartedAt:     started,
		})

		utils.WriteJSON(w, models.ErrorResponse{
			Error:   "Upstream provider request failed",
			Details: upstreamDetails(err),
		}, http.StatusBadGateway)
		return
	}

	usage := gateway.ExtractTokenUsage(route.Provider.Slug, raw)
	cost := float64(usage.InputTokens)/1000*route.Model.InputCostPer1K +
		float64(usage.OutputTokens)/1000*route.Model.OutputCostPer1K

	if err := h.deps.Ledger.Consume(r.Context(), route.Provider.ID, &route.Model.ID, usage.TotalTokens, cost); err != nil {
		log.Err(err).Str("func", "*Handler.completeViaGateway").Msg("error consuming credit")
	}

	if _, err := h.deps.Store.Usage.RecordUsage(r.Context(), models.UsageRecord{
		ProviderID:   route.Provider.ID,
		ModelName:    route.Model.ModelName,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		TotalTokens:  usage.TotalTokens,
		Cost:         cost,
	}); err != nil {
		log.Err(err).Str("func", "*Handler.completeViaGateway").Msg("error recording usage")
	}

	h.deps.Firewall.LogOutcome(r.Context(), eval, firewall.Outcome{
		Model:         route.Model.ModelName,
		Provider:      route.Provider.Name,
		SanitizedText: sanitized,
		Action:        action,
		Reasons:       eval.Decision.Reasons,
		StartedAt:     started,
	})

	tokensUsed := usage.TotalTokens
	costEstimate := roundCost(cost)
	meta := models.FirewallMeta{
		Action:       action,
		SecretsFound: len(eval.Secrets.Secrets),
		PIIFound:     len(eval.PII.PII),
		RiskScore:    eval.Decision.RiskScore,
		RoutedTo:     route.Provider.Name,
		ModelUsed:    route.Model.ModelName,
		TokensUsed:   &tokensUsed,
		CostEstimate: &costEstimate,
	}
	if !route.CreditCheck.Unlimited {
		remaining := route.CreditCheck.Remaining
		meta.CreditRemaining = &remaining
	}

	utils.WriteJSON(w, models.AnnotatedCompletion{
		CompletionResponse: gateway.NormalizeResponse(route, raw),
		Firewall:           meta,
	}, http.StatusOK)
}

func (h *Handler) completeViaSmartRoute(w http.ResponseWriter, r *http.Request, eval *firewall.Evaluation,
	route models.RouteDecision, outbound []models.ChatMessage, sanitized string,
	action models.Action, started time.Time) {
	log := logger.FromRequest(r)

	meta := models.FirewallMeta{
		Action:       action,
		SecretsFound: len(eval.Secrets.Secrets),
		PIIFound:     len(eval.PII.PII),
		RiskScore:    eval.Decision.RiskScore,
		RoutedTo:     route.Target,
		ModelUsed:    route.Model,
	}

	if route.IsLocal {
		raw, err := h.deps.Dispatcher.Send(r.Context(), gateway.UpstreamRequest{
			URL:     route.ProviderURL,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    gateway.FormatChatCompletionsPayload(route.Model, outbound, false),
		})
		if err != nil {
			log.Err(err).Str("func", "*Handler.completeViaSmartRoute").Msg("error calling local llm")
			utils.WriteJSON(w, models.ErrorResponse{
				Error:   "Local LLM request failed",
				Details: upstreamDetails(err),
			}, http.StatusBadGateway)
			return
		}

		h.deps.Firewall.LogOutcome(r.Context(), eval, firewall.Outcome{
			Model:         route.Model,
			Provider:      "local",
			SanitizedText: sanitized,
			Action:        action,
			Reasons:       eval.Decision.Reasons,
			StartedAt:     started,
		})

		utils.WriteJSON(w, models.AnnotatedCompletion{
			CompletionResponse: gateway.NormalizeOllamaResponse(raw),
			Firewall:           meta,
		}, http.StatusOK)
		return
	}

	apiKey := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if apiKey == "" {
		utils.WriteJSON(w, models.ErrorResponse{
			Error: "No provider configured for this model. Register a provider via POST /api/providers or pass an Authorization bearer token.",
		}, http.StatusBadRequest)
		return
	}

	raw, err := h.deps.Dispatcher.Send(r.Context(), gateway.UpstreamRequest{
		URL: route.ProviderURL,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + apiKey,
		},
		Body: gateway.FormatChatCompletionsPayload(route.Model, outbound, false),
	})
	if err != nil {
		h.deps.Firewall.LogOutcome(r.Context(), eval, firewall.Outcome{
			Model:         route.Model,
			Provider:      "openai",
			SanitizedText: sanitized,
			Action:        action,
			Reasons:       []string{"Provider error: " + err.Error()},
			StartedAt:     started,
		})
		utils.WriteJSON(w, models.ErrorResponse{
			Error:   "Upstream provider request failed",
			Details: upstreamDetails(err),
		}, http.StatusBadGateway)
		return
	}

	h.deps.Firewall.LogOutcome(r.Context(), eval, firewall.Outcome{
		Model:         route.Model,
		Provider:      "openai",
		SanitizedText: sanitized,
		Action:        action,
		Reasons:       eval.Decision.Reasons,
		StartedAt:     started,
	})

	// Cloud passthrough keeps the provider body untouched; only the
	// firewall annotation is added.
	raw["_firewall"] = meta
	utils.WriteJSON(w, raw, http.StatusOK)
}
