// SPDX-License-Identifier: Apache-2.0

// Package router picks a destination class for a request based on its
// risk score: the local model, the cloud with mandatory redaction, or
// the cloud directly. It is independent of provider registration; the
// gateway package handles registered providers.
package router

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

// DefaultRouting is used when the policy carries no smart_routing block.
// Disabled by default: everything goes to the cloud directly.
func DefaultRouting() models.SmartRoutingConfig {
	return models.SmartRoutingConfig{
		Enabled: false,
		Routes: []models.SmartRoute{
			{Condition: "risk_score >= 70", Target: models.TargetLocalLLM},
			{Condition: "risk_score >= 30", Target: models.TargetCloudRedacted},
			{Condition: "default", Target: models.TargetCloudDirect},
		},
		LocalLLM: models.LocalLLMConfig{
			Provider: "ollama",
			Model:    "llama3",
			Endpoint: "http://localhost:11434",
		},
	}
}

var conditionRe = regexp.MustCompile(`risk_score\s*(>=|>|<=|<|==)\s*(\d+)`)

// evaluateCondition parses "risk_score <op> <int>" or the literal
// "default". Anything unparsable evaluates false, so a typo in a rule
// skips that rule instead of hijacking routing.
func evaluateCondition(condition string, riskScore int) bool {
	if condition == "default" {
		return true
	}

	match := conditionRe.FindStringSubmatch(condition)
	if match == nil {
		return false
	}
	value, err := strconv.Atoi(match[2])
	if err != nil {
		return false
	}

	switch match[1] {
	case ">=":
		return riskScore >= value
	case ">":
		return riskScore > value
	case "<=":
		return riskScore <= value
	case "<":
		return riskScore < value
	case "==":
		return riskScore == value
	default:
		return false
	}
}

func ollamaCompletionURL(routing models.SmartRoutingConfig) string {
	return strings.TrimRight(routing.LocalLLM.Endpoint, "/") + "/api/chat"
}

// SmartRouter resolves risk-based routes against a legacy default cloud
// endpoint.
type SmartRouter struct {
	defaultProviderURL string
	logger             *logger.Logger
}

// NewSmartRouter constructs a SmartRouter. defaultProviderURL is the
// legacy cloud completion endpoint used for both cloud targets.
func NewSmartRouter(defaultProviderURL string, log *logger.Logger) *SmartRouter {
	log.Debug().Msg("creating smart router")
	return &SmartRouter{
		defaultProviderURL: defaultProviderURL,
		logger:             log,
	}
}

func (r *SmartRouter) localRoute(routing models.SmartRoutingConfig) models.RouteDecision {
	return models.RouteDecision{
		Target:      models.TargetLocalLLM,
		ProviderURL: ollamaCompletionURL(routing),
		Model:       routing.LocalLLM.Model,
		IsLocal:     true,
	}
}

func (r *SmartRouter) cloudRoute(requestedModel string, redacted bool) models.RouteDecision {
	target := models.TargetCloudDirect
	if redacted {
		target = models.TargetCloudRedacted
	}
	return models.RouteDecision{
		Target:            target,
		ProviderURL:       r.defaultProviderURL,
		Model:             requestedModel,
		RequiresRedaction: redacted,
	}
}

// Resolve picks the destination for one request. Strict-local mode wins
// over everything; with routing disabled the cloud-direct legacy path is
// used; otherwise the first matching rule decides.
func (r *SmartRouter) Resolve(riskScore int, requestedModel string, policy models.PolicyConfig) models.RouteDecision {
	routing := DefaultRouting()
	if policy.SmartRouting != nil {
		routing = *policy.SmartRouting
	}

	if policy.StrictLocal {
		return r.localRoute(routing)
	}
	if !routing.Enabled {
		return r.cloudRoute(requestedModel, false)
	}

	for _, route := range routing.Routes {
		if !evaluateCondition(route.Condition, riskScore) {
			continue
		}
		switch route.Target {
		case models.TargetLocalLLM:
			return r.localRoute(routing)
		case models.TargetCloudRedacted:
			return r.cloudRoute(requestedModel, true)
		case models.TargetCloudDirect:
			return r.cloudRoute(requestedModel, false)
		}
	}
	return r.cloudRoute(requestedModel, false)
}

// IsLocalLLMAvailable probes the local runtime's tag listing with a
// short timeout. Routing to a dead local model would otherwise turn a
// high-risk request into a hard failure.
func IsLocalLLMAvailable(ctx context.Context, routing models.SmartRoutingConfig) bool {
	client := utils.NewHTTPClient(2 * time.Second)
	base := strings.TrimRight(routing.LocalLLM.Endpoint, "/")

	resp, err := client.R().SetContext(ctx).Get(base + "/api/tags")
	return err == nil && resp.StatusCode() == http.StatusOK
}
