// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/store"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

// estimate runs the full inspection pipeline and a cost projection
// without ever calling an upstream provider.
func (h *Handler) estimate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.estimate").Msg("Invalid JSON was passed")
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid payload"}, http.StatusBadRequest)
		return
	}
	if req.Model == "" || len(req.Messages) == 0 {
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid payload"}, http.StatusBadRequest)
		return
	}

	eval, err := h.deps.Firewall.Evaluate(r.Context(), &req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.estimate").Msg("error evaluating request")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error evaluating request"}, http.StatusInternalServerError)
		return
	}

	decision := eval.Decision
	var modelPolicyBlocked *models.ModelPolicyResult
	if eval.ModelPolicy != nil && !eval.ModelPolicy.Allowed {
		decision.Action = models.ActionBlock
		reason := eval.ModelPolicy.Reason
		if reason == "" {
			reason = "Model policy blocked"
		}
		decision.Reasons = append(decision.Reasons, reason)
		modelPolicyBlocked = eval.ModelPolicy
	}

	var privacyRisk *models.PrivacyRisk
	if eval.Policy.Audit != nil && eval.Policy.Audit.Enabled {
		privacyRisk = h.deps.Analyzer.PrivacyRisk(r.Context(), eval.RawText, *eval.Policy.Audit)
	}

	estimatedTokens := utils.EstimateTokens(eval.RawText)

	resp := models.EstimateResponse{
		EstimatedInputTokens: estimatedTokens,
		CreditRemaining:      -1,
		CreditLimitType:      "none",
		Scan: models.EstimateScan{
			Action:       decision.Action,
			SecretsFound: len(eval.Secrets.Secrets),
			PIIFound:     len(eval.PII.PII),
			FilesBlocked: decision.FilesBlocked,
			RiskScore:    decision.RiskScore,
			Reasons:      decision.Reasons,
		},
		ModelPolicyBlocked: modelPolicyBlocked,
		PromptInjection:    eval.Injection,
		PrivacyRisk:        privacyRisk,
		Model: models.EstimateModel{
			Name:        req.Model,
			DisplayName: req.Model,
		},
	}

	registered, err := h.deps.Store.Models.FindModelByName(r.Context(), req.Model)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Err(err).Str("func", "*Handler.estimate").Msg("error looking up model")
		}
		resp.Model.Provider = "unknown"
		utils.WriteJSON(w, resp, http.StatusOK)
		return
	}

	resp.Model.Name = registered.ModelName
	resp.Model.DisplayName = registered.DisplayName
	resp.Model.Registered = true
	resp.EstimatedCost = roundCost(utils.EstimateCost(estimatedTokens, registered.InputCostPer1K))

	resp.Model.Provider = "unknown"
	if provider, err := h.deps.Store.Providers.GetProvider(r.Context(), registered.ProviderID); err == nil {
		resp.Model.Provider = provider.Name
	}

	check, err := h.deps.Ledger.Check(r.Context(), registered.ProviderID, &registered.ID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.estimate").Msg("error checking credit")
	} else {
		resp.CreditLimitType = string(check.LimitType)
		if !check.Unlimited {
			resp.CreditRemaining = check.Remaining
		}
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}
