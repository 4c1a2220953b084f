// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/policy"
	"github.com/promptsentry/prompt-sentry/internal/redactor"
	"github.com/promptsentry/prompt-sentry/internal/scanner"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

// browserScan gives interactive clients (editor selections, browser
// extensions) a verdict on an arbitrary text. It uses the global policy
// only and never forwards anything upstream.
func (h *Handler) browserScan(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.BrowserScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		utils.WriteJSON(w, models.ErrorResponse{Error: "Missing 'text' field in request body"}, http.StatusBadRequest)
		return
	}

	cfg, err := h.deps.Policies.LoadGlobal()
	if err != nil {
		log.Err(err).Str("func", "*Handler.browserScan").Msg("error loading policy")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error loading policy"}, http.StatusInternalServerError)
		return
	}

	secretResult := scanner.ScanSecrets(req.Text)
	piiResult := scanner.ScanPII(req.Text)
	decision := policy.Decide(secretResult, piiResult, cfg, nil)

	resp := models.BrowserScanResponse{
		Action:       decision.Action,
		RiskScore:    decision.RiskScore,
		Reasons:      decision.Reasons,
		SecretsFound: len(secretResult.Secrets),
		PIIFound:     len(piiResult.PII),
		Secrets:      make([]models.ScannedMatch, 0, len(secretResult.Secrets)),
		PII:          make([]models.ScannedMatch, 0, len(piiResult.PII)),
		Source:       req.Source,
		URL:          req.URL,
		Timestamp:    time.Now().UnixMilli(),
	}
	if resp.Source == "" {
		resp.Source = "unknown"
	}
	if resp.URL == "" {
		resp.URL = "unknown"
	}

	for _, s := range secretResult.Secrets {
		resp.Secrets = append(resp.Secrets, models.ScannedMatch{
			Type: string(s.Type), Severity: s.Severity, Position: s.Position, Length: s.Length,
		})
	}
	for _, p := range piiResult.PII {
		resp.PII = append(resp.PII, models.ScannedMatch{
			Type: string(p.Type), Severity: p.Severity, Position: p.Position, Length: p.Length,
		})
	}

	if decision.Action == models.ActionRedact {
		resp.RedactedText = redactor.Redact(req.Text, redactor.FromScanResults(secretResult.Secrets, piiResult.PII))
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}
