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

// vaultAvailable answers 503 when reversible redaction is disabled
// because no master secret was configured.
func (h *Handler) vaultAvailable(w http.ResponseWriter) bool {
	if h.deps.Vault == nil {
		utils.WriteJSON(w, models.ErrorResponse{Error: "vault is disabled: no master secret configured"}, http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (h *Handler) vaultTokens(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if !h.vaultAvailable(w) {
		return
	}

	tokens, err := h.deps.Vault.ListTokens(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.vaultTokens").Msg("error listing vault tokens")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error listing vault tokens"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]any{"tokens": tokens}, http.StatusOK)
}

func (h *Handler) vaultResolve(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if !h.vaultAvailable(w) {
		return
	}

	var req struct {
		TokenID string `json:"tokenId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TokenID == "" {
		utils.WriteJSON(w, models.ErrorResponse{Error: "tokenId required"}, http.StatusBadRequest)
		return
	}

	value, err := h.deps.Vault.ResolveToken(r.Context(), req.TokenID)
	if errors.Is(err, store.ErrVaultTokenNotFound) {
		utils.WriteJSON(w, models.ErrorResponse{Error: "Token not found or expired"}, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Err(err).Str("func", "*Handler.vaultResolve").Msg("error resolving vault token")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error resolving vault token"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]any{
		"tokenId":       req.TokenID,
		"originalValue": value,
	}, http.StatusOK)
}

func (h *Handler) vaultPurge(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if !h.vaultAvailable(w) {
		return
	}

	purged, err := h.deps.Vault.PurgeExpired(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.vaultPurge").Msg("error purging vault")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error purging vault"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]any{"purged": purged}, http.StatusOK)
}
