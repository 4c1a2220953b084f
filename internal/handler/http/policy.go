// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

func (h *Handler) getPolicy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	cfg, err := h.deps.Policies.LoadGlobal()
	if err != nil {
		log.Err(err).Str("func", "*Handler.getPolicy").Msg("error loading policy")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error loading policy"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, cfg, http.StatusOK)
}

func (h *Handler) putPolicy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var cfg models.PolicyConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		log.Err(err).Str("func", "*Handler.putPolicy").Msg("Invalid JSON was passed")
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid policy payload"}, http.StatusBadRequest)
		return
	}

	if err := h.deps.Policies.Save(&cfg); err != nil {
		log.Err(err).Str("func", "*Handler.putPolicy").Msg("error saving policy")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error saving policy"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, cfg, http.StatusOK)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]any{
		"status":       "ok",
		"version":      h.deps.Version,
		"strict_local": h.deps.StrictLocalEnv || h.deps.Policies.StrictLocal(false),
	}, http.StatusOK)
}
