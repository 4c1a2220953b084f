// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/credit"
	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

type creditRequest struct {
	ProviderID  *int64             `json:"providerId"`
	ModelID     *int64             `json:"modelId"`
	LimitType   models.LimitType   `json:"limitType"`
	TotalLimit  float64            `json:"totalLimit"`
	ResetPeriod models.ResetPeriod `json:"resetPeriod"`
	HardLimit   bool               `json:"hardLimit"`
}

func validLimitType(t models.LimitType) bool {
	return t == models.LimitRequests || t == models.LimitTokens || t == models.LimitDollars
}

func validResetPeriod(p models.ResetPeriod) bool {
	return p == models.ResetDaily || p == models.ResetWeekly || p == models.ResetMonthly
}

func (h *Handler) createCredit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid credit payload"}, http.StatusBadRequest)
		return
	}
	if !validLimitType(req.LimitType) || !validResetPeriod(req.ResetPeriod) || req.TotalLimit <= 0 {
		utils.WriteJSON(w, models.ErrorResponse{Error: "limitType, resetPeriod and a positive totalLimit are required"}, http.StatusBadRequest)
		return
	}

	created, err := h.deps.Store.Credits.CreateCredit(r.Context(), models.CreditConfig{
		ProviderID:  req.ProviderID,
		ModelID:     req.ModelID,
		LimitType:   req.LimitType,
		TotalLimit:  req.TotalLimit,
		ResetPeriod: req.ResetPeriod,
		ResetDate:   credit.NextReset(req.ResetPeriod, time.Now()),
		HardLimit:   req.HardLimit,
	})
	if err != nil {
		log.Err(err).Str("func", "*Handler.createCredit").Msg("error creating credit limit")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error creating credit limit"}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) listCredits(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	credits, err := h.deps.Store.Credits.ListCredits(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listCredits").Msg("error listing credit limits")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error listing credit limits"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]any{"credits": credits}, http.StatusOK)
}

func (h *Handler) updateCredit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, ok := idParam(r)
	if !ok {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid credit id"}, http.StatusBadRequest)
		return
	}

	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid credit payload"}, http.StatusBadRequest)
		return
	}
	if !validLimitType(req.LimitType) || !validResetPeriod(req.ResetPeriod) || req.TotalLimit <= 0 {
		utils.WriteJSON(w, models.ErrorResponse{Error: "limitType, resetPeriod and a positive totalLimit are required"}, http.StatusBadRequest)
		return
	}

	updated, err := h.deps.Store.Credits.UpdateCredit(r.Context(), models.CreditConfig{
		ID:          id,
		ProviderID:  req.ProviderID,
		ModelID:     req.ModelID,
		LimitType:   req.LimitType,
		TotalLimit:  req.TotalLimit,
		ResetPeriod: req.ResetPeriod,
		ResetDate:   credit.NextReset(req.ResetPeriod, time.Now()),
		HardLimit:   req.HardLimit,
	})
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateCredit").Msg("error updating credit limit")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error updating credit limit"}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) deleteCredit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, ok := idParam(r)
	if !ok {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid credit id"}, http.StatusBadRequest)
		return
	}

	if err := h.deps.Store.Credits.DeleteCredit(r.Context(), id); err != nil {
		log.Err(err).Str("func", "*Handler.deleteCredit").Msg("error deleting credit limit")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error deleting credit limit"}, statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
