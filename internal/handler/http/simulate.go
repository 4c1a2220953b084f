// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

type simulateRequest struct {
	TargetDir     string `json:"targetDir"`
	MaxFileSizeKB *int64 `json:"maxFileSizeKb"`
}

// simulate runs the leak simulator over a directory using the current
// file-scope policy and reports what an attacker could learn.
func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid payload"}, http.StatusBadRequest)
		return
	}

	cfg, err := h.deps.Policies.LoadGlobal()
	if err != nil {
		log.Err(err).Str("func", "*Handler.simulate").Msg("error loading policy")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error loading policy"}, http.StatusInternalServerError)
		return
	}

	target := req.TargetDir
	if target == "" {
		target = "."
	}
	target, err = filepath.Abs(target)
	if err != nil {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid targetDir"}, http.StatusBadRequest)
		return
	}

	maxSize := cfg.FileScope.MaxFileSizeKB
	if req.MaxFileSizeKB != nil {
		maxSize = *req.MaxFileSizeKB
	}

	report, err := h.deps.Simulator.Run(target, cfg.FileScope, maxSize)
	if err != nil {
		log.Err(err).Str("func", "*Handler.simulate").Msg("error running leak simulation")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error running leak simulation"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, report, http.StatusOK)
}
