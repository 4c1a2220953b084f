// SPDX-License-Identifier: Apache-2.0

package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

const maxLogPageSize = 500

func (h *Handler) getUsage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.WriteJSON(w, models.ErrorResponse{Error: "since must be an RFC 3339 timestamp"}, http.StatusBadRequest)
			return
		}
		since = parsed
	}

	records, err := h.deps.Store.Usage.ListUsage(r.Context(), since)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getUsage").Msg("error listing usage")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error listing usage"}, http.StatusInternalServerError)
		return
	}

	var totalTokens int64
	var totalCost float64
	for _, rec := range records {
		totalTokens += rec.TotalTokens
		totalCost += rec.Cost
	}

	utils.WriteJSON(w, map[string]any{
		"items":       records,
		"totalTokens": totalTokens,
		"totalCost":   roundCost(totalCost),
	}, http.StatusOK)
}

func (h *Handler) getLogs(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	query := r.URL.Query()

	filter := models.LogFilter{
		Action: models.Action(query.Get("action")),
		Model:  query.Get("model"),
		Limit:  100,
	}
	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.ParseUint(raw, 10, 32); err == nil && limit > 0 {
			filter.Limit = min(limit, maxLogPageSize)
		}
	}
	if raw := query.Get("since"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.Since = parsed
		}
	}
	if raw := query.Get("until"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.Until = parsed
		}
	}

	items, err := h.deps.Store.Logs.QueryLogs(r.Context(), filter)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getLogs").Msg("error querying logs")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error querying logs"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]any{"items": items}, http.StatusOK)
}
