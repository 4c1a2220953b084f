// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/promptsentry/prompt-sentry/internal/crypto"
	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

type providerRequest struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	BaseURL string `json:"baseUrl"`
	APIKey  string `json:"apiKey"`
	Enabled *bool  `json:"enabled"`
}

type modelRequest struct {
	ModelName        string  `json:"modelName"`
	DisplayName      string  `json:"displayName"`
	InputCostPer1K   float64 `json:"inputCostPer1k"`
	OutputCostPer1K  float64 `json:"outputCostPer1k"`
	MaxContextTokens int64   `json:"maxContextTokens"`
	Enabled          *bool   `json:"enabled"`
}

func enabledOrDefault(enabled *bool) bool {
	if enabled == nil {
		return true
	}
	return *enabled
}

// sealKey encrypts a plaintext provider key for storage. An empty key
// stays empty: local providers are registered without one. Without a
// master secret there is nothing safe to store a key under, so the
// request is refused rather than persisting plaintext.
func (h *Handler) sealKey(apiKey string) (string, error) {
	if apiKey == "" {
		return "", nil
	}
	if h.deps.Cipher == nil {
		return "", crypto.ErrNoMasterSecret
	}
	return h.deps.Cipher.Seal(apiKey)
}

func (h *Handler) createProvider(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.createProvider").Msg("Invalid JSON was passed")
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid provider payload"}, http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Slug == "" || req.BaseURL == "" {
		utils.WriteJSON(w, models.ErrorResponse{Error: "name, slug and baseUrl are required"}, http.StatusBadRequest)
		return
	}

	encrypted, err := h.sealKey(req.APIKey)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createProvider").Msg("error encrypting provider key")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error encrypting provider key"}, http.StatusInternalServerError)
		return
	}

	provider, err := h.deps.Store.Providers.CreateProvider(r.Context(), models.Provider{
		Name:            req.Name,
		Slug:            req.Slug,
		BaseURL:         req.BaseURL,
		APIKeyEncrypted: encrypted,
		Enabled:         enabledOrDefault(req.Enabled),
	})
	if err != nil {
		log.Err(err).Str("func", "*Handler.createProvider").Msg("error creating provider")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error creating provider"}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, provider, http.StatusCreated)
}

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	providers, err := h.deps.Store.Providers.ListProviders(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listProviders").Msg("error listing providers")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error listing providers"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]any{"providers": providers}, http.StatusOK)
}

func (h *Handler) getProvider(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, ok := idParam(r)
	if !ok {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid provider id"}, http.StatusBadRequest)
		return
	}

	provider, err := h.deps.Store.Providers.GetProvider(r.Context(), id)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getProvider").Msg("error getting provider")
		utils.WriteJSON(w, models.ErrorResponse{Error: "provider not found"}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, provider, http.StatusOK)
}

func (h *Handler) updateProvider(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, ok := idParam(r)
	if !ok {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid provider id"}, http.StatusBadRequest)
		return
	}

	existing, err := h.deps.Store.Providers.GetProvider(r.Context(), id)
	if err != nil {
		utils.WriteJSON(w, models.ErrorResponse{Error: "provider not found"}, statusFromError(err))
		return
	}

	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid provider payload"}, http.StatusBadRequest)
		return
	}

	encrypted, err := h.sealKey(req.APIKey)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateProvider").Msg("error encrypting provider key")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error encrypting provider key"}, http.StatusInternalServerError)
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Slug != "" {
		existing.Slug = req.Slug
	}
	if req.BaseURL != "" {
		existing.BaseURL = req.BaseURL
	}
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}
	existing.APIKeyEncrypted = encrypted

	provider, err := h.deps.Store.Providers.UpdateProvider(r.Context(), existing)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateProvider").Msg("error updating provider")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error updating provider"}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, provider, http.StatusOK)
}

func (h *Handler) deleteProvider(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, ok := idParam(r)
	if !ok {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid provider id"}, http.StatusBadRequest)
		return
	}

	if err := h.deps.Store.Providers.DeleteProvider(r.Context(), id); err != nil {
		log.Err(err).Str("func", "*Handler.deleteProvider").Msg("error deleting provider")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error deleting provider"}, statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createModel(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	providerID, ok := idParam(r)
	if !ok {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid provider id"}, http.StatusBadRequest)
		return
	}

	var req modelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ModelName == "" {
		utils.WriteJSON(w, models.ErrorResponse{Error: "modelName is required"}, http.StatusBadRequest)
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.ModelName
	}

	model, err := h.deps.Store.Models.CreateModel(r.Context(), models.Model{
		ProviderID:       providerID,
		ModelName:        req.ModelName,
		DisplayName:      req.DisplayName,
		InputCostPer1K:   req.InputCostPer1K,
		OutputCostPer1K:  req.OutputCostPer1K,
		MaxContextTokens: req.MaxContextTokens,
		Enabled:          enabledOrDefault(req.Enabled),
	})
	if err != nil {
		log.Err(err).Str("func", "*Handler.createModel").Msg("error creating model")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error creating model"}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, model, http.StatusCreated)
}

func (h *Handler) listModels(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	providerID, ok := idParam(r)
	if !ok {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid provider id"}, http.StatusBadRequest)
		return
	}

	list, err := h.deps.Store.Models.ListModels(r.Context(), providerID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listModels").Msg("error listing models")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error listing models"}, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]any{"models": list}, http.StatusOK)
}

func (h *Handler) updateModel(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, ok := idParam(r)
	if !ok {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid model id"}, http.StatusBadRequest)
		return
	}

	existing, err := h.deps.Store.Models.GetModel(r.Context(), id)
	if err != nil {
		utils.WriteJSON(w, models.ErrorResponse{Error: "model not found"}, statusFromError(err))
		return
	}

	var req modelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, models.ErrorResponse{Error: "Invalid model payload"}, http.StatusBadRequest)
		return
	}

	if req.ModelName != "" {
		existing.ModelName = req.ModelName
	}
	if req.DisplayName != "" {
		existing.DisplayName = req.DisplayName
	}
	existing.InputCostPer1K = req.InputCostPer1K
	existing.OutputCostPer1K = req.OutputCostPer1K
	existing.MaxContextTokens = req.MaxContextTokens
	existing.Enabled = enabledOrDefault(req.Enabled)

	model, err := h.deps.Store.Models.UpdateModel(r.Context(), existing)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateModel").Msg("error updating model")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error updating model"}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, model, http.StatusOK)
}

func (h *Handler) deleteModel(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, ok := idParam(r)
	if !ok {
		utils.WriteJSON(w, models.ErrorResponse{Error: "invalid model id"}, http.StatusBadRequest)
		return
	}

	if err := h.deps.Store.Models.DeleteModel(r.Context(), id); err != nil {
		log.Err(err).Str("func", "*Handler.deleteModel").Msg("error deleting model")
		utils.WriteJSON(w, models.ErrorResponse{Error: "error deleting model"}, statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
