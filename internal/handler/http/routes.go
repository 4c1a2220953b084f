// SPDX-License-Identifier: Apache-2.0

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Post("/v1/chat/completions", h.chatCompletions)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Post("/estimate", h.estimate)
		r.Post("/browser-scan", h.browserScan)

		r.Get("/policy", h.getPolicy)
		r.Put("/policy", h.putPolicy)

		r.Route("/providers", func(r chi.Router) {
			r.Get("/", h.listProviders)
			r.Post("/", h.createProvider)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getProvider)
				r.Put("/", h.updateProvider)
				r.Delete("/", h.deleteProvider)
				r.Get("/models", h.listModels)
				r.Post("/models", h.createModel)
			})
		})
		r.Route("/models/{id}", func(r chi.Router) {
			r.Put("/", h.updateModel)
			r.Delete("/", h.deleteModel)
		})

		r.Route("/credits", func(r chi.Router) {
			r.Get("/", h.listCredits)
			r.Post("/", h.createCredit)
			r.Put("/{id}", h.updateCredit)
			r.Delete("/{id}", h.deleteCredit)
		})

		r.Get("/usage", h.getUsage)
		r.Get("/logs", h.getLogs)

		r.Route("/vault", func(r chi.Router) {
			r.Get("/tokens", h.vaultTokens)
			r.Post("/resolve", h.vaultResolve)
			r.Post("/purge", h.vaultPurge)
		})

		r.Post("/simulate", h.simulate)
	})

	return router
}
