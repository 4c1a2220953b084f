// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"github.com/promptsentry/prompt-sentry/internal/handler/http"
	"github.com/promptsentry/prompt-sentry/internal/logger"
)

// Handlers aggregates the transport handlers the server runs. The
// gateway speaks only HTTP.
type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(deps http.Deps, logger *logger.Logger) *Handlers {
	logger.Info().Msg("creating new handlers...")

	return &Handlers{
		HTTP: http.NewHandler(deps, logger),
	}
}
