// SPDX-License-Identifier: Apache-2.0

package http

import (
	"time"

	"github.com/promptsentry/prompt-sentry/internal/audit"
	"github.com/promptsentry/prompt-sentry/internal/credit"
	"github.com/promptsentry/prompt-sentry/internal/crypto"
	"github.com/promptsentry/prompt-sentry/internal/firewall"
	"github.com/promptsentry/prompt-sentry/internal/gateway"
	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/policy"
	"github.com/promptsentry/prompt-sentry/internal/redactor"
	"github.com/promptsentry/prompt-sentry/internal/router"
	"github.com/promptsentry/prompt-sentry/internal/simulator"
	"github.com/promptsentry/prompt-sentry/internal/store"
)

// Deps bundles every service the HTTP surface exposes. Vault may be nil
// when no master secret is configured; the vault endpoints then answer
// with 503.
type Deps struct {
	Firewall   *firewall.Service
	Gateway    *gateway.Router
	Dispatcher *gateway.Dispatcher
	Smart      *router.SmartRouter
	Ledger     *credit.Ledger
	Vault      *redactor.VaultService
	Analyzer   *audit.Analyzer
	Simulator  *simulator.Simulator
	Policies   *policy.Loader
	Cipher     crypto.CipherService
	Store      *store.Storages

	Version        string
	VaultTTL       time.Duration
	StrictLocalEnv bool
}

type Handler struct {
	deps Deps

	logger *logger.Logger
}

func NewHandler(deps Deps, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		deps:   deps,
		logger: logger,
	}
}
