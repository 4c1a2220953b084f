// SPDX-License-Identifier: Apache-2.0

// Package gateway resolves a requested model to its registered provider,
// shapes provider-specific wire payloads, and normalizes heterogeneous
// provider responses back to one canonical completion format.
package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/promptsentry/prompt-sentry/internal/credit"
	"github.com/promptsentry/prompt-sentry/internal/crypto"
	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/store"
	"github.com/promptsentry/prompt-sentry/models"
)

// ErrNoRoute means the requested model is not served by any enabled
// registered provider, or its provider key cannot be decrypted.
var ErrNoRoute = errors.New("no gateway route for requested model")

// Router turns a requested model name into a dispatchable route: the
// provider, the completion URL, the decrypted key, and the credit
// verdict for this call.
type Router struct {
	providers store.ProviderRepository
	models    store.ModelRepository
	ledger    *credit.Ledger
	cipher    crypto.CipherService
	logger    *logger.Logger
}

// NewRouter constructs a gateway Router.
func NewRouter(providers store.ProviderRepository, modelRepo store.ModelRepository, ledger *credit.Ledger, cipher crypto.CipherService, log *logger.Logger) *Router {
	log.Debug().Msg("creating gateway router")
	return &Router{
		providers: providers,
		models:    modelRepo,
		ledger:    ledger,
		cipher:    cipher,
		logger:    log,
	}
}

// Provider family classification runs on the slug, so operators can
// register e.g. "anthropic-eu" or "my-ollama" and still get the right
// wire dialect.

func IsLocalProvider(slug string) bool {
	s := strings.ToLower(slug)
	return strings.Contains(s, "ollama") || s == "local"
}

func isAnthropicProvider(slug string) bool {
	s := strings.ToLower(slug)
	return strings.Contains(s, "anthropic") || strings.Contains(s, "claude")
}

func isGeminiProvider(slug string) bool {
	s := strings.ToLower(slug)
	return strings.Contains(s, "google") || strings.Contains(s, "gemini")
}

func buildProviderURL(provider models.Provider, model models.Model) string {
	base := strings.TrimRight(provider.BaseURL, "/")
	switch {
	case IsLocalProvider(provider.Slug):
		return base + "/api/chat"
	case isAnthropicProvider(provider.Slug):
		return base + "/v1/messages"
	case isGeminiProvider(provider.Slug):
		return base + "/v1beta/models/" + model.ModelName + ":generateContent"
	default:
		return base + "/v1/chat/completions"
	}
}

// Resolve maps a requested model name to a route. Local providers get an
// empty decrypted key; for everything else a key that fails to decrypt
// makes the route unusable and resolves to [ErrNoRoute].
func (r *Router) Resolve(ctx context.Context, requestedModel string) (models.GatewayRouteDecision, error) {
	log := logger.FromContext(ctx)

	model, err := r.models.FindModelByName(ctx, requestedModel)
	if errors.Is(err, store.ErrNotFound) {
		return models.GatewayRouteDecision{}, ErrNoRoute
	}
	if err != nil {
		return models.GatewayRouteDecision{}, err
	}

	provider, err := r.providers.GetProvider(ctx, model.ProviderID)
	if errors.Is(err, store.ErrNotFound) {
		return models.GatewayRouteDecision{}, ErrNoRoute
	}
	if err != nil {
		return models.GatewayRouteDecision{}, err
	}
	if !provider.Enabled || !model.Enabled {
		return models.GatewayRouteDecision{}, ErrNoRoute
	}

	check, err := r.ledger.Check(ctx, provider.ID, &model.ID)
	if err != nil {
		return models.GatewayRouteDecision{}, err
	}

	isLocal := IsLocalProvider(provider.Slug)
	var decryptedKey string
	if !isLocal {
		if r.cipher == nil {
			log.Warn().Str("provider", provider.Slug).Msg("no master secret configured, cloud provider key cannot be decrypted")
			return models.GatewayRouteDecision{}, ErrNoRoute
		}
		decryptedKey, err = r.cipher.Open(provider.APIKeyEncrypted)
		if err != nil {
			log.Err(err).Str("func", "*Router.Resolve").Str("provider", provider.Slug).Msg("error: provider key failed to decrypt")
			return models.GatewayRouteDecision{}, ErrNoRoute
		}
	}

	return models.GatewayRouteDecision{
		Provider:     provider,
		Model:        model,
		DecryptedKey: decryptedKey,
		ProviderURL:  buildProviderURL(provider, model),
		CreditCheck:  check,
		IsLocal:      isLocal,
	}, nil
}
