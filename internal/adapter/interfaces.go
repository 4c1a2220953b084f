// SPDX-License-Identifier: Apache-2.0

// Package adapter is the client side of the gateway's HTTP API. It is
// used by the command line client and by anything else that wants to
// talk to a running gateway without hand-writing requests.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrBlocked] for 403, [ErrCreditExhausted] for 429).
package adapter

import (
	"context"
	"time"

	"github.com/promptsentry/prompt-sentry/models"
)

// HealthStatus is the gateway's /api/health body.
type HealthStatus struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	StrictLocal bool   `json:"strict_local"`
}

// UsageSummary is the /api/usage body: the raw records plus the totals
// the gateway computed over them.
type UsageSummary struct {
	Items       []models.UsageRecord `json:"items"`
	TotalTokens int64                `json:"totalTokens"`
	TotalCost   float64              `json:"totalCost"`
}

// LogQuery narrows a /api/logs request. Zero values mean no filter; a
// zero Limit leaves paging to the server default.
type LogQuery struct {
	Action string
	Model  string
	Limit  int
	Since  time.Time
}

// GatewayClient defines transport-agnostic communication with a running
// gateway. Implementations are responsible for serialisation and for
// mapping transport-level errors to the sentinel values defined in this
// package.
type GatewayClient interface {
	// Health reports the gateway's liveness, version, and whether strict
	// local routing is in force.
	Health(ctx context.Context) (HealthStatus, error)

	// ScanText submits raw text for an interactive scan and returns the
	// verdict, including redacted text when the policy calls for it.
	ScanText(ctx context.Context, req models.BrowserScanRequest) (models.BrowserScanResponse, error)

	// Estimate runs the pre-flight pipeline without forwarding anything
	// upstream: scan verdict, token count, projected cost, and remaining
	// credit for the requested model.
	Estimate(ctx context.Context, req models.ChatCompletionRequest) (models.EstimateResponse, error)

	// Complete sends a chat completion through the firewall pipeline.
	// Returns [ErrBlocked] (wrapped) when the request is refused and
	// [ErrCreditExhausted] when the provider's budget is spent.
	Complete(ctx context.Context, req models.ChatCompletionRequest) (models.AnnotatedCompletion, error)

	// Usage fetches usage records, optionally restricted to those at or
	// after since.
	Usage(ctx context.Context, since time.Time) (UsageSummary, error)

	// Logs fetches firewall decision logs matching the query, newest
	// first.
	Logs(ctx context.Context, query LogQuery) ([]models.LogEntry, error)

	// VaultTokens lists stored redaction tokens. Values are never
	// included; use ResolveToken for that.
	VaultTokens(ctx context.Context) ([]models.VaultEntry, error)

	// ResolveToken exchanges a redaction token for the original value.
	// Returns [ErrNotFound] (wrapped) for unknown or expired tokens and
	// [ErrVaultUnavailable] when the gateway runs without a master secret.
	ResolveToken(ctx context.Context, tokenID string) (string, error)

	// Simulate runs the leak simulator over targetDir on the gateway host
	// and returns the exposure report.
	Simulate(ctx context.Context, targetDir string) (models.LeakSimulationReport, error)
}
