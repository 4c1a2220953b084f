// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// Provider is a registered upstream AI provider. The API key is held
// encrypted at rest; only the gateway router decrypts it, and only for
// non-local providers.
type Provider struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	BaseURL         string    `json:"baseUrl"`
	APIKeyEncrypted string    `json:"-"`
	Enabled         bool      `json:"enabled"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Model is a chat model served by a Provider. (ProviderID, ModelName)
// is unique. Costs are dollars per 1000 tokens.
type Model struct {
	ID               int64   `json:"id"`
	ProviderID       int64   `json:"providerId"`
	ModelName        string  `json:"modelName"`
	DisplayName      string  `json:"displayName"`
	InputCostPer1K   float64 `json:"inputCostPer1k"`
	OutputCostPer1K  float64 `json:"outputCostPer1k"`
	MaxContextTokens int64   `json:"maxContextTokens"`
	Enabled          bool    `json:"enabled"`
}

// LimitType is the unit a credit limit is expressed in.
type LimitType string

const (
	LimitRequests LimitType = "requests"
	LimitTokens   LimitType = "tokens"
	LimitDollars  LimitType = "dollars"
)

// ResetPeriod is the schedule on which a credit limit replenishes.
type ResetPeriod string

const (
	ResetDaily   ResetPeriod = "daily"
	ResetWeekly  ResetPeriod = "weekly"
	ResetMonthly ResetPeriod = "monthly"
)

// CreditConfig is one consumption limit, scoped to a provider and
// optionally to a single model. UsedAmount resets to zero and ResetDate
// advances exactly once when the wall clock crosses ResetDate; the reset
// is evaluated lazily on the next check or consume.
type CreditConfig struct {
	ID          int64       `json:"id"`
	ProviderID  *int64      `json:"providerId"`
	ModelID     *int64      `json:"modelId"`
	LimitType   LimitType   `json:"limitType"`
	TotalLimit  float64     `json:"totalLimit"`
	UsedAmount  float64     `json:"usedAmount"`
	ResetPeriod ResetPeriod `json:"resetPeriod"`
	ResetDate   time.Time   `json:"resetDate"`
	HardLimit   bool        `json:"hardLimit"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// CreditCheck reports whether consumption may proceed. Remaining is the
// tightest margin across all applicable limits; a negative Remaining is
// reported as 0. Unlimited is true when no limit applies at all.
type CreditCheck struct {
	Allowed   bool      `json:"allowed"`
	Remaining float64   `json:"remaining"`
	LimitType LimitType `json:"limitType"`
	Unlimited bool      `json:"unlimited"`
	Message   string    `json:"message,omitempty"`
}

// UsageRecord is an append-only account of one successful upstream call.
type UsageRecord struct {
	ID           int64     `json:"id"`
	ProviderID   int64     `json:"providerId"`
	ModelName    string    `json:"modelName"`
	InputTokens  int64     `json:"inputTokens"`
	OutputTokens int64     `json:"outputTokens"`
	TotalTokens  int64     `json:"totalTokens"`
	Cost         float64   `json:"cost"`
	Timestamp    time.Time `json:"timestamp"`
}

// TokenUsage is the normalized token accounting extracted from a
// provider response, whatever shape the provider reported it in.
type TokenUsage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}

// RouteDecision is the smart router's choice for one request.
type RouteDecision struct {
	Target            string `json:"target"`
	ProviderURL       string `json:"providerUrl"`
	Model             string `json:"model"`
	RequiresRedaction bool   `json:"requiresRedaction"`
	IsLocal           bool   `json:"isLocal"`
}

// GatewayRouteDecision is a resolved registered provider+model pair with
// everything the dispatcher needs: the decrypted key (empty for local
// providers), the completion URL, and the credit verdict.
type GatewayRouteDecision struct {
	Provider     Provider
	Model        Model
	DecryptedKey string
	ProviderURL  string
	CreditCheck  CreditCheck
	IsLocal      bool
}

// VaultEntry is the persisted reversible-redaction record. The original
// value exists only as AEAD ciphertext; TokenID is unguessable.
type VaultEntry struct {
	TokenID    string     `json:"tokenId"`
	Ciphertext string     `json:"-"`
	IV         string     `json:"-"`
	AuthTag    string     `json:"-"`
	Type       string     `json:"type"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// LogEntry is one persisted terminal pipeline outcome. OriginalHash is a
// one-way hash of the raw prompt; the raw text itself is never stored.
type LogEntry struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Model          string    `json:"model"`
	Provider       string    `json:"provider"`
	OriginalHash   string    `json:"originalHash"`
	SanitizedText  string    `json:"sanitizedText"`
	SecretsFound   int       `json:"secretsFound"`
	PIIFound       int       `json:"piiFound"`
	FilesBlocked   int       `json:"filesBlocked"`
	RiskScore      int       `json:"riskScore"`
	Action         Action    `json:"action"`
	Reasons        []string  `json:"reasons"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
}

// LogFilter narrows a decision-log query. Zero values mean "no filter".
type LogFilter struct {
	Action Action
	Model  string
	Since  time.Time
	Until  time.Time
	Limit  uint64
}
