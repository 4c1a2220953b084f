// SPDX-License-Identifier: Apache-2.0

package models

// ChatMessage is the canonical message shape accepted on the wire and
// passed to provider payload builders.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestMetadata is the optional metadata block of a completion request.
type RequestMetadata struct {
	FilePaths   []string `json:"filePaths,omitempty"`
	ProjectRoot string   `json:"projectRoot,omitempty"`
}

// ChatCompletionRequest is the main firewall endpoint payload.
type ChatCompletionRequest struct {
	Model    string           `json:"model"`
	Messages []ChatMessage    `json:"messages"`
	Stream   bool             `json:"stream,omitempty"`
	Metadata *RequestMetadata `json:"metadata,omitempty"`
}

// CompletionChoice and CompletionResponse are the canonical normalized
// provider response shape, whatever family the upstream belongs to.
type CompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type CompletionUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   CompletionUsage    `json:"usage"`
}

// FirewallMeta is the `_firewall` annotation attached to every
// non-blocked completion response. Token and cost fields are omitted for
// streamed responses, which carry no usage accounting.
type FirewallMeta struct {
	Action          Action   `json:"action"`
	SecretsFound    int      `json:"secrets_found"`
	PIIFound        int      `json:"pii_found"`
	FilesBlocked    int      `json:"files_blocked"`
	RiskScore       int      `json:"risk_score"`
	RoutedTo        string   `json:"routed_to"`
	ModelUsed       string   `json:"model_used"`
	TokensUsed      *int64   `json:"tokens_used,omitempty"`
	CostEstimate    *float64 `json:"cost_estimate,omitempty"`
	CreditRemaining *float64 `json:"credit_remaining,omitempty"`
}

// AnnotatedCompletion is the normalized completion body plus the
// firewall metadata block.
type AnnotatedCompletion struct {
	CompletionResponse
	Firewall FirewallMeta `json:"_firewall"`
}

// Error codes returned by the firewall endpoints.
const (
	CodeFirewallBlocked     = "FIREWALL_BLOCKED"
	CodeFileScopeBlocked    = "FILE_SCOPE_BLOCKED"
	CodeModelPolicyBlocked  = "MODEL_POLICY_BLOCKED"
	CodeStrictLocalEnforced = "STRICT_LOCAL_ENFORCED"
	CodeCreditExhausted     = "CREDIT_EXHAUSTED"
)

// ErrorResponse is the structured error body for 4xx/5xx replies.
type ErrorResponse struct {
	Error        string   `json:"error"`
	Code         string   `json:"code,omitempty"`
	Reasons      []string `json:"reasons,omitempty"`
	RiskScore    *int     `json:"risk_score,omitempty"`
	FilesBlocked []string `json:"files_blocked,omitempty"`
	Remaining    *float64 `json:"remaining,omitempty"`
	LimitType    string   `json:"limit_type,omitempty"`
	Details      any      `json:"details,omitempty"`
}

// BrowserScanRequest is the interactive scan payload: raw text from a
// browser extension or editor selection, no model registration needed.
type BrowserScanRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	URL    string `json:"url,omitempty"`
}

// ScannedMatch is the positional finding shape exposed on the wire.
// Values are never echoed back, only types and offsets.
type ScannedMatch struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Position int      `json:"position"`
	Length   int      `json:"length"`
}

// BrowserScanResponse is the interactive scan verdict.
type BrowserScanResponse struct {
	Action       Action         `json:"action"`
	RiskScore    int            `json:"riskScore"`
	Reasons      []string       `json:"reasons"`
	SecretsFound int            `json:"secretsFound"`
	PIIFound     int            `json:"piiFound"`
	Secrets      []ScannedMatch `json:"secrets"`
	PII          []ScannedMatch `json:"pii"`
	RedactedText string         `json:"redactedText,omitempty"`
	Source       string         `json:"source"`
	URL          string         `json:"url"`
	Timestamp    int64          `json:"timestamp"`
}

// EstimateResponse is the pre-flight verdict plus cost projection.
// CreditRemaining is -1 when no limit applies.
type EstimateResponse struct {
	EstimatedInputTokens int64              `json:"estimatedInputTokens"`
	EstimatedCost        float64            `json:"estimatedCost"`
	CreditRemaining      float64            `json:"creditRemaining"`
	CreditLimitType      string             `json:"creditLimitType"`
	Scan                 EstimateScan       `json:"scan"`
	ModelPolicyBlocked   *ModelPolicyResult `json:"modelPolicyBlocked,omitempty"`
	PromptInjection      *InjectionResult   `json:"promptInjection,omitempty"`
	PrivacyRisk          *PrivacyRisk       `json:"privacyRisk,omitempty"`
	Model                EstimateModel      `json:"model"`
}

type EstimateScan struct {
	Action       Action   `json:"action"`
	SecretsFound int      `json:"secretsFound"`
	PIIFound     int      `json:"piiFound"`
	FilesBlocked []string `json:"filesBlocked"`
	RiskScore    int      `json:"riskScore"`
	Reasons      []string `json:"reasons"`
}

type EstimateModel struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Provider    string `json:"provider"`
	Registered  bool   `json:"registered"`
}

// PrivacyRisk is the optional audit block of an estimate response.
type PrivacyRisk struct {
	BlindMIScore     float64 `json:"blindMiScore"`
	CodeSearchHits   int     `json:"codeSearchHits"`
	PrivacyRiskScore float64 `json:"privacyRiskScore"`
}
