// SPDX-License-Identifier: Apache-2.0

package models

// Action is the terminal verdict of the policy pipeline for one request.
type Action string

const (
	ActionAllow  Action = "ALLOW"
	ActionRedact Action = "REDACT"
	ActionBlock  Action = "BLOCK"
)

// PolicyRules toggles individual detection rules. Disabled redact rules
// mean the corresponding finding no longer triggers REDACT by itself,
// though it still contributes to the aggregate risk score.
type PolicyRules struct {
	BlockPrivateKeys     bool `json:"block_private_keys"`
	BlockAWSKeys         bool `json:"block_aws_keys"`
	BlockDBURLs          bool `json:"block_db_urls"`
	BlockGitHubTokens    bool `json:"block_github_tokens"`
	RedactEmails         bool `json:"redact_emails"`
	RedactPhone          bool `json:"redact_phone"`
	RedactJWT            bool `json:"redact_jwt"`
	RedactGenericAPIKeys bool `json:"redact_generic_api_keys"`
	AllowSourceCode      bool `json:"allow_source_code"`
	LogAllRequests       bool `json:"log_all_requests"`
}

// FileScopeMode selects how the allow/block lists are interpreted.
type FileScopeMode string

const (
	FileScopeBlocklist FileScopeMode = "blocklist"
	FileScopeAllowlist FileScopeMode = "allowlist"
)

// FileScopeConfig bounds which files a request may reference and how big
// they may be. Any violation forces BLOCK regardless of scan results.
type FileScopeConfig struct {
	Mode          FileScopeMode `json:"mode"`
	Blocklist     []string      `json:"blocklist"`
	Allowlist     []string      `json:"allowlist"`
	MaxFileSizeKB int64         `json:"max_file_size_kb"`
	ScanOnOpen    bool          `json:"scan_on_open"`
	ScanOnSend    bool          `json:"scan_on_send"`
}

// FileScopeResult is the verdict for one referenced file path.
type FileScopeResult struct {
	Allowed bool   `json:"allowed"`
	Path    string `json:"path"`
	Reason  string `json:"reason,omitempty"`
}

// SmartRoute is one ordered risk-routing rule. Condition is either the
// literal "default" or "risk_score <op> <int>".
type SmartRoute struct {
	Condition string `json:"condition"`
	Target    string `json:"target"`
}

// Smart-routing targets.
const (
	TargetLocalLLM      = "local_llm"
	TargetCloudRedacted = "cloud_redacted"
	TargetCloudDirect   = "cloud_direct"
)

// LocalLLMConfig describes the local fallback model used by the smart
// router and by strict-local mode.
type LocalLLMConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
}

// SmartRoutingConfig is the ordered first-match-wins rule list.
type SmartRoutingConfig struct {
	Enabled  bool           `json:"enabled"`
	Routes   []SmartRoute   `json:"routes"`
	LocalLLM LocalLLMConfig `json:"local_llm"`
}

// ModelPolicyRule restricts which file paths a given model may see.
// A non-empty AllowedPaths list is exclusionary: paths matching none of
// its globs are blocked.
type ModelPolicyRule struct {
	AllowedPaths []string `json:"allowed_paths"`
	BlockedPaths []string `json:"blocked_paths"`
}

// ModelPolicyResult is the evaluator's verdict for one model + path set.
type ModelPolicyResult struct {
	Allowed      bool     `json:"allowed"`
	BlockedFiles []string `json:"blockedFiles"`
	Reason       string   `json:"reason,omitempty"`
}

// InjectionConfig tunes the prompt-injection scanner. A nil config means
// enabled with the default threshold.
type InjectionConfig struct {
	Enabled   *bool `json:"enabled,omitempty"`
	Threshold int   `json:"threshold,omitempty"`
}

// AuditConfig enables the optional BlindMI privacy audit on the
// pre-flight estimate path. It never gates the main verdict.
type AuditConfig struct {
	Enabled              bool    `json:"enabled"`
	UseCodeSearch        bool    `json:"use_code_search"`
	PrivacyRiskThreshold float64 `json:"privacy_risk_threshold,omitempty"`
}

// PolicyConfig is the full hot-reloadable policy. It is loaded per
// request (global file plus optional project override) and passed by
// value through the pipeline; nothing mutates a shared instance.
type PolicyConfig struct {
	Version           string                     `json:"version"`
	Rules             PolicyRules                `json:"rules"`
	FileScope         FileScopeConfig            `json:"file_scope"`
	BlockedPaths      []string                   `json:"blocked_paths"`
	SeverityThreshold Severity                   `json:"severity_threshold"`
	StrictLocal       bool                       `json:"strict_local,omitempty"`
	SmartRouting      *SmartRoutingConfig        `json:"smart_routing,omitempty"`
	ModelPolicies     map[string]ModelPolicyRule `json:"model_policies,omitempty"`
	PromptInjection   *InjectionConfig           `json:"prompt_injection,omitempty"`
	Audit             *AuditConfig               `json:"audit,omitempty"`
}

// PolicyDecision is the single authoritative verdict threaded through
// the rest of the pipeline. Action is BLOCK whenever FilesBlocked is
// non-empty, a critical secret or private key was found, the injection
// score crossed its threshold, or a model policy rejected a file.
type PolicyDecision struct {
	Action       Action   `json:"action"`
	Reasons      []string `json:"reasons"`
	RiskScore    int      `json:"riskScore"`
	FilesBlocked []string `json:"filesBlocked"`
}
