// SPDX-License-Identifier: Apache-2.0

package models

// Severity ranks how dangerous a single detected match is.
// The policy engine converts severities into numeric risk weights.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// SecretType identifies the pattern family that produced a secret match.
type SecretType string

const (
	SecretAWSKey            SecretType = "AWS_KEY"
	SecretPrivateKey        SecretType = "PRIVATE_KEY"
	SecretJWT               SecretType = "JWT"
	SecretBearerToken       SecretType = "BEARER_TOKEN"
	SecretGenericAPIKey     SecretType = "GENERIC_API_KEY"
	SecretDatabaseURL       SecretType = "DATABASE_URL"
	SecretGitHubToken       SecretType = "GITHUB_TOKEN"
	SecretSlackToken        SecretType = "SLACK_TOKEN"
	SecretGoogleAPIKey      SecretType = "GOOGLE_API_KEY"
	SecretAzureKey          SecretType = "AZURE_KEY"
	SecretHardcodedPassword SecretType = "HARDCODED_PASSWORD"
	SecretEnvVariable       SecretType = "ENV_VARIABLE"
	SecretHighEntropy       SecretType = "HIGH_ENTROPY"
)

// PIIType identifies the pattern family that produced a PII match.
type PIIType string

const (
	PIIEmail      PIIType = "EMAIL"
	PIIPhone      PIIType = "PHONE"
	PIIAadhaar    PIIType = "AADHAAR"
	PIIPan        PIIType = "PAN"
	PIISSN        PIIType = "SSN"
	PIICreditCard PIIType = "CREDIT_CARD"
	PIIIPAddress  PIIType = "IP_ADDRESS"
)

// SecretMatch is a single secret finding at an exact byte offset.
// Severity is the only mutable field: the context adjuster may move it
// one step up or down, once per match. The raw Value never leaves the
// process — only counts and hashes are persisted.
type SecretMatch struct {
	Type     SecretType `json:"type"`
	Value    string     `json:"-"`
	Position int        `json:"position"`
	Length   int        `json:"length"`
	Severity Severity   `json:"severity"`
}

// PIIMatch is a single PII finding. Same lifecycle rules as SecretMatch.
type PIIMatch struct {
	Type     PIIType  `json:"type"`
	Value    string   `json:"-"`
	Position int      `json:"position"`
	Length   int      `json:"length"`
	Severity Severity `json:"severity"`
}

// SecretScanResult aggregates all secret matches found in one text.
// Entropy-scanner matches are merged into Secrets by the pipeline.
type SecretScanResult struct {
	HasSecrets bool
	Secrets    []SecretMatch
}

// PIIScanResult aggregates all PII matches found in one text.
type PIIScanResult struct {
	HasPII bool
	PII    []PIIMatch
}

// InjectionMatch is one weighted prompt-injection pattern hit.
type InjectionMatch struct {
	Pattern  string `json:"pattern"`
	Matched  string `json:"matched"`
	Position int    `json:"position"`
	Weight   int    `json:"weight"`
}

// InjectionResult is the verdict of the prompt-injection scanner.
// Score is the weight sum over all hits, capped at 100.
type InjectionResult struct {
	Score       int              `json:"score"`
	IsInjection bool             `json:"isInjection"`
	Matches     []InjectionMatch `json:"matches"`
}
