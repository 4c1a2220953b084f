// SPDX-License-Identifier: Apache-2.0

// Package scanner contains the deterministic detection engines of the
// firewall: typed secret patterns, PII patterns with checksum validation,
// entropy-based detection of unknown secret formats, weighted
// prompt-injection scoring, and context-aware severity adjustment.
//
// All scanners are pure functions of their input text and are safe to run
// concurrently across requests.
package scanner

import (
	"regexp"

	"github.com/promptsentry/prompt-sentry/models"
)

// SecretPattern binds one compiled regex to a secret type and the
// severity assigned to its matches.
type SecretPattern struct {
	Type     models.SecretType
	Regex    *regexp.Regexp
	Severity models.Severity
}

// PIIPattern binds one compiled regex to a PII type and severity.
type PIIPattern struct {
	Type     models.PIIType
	Regex    *regexp.Regexp
	Severity models.Severity
}

// secretPatterns is the ordered, fixed pattern list applied by the
// secret scanner. Order is stable so match output is deterministic;
// overlapping matches from different types are all retained.
var secretPatterns = []SecretPattern{
	{Type: models.SecretAWSKey, Regex: regexp.MustCompile(`AKIA[0-9A-Z]{16}`), Severity: models.SeverityCritical},
	{Type: models.SecretPrivateKey, Regex: regexp.MustCompile(`-----BEGIN (?:RSA|EC|DSA|PRIVATE) KEY-----`), Severity: models.SeverityCritical},
	{Type: models.SecretJWT, Regex: regexp.MustCompile(`eyJ[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+`), Severity: models.SeverityHigh},
	{Type: models.SecretBearerToken, Regex: regexp.MustCompile(`Bearer\s[A-Za-z0-9\-_.]{20,}`), Severity: models.SeverityHigh},
	{Type: models.SecretGenericAPIKey, Regex: regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*['"]?[A-Za-z0-9\-_]{20,}`), Severity: models.SeverityHigh},
	{Type: models.SecretDatabaseURL, Regex: regexp.MustCompile(`(?i)(postgres|mysql|mongodb)://[^\s]+`), Severity: models.SeverityCritical},
	{Type: models.SecretGitHubToken, Regex: regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`), Severity: models.SeverityCritical},
	{Type: models.SecretSlackToken, Regex: regexp.MustCompile(`xox[baprs]-[A-Za-z0-9-]+`), Severity: models.SeverityHigh},
	{Type: models.SecretGoogleAPIKey, Regex: regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`), Severity: models.SeverityHigh},
	{Type: models.SecretAzureKey, Regex: regexp.MustCompile(`[A-Za-z0-9+/]{86}==`), Severity: models.SeverityCritical},
	{Type: models.SecretHardcodedPassword, Regex: regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"][^'"]{6,}['"]`), Severity: models.SeverityHigh},
	{Type: models.SecretEnvVariable, Regex: regexp.MustCompile(`[A-Z_]{3,}=\S{8,}`), Severity: models.SeverityMedium},
}

// piiPatterns is the fixed PII pattern list. Credit-card candidates must
// additionally pass a Luhn checksum before being reported.
var piiPatterns = []PIIPattern{
	{Type: models.PIIEmail, Regex: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), Severity: models.SeverityMedium},
	{Type: models.PIIPhone, Regex: regexp.MustCompile(`\+?[0-9]{10,13}`), Severity: models.SeverityMedium},
	{Type: models.PIIAadhaar, Regex: regexp.MustCompile(`[2-9][0-9]{3}\s[0-9]{4}\s[0-9]{4}`), Severity: models.SeverityHigh},
	{Type: models.PIIPan, Regex: regexp.MustCompile(`[A-Z]{5}[0-9]{4}[A-Z]`), Severity: models.SeverityHigh},
	{Type: models.PIISSN, Regex: regexp.MustCompile(`\d{3}-\d{2}-\d{4}`), Severity: models.SeverityHigh},
	{Type: models.PIICreditCard, Regex: regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`), Severity: models.SeverityHigh},
	{Type: models.PIIIPAddress, Regex: regexp.MustCompile(`\b\d{1,3}(?:\.\d{1,3}){3}\b`), Severity: models.SeverityMedium},
}
