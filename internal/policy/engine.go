// SPDX-License-Identifier: Apache-2.0

// Package policy turns scan results into the single authoritative
// ALLOW/REDACT/BLOCK verdict, evaluates per-model path rules, and loads
// the policy configuration with per-project overrides.
package policy

import (
	"fmt"

	"github.com/promptsentry/prompt-sentry/models"
)

// severityWeight is each match's contribution to the aggregate risk
// score.
func severityWeight(sev models.Severity) int {
	switch sev {
	case models.SeverityCritical:
		return 40
	case models.SeverityHigh:
		return 20
	default:
		return 10
	}
}

// ThresholdScore maps a named severity threshold to its numeric risk
// cutoff.
func ThresholdScore(threshold models.Severity) int {
	switch threshold {
	case models.SeverityCritical:
		return 80
	case models.SeverityHigh:
		return 60
	default:
		return 40
	}
}

// CalculateRisk sums severity weights over all secret and PII matches,
// capped at 100.
func CalculateRisk(secretResult models.SecretScanResult, piiResult models.PIIScanResult) int {
	raw := 0
	for _, s := range secretResult.Secrets {
		raw += severityWeight(s.Severity)
	}
	for _, p := range piiResult.PII {
		raw += severityWeight(p.Severity)
	}

	if raw > 100 {
		raw = 100
	}
	return raw
}

// Decide combines scanner output and file-scope verdicts into the base
// policy decision. Per-model policy and prompt-injection blocks are
// applied by the pipeline afterwards, since they depend on inputs this
// function does not own.
//
// Algorithm, in order:
//  1. Any not-allowed file-scope result forces BLOCK at risk 100.
//  2. A critical secret or a private key forces BLOCK.
//  3. Enabled redact rules with matching findings, or risk crossing the
//     severity threshold, produce REDACT.
//  4. Otherwise ALLOW.
func Decide(secretResult models.SecretScanResult, piiResult models.PIIScanResult, policy *models.PolicyConfig, fileScopeResults []models.FileScopeResult) models.PolicyDecision {
	var reasons []string
	var filesBlocked []string
	for _, fsr := range fileScopeResults {
		if !fsr.Allowed {
			filesBlocked = append(filesBlocked, fsr.Path)
			reason := fsr.Reason
			if reason == "" {
				reason = fmt.Sprintf("File blocked: %s", fsr.Path)
			}
			reasons = append(reasons, reason)
		}
	}

	if len(filesBlocked) > 0 {
		return models.PolicyDecision{
			Action:       models.ActionBlock,
			Reasons:      reasons,
			RiskScore:    100,
			FilesBlocked: filesBlocked,
		}
	}

	hasCriticalSecret := false
	hasPrivateKey := false
	for _, s := range secretResult.Secrets {
		if s.Severity == models.SeverityCritical {
			hasCriticalSecret = true
		}
		if s.Type == models.SecretPrivateKey {
			hasPrivateKey = true
		}
	}

	riskScore := CalculateRisk(secretResult, piiResult)

	if hasCriticalSecret || hasPrivateKey {
		if hasPrivateKey {
			reasons = append(reasons, "Private key detected")
		}
		if hasCriticalSecret && !hasPrivateKey {
			reasons = append(reasons, "Critical secret detected")
		}
		return models.PolicyDecision{
			Action:       models.ActionBlock,
			Reasons:      reasons,
			RiskScore:    riskScore,
			FilesBlocked: filesBlocked,
		}
	}

	var redactReasons []string
	if policy.Rules.RedactEmails && hasPIIType(piiResult, models.PIIEmail) {
		redactReasons = append(redactReasons, "Email detected")
	}
	if policy.Rules.RedactPhone && hasPIIType(piiResult, models.PIIPhone) {
		redactReasons = append(redactReasons, "Phone number detected")
	}
	if policy.Rules.RedactJWT && hasSecretType(secretResult, models.SecretJWT) {
		redactReasons = append(redactReasons, "JWT detected")
	}
	if policy.Rules.RedactGenericAPIKeys && hasSecretType(secretResult, models.SecretGenericAPIKey) {
		redactReasons = append(redactReasons, "Generic API key detected")
	}
	if riskScore >= ThresholdScore(policy.SeverityThreshold) && (secretResult.HasSecrets || piiResult.HasPII) {
		redactReasons = append(redactReasons, fmt.Sprintf("Risk score exceeded threshold (%s)", policy.SeverityThreshold))
	}

	if len(redactReasons) > 0 {
		return models.PolicyDecision{
			Action:       models.ActionRedact,
			Reasons:      redactReasons,
			RiskScore:    riskScore,
			FilesBlocked: filesBlocked,
		}
	}

	return models.PolicyDecision{
		Action:       models.ActionAllow,
		Reasons:      []string{},
		RiskScore:    riskScore,
		FilesBlocked: filesBlocked,
	}
}

func hasSecretType(result models.SecretScanResult, t models.SecretType) bool {
	for _, s := range result.Secrets {
		if s.Type == t {
			return true
		}
	}
	return false
}

func hasPIIType(result models.PIIScanResult, t models.PIIType) bool {
	for _, p := range result.PII {
		if p.Type == t {
			return true
		}
	}
	return false
}
