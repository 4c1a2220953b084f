// SPDX-License-Identifier: Apache-2.0

package scanner

import "github.com/promptsentry/prompt-sentry/models"

// ScanSecrets applies the full ordered secret pattern list to text and
// returns every match at its exact byte offset. Matches from different
// pattern types may overlap; no cross-type deduplication happens here —
// the policy layer reasons about aggregate risk, not uniqueness.
func ScanSecrets(text string) models.SecretScanResult {
	var secrets []models.SecretMatch

	for _, pattern := range secretPatterns {
		for _, loc := range pattern.Regex.FindAllStringIndex(text, -1) {
			secrets = append(secrets, models.SecretMatch{
				Type:     pattern.Type,
				Value:    text[loc[0]:loc[1]],
				Position: loc[0],
				Length:   loc[1] - loc[0],
				Severity: pattern.Severity,
			})
		}
	}

	return models.SecretScanResult{
		HasSecrets: len(secrets) > 0,
		Secrets:    secrets,
	}
}
