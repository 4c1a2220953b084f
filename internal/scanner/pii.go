// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"regexp"

	"github.com/promptsentry/prompt-sentry/models"
)

var cardDigits = regexp.MustCompile(`^\d{13,16}$`)

// luhnValid reports whether value, stripped of spaces and dashes, is a
// 13-16 digit run passing the Luhn checksum. Candidates failing the
// checksum are dropped silently — this keeps arbitrary long digit runs
// (order ids, timestamps) from being reported as card numbers.
func luhnValid(value string) bool {
	digits := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == ' ' || c == '-' {
			continue
		}
		digits = append(digits, c)
	}
	if !cardDigits.Match(digits) {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ScanPII applies the fixed PII pattern list to text. Credit-card-shaped
// candidates are reported only if they pass the Luhn checksum.
func ScanPII(text string) models.PIIScanResult {
	var pii []models.PIIMatch

	for _, pattern := range piiPatterns {
		for _, loc := range pattern.Regex.FindAllStringIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			if pattern.Type == models.PIICreditCard && !luhnValid(value) {
				continue
			}

			pii = append(pii, models.PIIMatch{
				Type:     pattern.Type,
				Value:    value,
				Position: loc[0],
				Length:   loc[1] - loc[0],
				Severity: pattern.Severity,
			})
		}
	}

	return models.PIIScanResult{
		HasPII: len(pii) > 0,
		PII:    pii,
	}
}
