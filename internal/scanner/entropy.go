// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"math"
	"regexp"
	"strings"

	"github.com/promptsentry/prompt-sentry/models"
)

// Entropy detection exists because fixed patterns miss provider-specific
// or novel secret formats. The keyword-proximity gate keeps the
// false-positive rate tractable on ordinary prose and code.
const (
	entropyThreshold     = 4.0
	entropyHighThreshold = 5.0
	minTokenLength       = 20
	maxTokenLength       = 200
	keywordWindowBefore  = 60
	keywordWindowAfter   = 10
)

var contextKeywords = []string{
	"key", "secret", "token", "password", "passwd", "pwd", "credential",
	"auth", "api_key", "apikey", "access_key", "private", "signing",
}

var (
	entropyTokenPattern = regexp.MustCompile(`[A-Za-z0-9+/\-_]{20,200}`)
	alphabeticOnly      = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// shannonEntropy computes bits per character over the byte distribution
// of s.
func shannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}

	entropy := 0.0
	length := float64(len(s))
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// hasNearbyKeyword reports whether a security-relevant keyword appears
// within the configured window around position.
func hasNearbyKeyword(text string, position int) bool {
	start := position - keywordWindowBefore
	if start < 0 {
		start = 0
	}
	end := position + keywordWindowAfter
	if end > len(text) {
		end = len(text)
	}

	window := strings.ToLower(text[start:end])
	for _, kw := range contextKeywords {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

// ScanEntropy reports high-entropy tokens near security keywords as
// HIGH_ENTROPY secret matches. A candidate is reported only if its
// Shannon entropy is at least 4.0 bits/char, a keyword appears within 60
// characters before or 10 after, and the token is not purely alphabetic.
// Severity is High above 5.0 bits, Medium otherwise.
func ScanEntropy(text string) []models.SecretMatch {
	var matches []models.SecretMatch

	for _, loc := range entropyTokenPattern.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		if len(candidate) < minTokenLength || len(candidate) > maxTokenLength {
			continue
		}

		entropy := shannonEntropy(candidate)
		if entropy < entropyThreshold {
			continue
		}

		if !hasNearbyKeyword(text, loc[0]) {
			continue
		}

		if alphabeticOnly.MatchString(candidate) {
			continue
		}

		severity := models.SeverityMedium
		if entropy > entropyHighThreshold {
			severity = models.SeverityHigh
		}

		matches = append(matches, models.SecretMatch{
			Type:     models.SecretHighEntropy,
			Value:    candidate,
			Position: loc[0],
			Length:   len(candidate),
			Severity: severity,
		})
	}

	return matches
}
