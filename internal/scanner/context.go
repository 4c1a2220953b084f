// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"regexp"
	"strings"

	"github.com/promptsentry/prompt-sentry/models"
)

// Adjustment records one severity change made by the context adjuster,
// with a human-readable reason surfaced to the final decision's reason
// list for audit transparency.
type Adjustment struct {
	MatchType        string
	OriginalSeverity models.Severity
	AdjustedSeverity models.Severity
	Reason           string
}

var testPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)tests?/`),
	regexp.MustCompile(`(?i)__tests__/`),
	regexp.MustCompile(`(?i)\.test\.\w+$`),
	regexp.MustCompile(`(?i)\.spec\.\w+$`),
	regexp.MustCompile(`(?i)fixtures?/`),
	regexp.MustCompile(`(?i)mocks?/`),
	regexp.MustCompile(`(?i)examples?/`),
	regexp.MustCompile(`(?i)samples?/`),
	regexp.MustCompile(`(?i)demo/`),
}

var sensitivePathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)src/(?:auth|payment|billing|security)/`),
	regexp.MustCompile(`(?i)config/`),
	regexp.MustCompile(`(?i)\.env`),
	regexp.MustCompile(`(?i)secrets?/`),
	regexp.MustCompile(`(?i)credentials?/`),
	regexp.MustCompile(`(?i)production`),
	regexp.MustCompile(`(?i)deploy`),
}

// placeholderValues are substrings that mark a matched value as a
// throwaway: docs samples, scaffold defaults, TODO markers.
var placeholderValues = []string{
	"test123", "password", "secret", "changeme", "example",
	"placeholder", "dummy", "sample", "foobar", "abc123",
	"your_key_here", "xxx", "todo", "fixme", "replace_me",
}

// AdjustSeverity post-processes one match, applying at most one rule in
// order: placeholder value (downgrade), test/fixture path (downgrade),
// sensitive path (upgrade, unless already critical). Returns nil when no
// rule applies.
func AdjustSeverity(matchValue, matchType string, severity models.Severity, filePaths []string) *Adjustment {
	lowerValue := strings.ToLower(matchValue)
	for _, p := range placeholderValues {
		if strings.Contains(lowerValue, p) {
			return &Adjustment{
				MatchType:        matchType,
				OriginalSeverity: severity,
				AdjustedSeverity: downgrade(severity),
				Reason:           "Appears to be a placeholder/test value",
			}
		}
	}

	if len(filePaths) == 0 {
		return nil
	}

	if anyPathMatches(filePaths, testPathPatterns) {
		return &Adjustment{
			MatchType:        matchType,
			OriginalSeverity: severity,
			AdjustedSeverity: downgrade(severity),
			Reason:           "Detected in test/fixture file",
		}
	}

	if anyPathMatches(filePaths, sensitivePathPatterns) && severity != models.SeverityCritical {
		return &Adjustment{
			MatchType:        matchType,
			OriginalSeverity: severity,
			AdjustedSeverity: upgrade(severity),
			Reason:           "Detected in sensitive path (auth/payment/config)",
		}
	}

	return nil
}

func anyPathMatches(paths []string, patterns []*regexp.Regexp) bool {
	for _, path := range paths {
		for _, pattern := range patterns {
			if pattern.MatchString(path) {
				return true
			}
		}
	}
	return false
}

func downgrade(sev models.Severity) models.Severity {
	switch sev {
	case models.SeverityCritical:
		return models.SeverityHigh
	case models.SeverityHigh:
		return models.SeverityMedium
	default:
		return models.SeverityMedium
	}
}

func upgrade(sev models.Severity) models.Severity {
	switch sev {
	case models.SeverityMedium:
		return models.SeverityHigh
	case models.SeverityHigh:
		return models.SeverityCritical
	default:
		return models.SeverityCritical
	}
}
