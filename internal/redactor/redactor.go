// SPDX-License-Identifier: Apache-2.0

// Package redactor replaces sensitive values detected by the scanners
// with placeholder tokens before text leaves the process. Two modes
// exist: irreversible substitution by type name, and reversible
// substitution backed by the encrypted token vault.
package redactor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/promptsentry/prompt-sentry/models"
)

// Replacement is one literal value to strip from a text, tagged with the
// pattern family that found it.
type Replacement struct {
	Type  string
	Value string
}

// FromScanResults flattens secret and PII matches into replacement
// inputs. The raw values stay in process memory only for the duration of
// the substitution.
func FromScanResults(secrets []models.SecretMatch, pii []models.PIIMatch) []Replacement {
	replacements := make([]Replacement, 0, len(secrets)+len(pii))
	for _, m := range secrets {
		replacements = append(replacements, Replacement{Type: string(m.Type), Value: m.Value})
	}
	for _, m := range pii {
		replacements = append(replacements, Replacement{Type: string(m.Type), Value: m.Value})
	}
	return replacements
}

var tokenTypeSanitizer = regexp.MustCompile(`[^A-Z0-9_]`)

func tokenForType(matchType string) string {
	normalized := tokenTypeSanitizer.ReplaceAllString(matchType, "_")
	return "[REDACTED_" + normalized + "]"
}

// Redact substitutes every matched value with a [REDACTED_<TYPE>] token.
// Longer values are replaced first so a shorter match that happens to be
// a substring of a longer one never fires inside the longer value's
// replacement. Empty values are skipped. The operation is literal
// substring replacement, not pattern matching, so running it over text
// that already contains only placeholder tokens changes nothing.
func Redact(text string, matches []Replacement) string {
	sorted := make([]Replacement, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Value) > len(sorted[j].Value)
	})

	redacted := text
	for _, match := range sorted {
		if match.Value == "" {
			continue
		}
		redacted = strings.ReplaceAll(redacted, match.Value, tokenForType(match.Type))
	}
	return redacted
}
