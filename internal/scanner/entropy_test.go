package scanner

import (
	"testing"

	"github.com/promptsentry/prompt-sentry/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShannonEntropy(t *testing.T) {
	assert.Equal(t, 0.0, shannonEntropy(""))
	assert.Equal(t, 0.0, shannonEntropy("aaaaaaaa"))
	// Two symbols in equal proportion carry exactly one bit each.
	assert.InDelta(t, 1.0, shannonEntropy("abababab"), 0.0001)
}

func TestScanEntropy_TokenNearKeyword(t *testing.T) {
	matches := ScanEntropy(`api_secret = "x9K2mP5vQ8wL3nR7tY1zB4cD6fG0hJ"`)

	require.Len(t, matches, 1)
	assert.Equal(t, models.SecretHighEntropy, matches[0].Type)
	assert.Equal(t, "x9K2mP5vQ8wL3nR7tY1zB4cD6fG0hJ", matches[0].Value)
	assert.Equal(t, models.SeverityMedium, matches[0].Severity)
}

func TestScanEntropy_VeryHighEntropyIsHighSeverity(t *testing.T) {
	matches := ScanEntropy("signing token: aA1bB2cC3dD4eE5fF6gG7hH8iI9jJ0kKlLmMnN-_")

	require.Len(t, matches, 1)
	assert.Equal(t, models.SeverityHigh, matches[0].Severity)
}

func TestScanEntropy_NoKeywordNearby(t *testing.T) {
	// Same shape of token, but nothing security-relevant around it.
	matches := ScanEntropy("the value x9K2mP5vQ8wL3nR7tY1zB4cD6fG0hJ appeared in the dump")

	assert.Empty(t, matches)
}

func TestScanEntropy_PurelyAlphabeticExcluded(t *testing.T) {
	matches := ScanEntropy("password: abcdefghijklmnopqrstuvwxyzabcdef")

	assert.Empty(t, matches)
}

func TestScanEntropy_LowEntropyExcluded(t *testing.T) {
	matches := ScanEntropy("secret = aaaa1111aaaa1111aaaa1111")

	assert.Empty(t, matches)
}
