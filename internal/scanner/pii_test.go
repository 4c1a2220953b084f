package scanner

import (
	"testing"

	"github.com/promptsentry/prompt-sentry/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanPII_Email(t *testing.T) {
	result := ScanPII("please contact jane.doe@example.com about the ticket")

	require.True(t, result.HasPII)
	require.Len(t, result.PII, 1)
	assert.Equal(t, models.PIIEmail, result.PII[0].Type)
	assert.Equal(t, "jane.doe@example.com", result.PII[0].Value)
	assert.Equal(t, models.SeverityMedium, result.PII[0].Severity)
}

func TestScanPII_SSN(t *testing.T) {
	result := ScanPII("ssn on file: 123-45-6789")

	require.True(t, result.HasPII)
	require.Len(t, result.PII, 1)
	assert.Equal(t, models.PIISSN, result.PII[0].Type)
	assert.Equal(t, models.SeverityHigh, result.PII[0].Severity)
}

func TestScanPII_CreditCardLuhnValid(t *testing.T) {
	result := ScanPII("card: 4111 1111 1111 1111")

	require.True(t, result.HasPII)
	require.Len(t, result.PII, 1)
	assert.Equal(t, models.PIICreditCard, result.PII[0].Type)
	assert.Equal(t, "4111 1111 1111 1111", result.PII[0].Value)
}

func TestScanPII_CreditCardLuhnInvalid(t *testing.T) {
	// Card-shaped but failing the checksum: must not be reported.
	result := ScanPII("order ref: 1234 5678 9012 3456")

	assert.False(t, result.HasPII)
	assert.Empty(t, result.PII)
}

func TestScanPII_Phone(t *testing.T) {
	result := ScanPII("call me at +14155552671 tomorrow")

	require.True(t, result.HasPII)
	require.Len(t, result.PII, 1)
	assert.Equal(t, models.PIIPhone, result.PII[0].Type)
	assert.Equal(t, "+14155552671", result.PII[0].Value)
}

func TestScanPII_IPAddress(t *testing.T) {
	result := ScanPII("host unreachable: 192.168.1.1")

	require.True(t, result.HasPII)
	require.Len(t, result.PII, 1)
	assert.Equal(t, models.PIIIPAddress, result.PII[0].Type)
}

func TestScanPII_AadhaarAndPan(t *testing.T) {
	result := ScanPII("aadhaar 2345 6789 1234 and pan ABCDE1234F")

	require.True(t, result.HasPII)
	types := map[models.PIIType]bool{}
	for _, m := range result.PII {
		types[m.Type] = true
	}
	assert.True(t, types[models.PIIAadhaar])
	assert.True(t, types[models.PIIPan])
}

func TestLuhnValid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"visa test number", "4111111111111111", true},
		{"with spaces", "4111 1111 1111 1111", true},
		{"with dashes", "4111-1111-1111-1111", true},
		{"checksum failure", "4111111111111112", false},
		{"too short", "411111111111", false},
		{"too long", "41111111111111111", false},
		{"non digits", "4111a11111111111", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, luhnValid(tt.value))
		})
	}
}
