package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex computes a SHA-256 digest over the given string and returns
// it hex-encoded. Used for deduplicating vault entries by original value
// without storing the value itself in an index.
func SHA256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// HashString computes an HMAC-SHA256 signature over the given string
// using the provided key and returns the result as a hex-encoded string.
//
// Used to sign audit log entries so tampering with stored request logs
// is detectable when a signing key is configured.
func HashString(data string, hashKey string) string {
	hasher := hmac.New(sha256.New, []byte(hashKey))
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}
