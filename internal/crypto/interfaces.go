package crypto

// CipherService protects values that must never be stored in plaintext:
// vaulted secret originals and provider API keys. It knows nothing about
// the database or the wire format, only about sealing and opening strings.
//
// The working key is derived once from the operator's master secret:
//
//	key  = scrypt(masterSecret, fixed vault salt)   (construction)
//	blob = nonce ‖ AES-256-GCM(key, value)          (Seal)
type CipherService interface {
	// Seal encrypts plaintext and returns a base64 blob (nonce ‖ ciphertext)
	// safe to persist.
	Seal(plaintext string) (string, error)

	// Open decrypts a blob produced by Seal. Returns an error if the blob
	// is malformed or the authentication tag does not verify, which almost
	// always means the master secret changed since the value was sealed.
	Open(blob string) (string, error)

	// SealParts encrypts plaintext and returns the ciphertext, nonce, and
	// authentication tag as separate base64 strings, for stores that
	// persist the three components in distinct columns.
	SealParts(plaintext string) (ciphertext, iv, authTag string, err error)

	// OpenParts reverses SealParts.
	OpenParts(ciphertext, iv, authTag string) (string, error)
}
