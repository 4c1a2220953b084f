// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// vaultKeySalt is a fixed domain-separation salt for the scrypt
// derivation. The master secret itself is the only secret input; the
// salt just keeps the derived key distinct from any other use of the
// same secret.
const vaultKeySalt = "prompt-sentry-vault"

// ErrNoMasterSecret is returned by NewCipherService when no master
// secret is configured. Reversible redaction is refused rather than
// silently falling back to a weak built-in key.
var ErrNoMasterSecret = errors.New("master secret is not configured")

// cipherService is the private implementation of [CipherService].
type cipherService struct {
	aead cipher.AEAD
}

// NewCipherService derives a 256-bit key from masterSecret using scrypt
// (N=32768, r=8, p=1) and builds an AES-256-GCM AEAD around it. Returns
// [ErrNoMasterSecret] when masterSecret is empty.
func NewCipherService(masterSecret string) (CipherService, error) {
	if masterSecret == "" {
		return nil, ErrNoMasterSecret
	}

	key, err := scrypt.Key([]byte(masterSecret), []byte(vaultKeySalt), 32768, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &cipherService{aead: aead}, nil
}

// Seal implements [CipherService]. A random 12-byte nonce is prepended
// to the ciphertext so Open can locate it: blob = nonce ‖ ciphertext.
func (c *cipherService) Seal(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// SealParts implements [CipherService]. The GCM tag is the trailing 16
// bytes of the sealed output; it is split off so the three components
// can live in separate columns.
func (c *cipherService) SealParts(plaintext string) (string, string, string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	tagStart := len(sealed) - c.aead.Overhead()

	return base64.StdEncoding.EncodeToString(sealed[:tagStart]),
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(sealed[tagStart:]),
		nil
}

// OpenParts implements [CipherService].
func (c *cipherService) OpenParts(ciphertext, iv, authTag string) (string, error) {
	rawCiphertext, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}
	tag, err := base64.StdEncoding.DecodeString(authTag)
	if err != nil {
		return "", fmt.Errorf("decode auth tag: %w", err)
	}

	plaintext, err := c.aead.Open(nil, nonce, append(rawCiphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}

// Open implements [CipherService]. It base64-decodes the blob, splits
// out the nonce, and decrypts the remainder. An authentication failure
// here almost always means the configured master secret is not the one
// the blob was sealed under.
func (c *cipherService) Open(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}

	return string(plaintext), nil
}
