// SPDX-License-Identifier: Apache-2.0

package redactor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/crypto"
	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/store"
	"github.com/promptsentry/prompt-sentry/models"
)

const vaultTokenPrefix = "VAULT_TOK_"

// VaultService implements reversible redaction: every stripped value is
// sealed with the process cipher and stored under a fresh unguessable
// token id, and the substitution token embeds that id so an authorized
// reviewer can recover the original later. Entries die on TTL expiry or
// explicit purge.
type VaultService struct {
	cipher crypto.CipherService
	vault  store.VaultRepository
	logger *logger.Logger
}

// NewVaultService constructs a VaultService over the given cipher and
// vault repository.
func NewVaultService(cipher crypto.CipherService, vault store.VaultRepository, logger *logger.Logger) *VaultService {
	logger.Debug().Msg("creating vault service")
	return &VaultService{
		cipher: cipher,
		vault:  vault,
		logger: logger,
	}
}

func newTokenID() (string, error) {
	var raw [6]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	return vaultTokenPrefix + hex.EncodeToString(raw[:]), nil
}

// StoreValue seals one value into the vault and returns its substitution
// token in bracketed form. A zero ttl stores the entry without expiry.
func (s *VaultService) StoreValue(ctx context.Context, value, matchType string, ttl time.Duration) (string, error) {
	tokenID, err := newTokenID()
	if err != nil {
		return "", err
	}

	ciphertext, iv, authTag, err := s.cipher.SealParts(value)
	if err != nil {
		return "", fmt.Errorf("seal vault entry: %w", err)
	}

	entry := models.VaultEntry{
		TokenID:    tokenID,
		Ciphertext: ciphertext,
		IV:         iv,
		AuthTag:    authTag,
		Type:       matchType,
		CreatedAt:  time.Now().UTC(),
	}
	if ttl > 0 {
		expires := entry.CreatedAt.Add(ttl)
		entry.ExpiresAt = &expires
	}

	if err := s.vault.SaveEntry(ctx, entry); err != nil {
		return "", err
	}
	return "[" + tokenID + "]", nil
}

// RedactReversible substitutes every matched value with a vault token.
// The replacement order and skip rules match [Redact]; only the token
// text differs, carrying a resolvable id instead of the type name.
func (s *VaultService) RedactReversible(ctx context.Context, text string, matches []Replacement, ttl time.Duration) (string, error) {
	sorted := make([]Replacement, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Value) > len(sorted[j].Value)
	})

	redacted := text
	for _, match := range sorted {
		if match.Value == "" || !strings.Contains(redacted, match.Value) {
			continue
		}
		token, err := s.StoreValue(ctx, match.Value, match.Type, ttl)
		if err != nil {
			return "", err
		}
		redacted = strings.ReplaceAll(redacted, match.Value, token)
	}
	return redacted, nil
}

// ResolveToken decrypts and returns the original value behind a token id.
// Surrounding brackets are tolerated so callers can pass the substitution
// token verbatim. Expired and purged tokens resolve to
// [store.ErrVaultTokenNotFound].
func (s *VaultService) ResolveToken(ctx context.Context, tokenID string) (string, error) {
	clean := strings.TrimSuffix(strings.TrimPrefix(tokenID, "["), "]")

	entry, err := s.vault.GetEntry(ctx, clean)
	if err != nil {
		return "", err
	}

	value, err := s.cipher.OpenParts(entry.Ciphertext, entry.IV, entry.AuthTag)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*VaultService.ResolveToken").Msg("error: vault entry failed to decrypt")
		return "", fmt.Errorf("open vault entry: %w", err)
	}
	return value, nil
}

// PurgeExpired deletes every entry past its TTL and reports the count.
func (s *VaultService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.vault.PurgeExpired(ctx, time.Now().UTC())
}

// ListTokens returns stored entry metadata. Ciphertext fields never
// serialize (they are excluded from the JSON shape), so the listing
// exposes token ids, types, and timestamps only.
func (s *VaultService) ListTokens(ctx context.Context) ([]models.VaultEntry, error) {
	return s.vault.ListTokens(ctx)
}
