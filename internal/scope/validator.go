// SPDX-License-Identifier: Apache-2.0

// Package scope classifies referenced file paths against the configured
// allow/block globs and size cap. Any not-allowed result in a batch
// forces the policy decision to BLOCK.
package scope

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/promptsentry/prompt-sentry/models"
)

// Validator checks file paths against a workspace root. The root anchors
// both relative-path resolution and the prefix stripped before glob
// matching, so policies written as "src/auth/**" work regardless of
// where the gateway process was started.
type Validator struct {
	root string
}

func NewValidator(root string) *Validator {
	return &Validator{root: root}
}

// MatchesAny reports whether path matches at least one of the globs.
// An empty pattern list never matches.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// Normalize resolves path against the workspace root, strips the root
// prefix when the path is inside it, and converts separators to forward
// slashes. Paths outside the root are returned slash-normalized as given.
func (v *Validator) Normalize(path string) string {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(v.root, abs)
	}
	abs = filepath.Clean(abs)

	if rel, err := filepath.Rel(v.root, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// Check classifies a single path against the glob configuration only.
// Size and accessibility are handled by ValidateAll.
func (v *Validator) Check(path string, config models.FileScopeConfig) models.FileScopeResult {
	relative := v.Normalize(path)

	if config.Mode == models.FileScopeAllowlist {
		allowed := MatchesAny(relative, config.Allowlist)
		result := models.FileScopeResult{Allowed: allowed, Path: relative}
		if !allowed {
			result.Reason = fmt.Sprintf("Path not in allowlist: %s", relative)
		}
		return result
	}

	blocked := MatchesAny(relative, config.Blocklist)
	result := models.FileScopeResult{Allowed: !blocked, Path: relative}
	if blocked {
		result.Reason = fmt.Sprintf("Path in blocklist: %s", relative)
	}
	return result
}

// ValidateAll classifies every path in the batch. The size cap and the
// stat check apply independently of the glob verdict: an oversized or
// unreadable file is not-allowed even if its path matches the scope.
func (v *Validator) ValidateAll(paths []string, config models.FileScopeConfig) []models.FileScopeResult {
	if len(paths) == 0 {
		return nil
	}

	results := make([]models.FileScopeResult, 0, len(paths))
	for _, path := range paths {
		scopeResult := v.Check(path, config)
		if !scopeResult.Allowed {
			results = append(results, scopeResult)
			continue
		}

		abs := path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(v.root, abs)
		}

		stats, err := os.Stat(abs)
		if err != nil {
			results = append(results, models.FileScopeResult{
				Allowed: false,
				Path:    scopeResult.Path,
				Reason:  fmt.Sprintf("File not accessible: %s", scopeResult.Path),
			})
			continue
		}
		if config.MaxFileSizeKB > 0 && stats.Size() > config.MaxFileSizeKB*1024 {
			results = append(results, models.FileScopeResult{
				Allowed: false,
				Path:    scopeResult.Path,
				Reason:  fmt.Sprintf("File exceeds max size (%dKB): %s", config.MaxFileSizeKB, scopeResult.Path),
			})
			continue
		}

		results = append(results, scopeResult)
	}

	return results
}
