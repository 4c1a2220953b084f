// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/promptsentry/prompt-sentry/models"
)

// Loader reads and persists the global policy file and layers project
// overrides on top. A fresh config is loaded per call so concurrent
// requests never observe a half-written mutation; the file itself is the
// single source of truth.
type Loader struct {
	path          string
	workspaceRoot string
}

func NewLoader(path, workspaceRoot string) *Loader {
	return &Loader{path: path, workspaceRoot: workspaceRoot}
}

// Load reads the global policy file and merges the nearest project
// override (if any) on top. A missing policy file yields the built-in
// default policy rather than an error, so a fresh install is protected
// from the first request on.
func (l *Loader) Load() (*models.PolicyConfig, error) {
	global, err := l.LoadGlobal()
	if err != nil {
		return nil, err
	}
	return MergeProjectPolicy(global, l.workspaceRoot), nil
}

// LoadGlobal reads the global policy file without project overrides.
func (l *Loader) LoadGlobal() (*models.PolicyConfig, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultPolicy(), nil
		}
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var cfg models.PolicyConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	return &cfg, nil
}

// Save writes the policy atomically (write-then-rename) so a reader
// never sees a truncated file.
func (l *Loader) Save(cfg *models.PolicyConfig) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write policy file: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("rename policy file: %w", err)
	}
	return nil
}

// StrictLocal reports whether strict local-only routing is in force,
// either via the supplied process-level override or the policy file.
func (l *Loader) StrictLocal(envOverride bool) bool {
	if envOverride {
		return true
	}
	cfg, err := l.LoadGlobal()
	if err != nil {
		return false
	}
	return cfg.StrictLocal
}

// DefaultPolicy is the configuration a fresh install runs with before
// the operator saves anything: every detection rule on, a blocklist
// covering the usual secret-bearing paths, medium severity threshold.
func DefaultPolicy() *models.PolicyConfig {
	return &models.PolicyConfig{
		Version: "1.0",
		Rules: models.PolicyRules{
			BlockPrivateKeys:     true,
			BlockAWSKeys:         true,
			BlockDBURLs:          true,
			BlockGitHubTokens:    true,
			RedactEmails:         true,
			RedactPhone:          true,
			RedactJWT:            true,
			RedactGenericAPIKeys: true,
			AllowSourceCode:      true,
			LogAllRequests:       true,
		},
		FileScope: models.FileScopeConfig{
			Mode: models.FileScopeBlocklist,
			Blocklist: []string{
				"**/.env", "**/.env.*", "**/*.pem", "**/*.key",
				"**/id_rsa*", "**/secrets/**", "**/credentials/**",
			},
			Allowlist:     []string{},
			MaxFileSizeKB: 1024,
			ScanOnOpen:    false,
			ScanOnSend:    true,
		},
		BlockedPaths:      []string{},
		SeverityThreshold: models.SeverityMedium,
	}
}
