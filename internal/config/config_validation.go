// SPDX-License-Identifier: Apache-2.0

package config

import "os"

// applyDefaults fills zero-valued fields after all sources are merged.
// The gateway is expected to start with no configuration at all, backed
// by a local SQLite file and a policy file in the working directory.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = DefaultHTTPAddress
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.UpstreamTimeout == 0 {
		cfg.Server.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if cfg.Storage.DB.Driver == "" {
		cfg.Storage.DB.Driver = DefaultDriver
	}
	if cfg.Storage.DB.DSN == "" && cfg.Storage.DB.Driver == DefaultDriver {
		cfg.Storage.DB.DSN = DefaultSQLiteDSN
	}
	if cfg.Firewall.PolicyPath == "" {
		cfg.Firewall.PolicyPath = DefaultPolicyPath
	}
	if cfg.Firewall.WorkspaceRoot == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.Firewall.WorkspaceRoot = wd
		}
	}
	if cfg.Workers.VaultPurgeInterval == 0 {
		cfg.Workers.VaultPurgeInterval = DefaultVaultPurgeInterval
	}
	if cfg.Workers.VaultTTL == 0 {
		cfg.Workers.VaultTTL = DefaultVaultTTL
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// startup invariants.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}
	if cfg.Storage.DB.Driver != "sqlite3" && cfg.Storage.DB.Driver != "pgx" {
		return ErrInvalidStorageConfigs
	}
	return nil
}
