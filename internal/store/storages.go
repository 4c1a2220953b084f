// SPDX-License-Identifier: Apache-2.0

package store

import (
	"github.com/promptsentry/prompt-sentry/internal/logger"
)

// Storages bundles every repository behind one constructor so the
// application wires a single value instead of six.
type Storages struct {
	Providers ProviderRepository
	Models    ModelRepository
	Credits   CreditRepository
	Usage     UsageRepository
	Logs      LogRepository
	Vault     VaultRepository
}

// NewStorages builds all repositories over one shared database connection.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	log.Debug().Msg("creating storages")
	return &Storages{
		Providers: NewProviderRepository(db, log),
		Models:    NewModelRepository(db, log),
		Credits:   NewCreditRepository(db, log),
		Usage:     NewUsageRepository(db, log),
		Logs:      NewLogRepository(db, log),
		Vault:     NewVaultRepository(db, log),
	}
}
