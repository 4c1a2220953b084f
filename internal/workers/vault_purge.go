// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/logger"
)

// VaultPurger is the slice of the vault service the purge worker needs.
type VaultPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// vaultPurgeWorker sweeps expired reversible-redaction entries on a
// ticker, so a leaked token id stops resolving shortly after its TTL.
type vaultPurgeWorker struct {
	ctx      context.Context
	vault    VaultPurger
	interval time.Duration
	logger   *logger.Logger
}

// NewVaultPurgeWorker creates the purge worker. A non-positive interval
// defaults to 5 minutes. The worker exits when ctx is cancelled.
func NewVaultPurgeWorker(ctx context.Context, vault VaultPurger, interval time.Duration, log *logger.Logger) Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	log.Debug().Dur("interval", interval).Msg("creating vault purge worker")
	return &vaultPurgeWorker{
		ctx:      ctx,
		vault:    vault,
		interval: interval,
		logger:   log,
	}
}

func (w *vaultPurgeWorker) Run() {
	go func() {
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-t.C:
				if w.ctx.Err() != nil {
					return
				}
				purged, err := w.vault.PurgeExpired(w.ctx)
				if err != nil {
					w.logger.Err(err).Str("func", "*vaultPurgeWorker.Run").Msg("error: vault purge failed")
					continue
				}
				if purged > 0 {
					w.logger.Info().Int64("purged", purged).Msg("expired vault entries purged")
				}
			}
		}
	}()
}
