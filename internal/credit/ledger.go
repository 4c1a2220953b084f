// SPDX-License-Identifier: Apache-2.0

// Package credit enforces consumption limits per provider and model.
// Limits are checked before an upstream call and consumed only after a
// successful response, so a failed provider call never burns credit.
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/store"
	"github.com/promptsentry/prompt-sentry/models"
)

// Ledger evaluates and consumes credit limits. It holds no cross-request
// state: the repository's atomic increment and compare-and-swap reset
// carry all the concurrency guarantees.
type Ledger struct {
	credits store.CreditRepository
	logger  *logger.Logger
	now     func() time.Time
}

// NewLedger constructs a Ledger over the credit repository.
func NewLedger(credits store.CreditRepository, log *logger.Logger) *Ledger {
	log.Debug().Msg("creating credit ledger")
	return &Ledger{
		credits: credits,
		logger:  log,
		now:     time.Now,
	}
}

// NextReset returns the start of the next window after now: the coming
// midnight for daily, the coming week start for weekly, the first of the
// next month for monthly.
func NextReset(period models.ResetPeriod, now time.Time) time.Time {
	switch period {
	case models.ResetDaily:
		next := now.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, now.Location())
	case models.ResetWeekly:
		next := now.AddDate(0, 0, 7-int(now.Weekday()))
		return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, now.Location())
	case models.ResetMonthly:
		return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	default:
		return now.AddDate(0, 0, 1)
	}
}

// refresh applies a lazy window reset to one limit. The repository CAS
// guarantees a single winner among concurrent requests; losing the race
// is fine because the winner already zeroed the row, so the local copy
// is adjusted either way.
func (l *Ledger) refresh(ctx context.Context, credit models.CreditConfig) models.CreditConfig {
	now := l.now()
	if now.Before(credit.ResetDate) {
		return credit
	}

	next := NextReset(credit.ResetPeriod, now)
	won, err := l.credits.ResetIfDue(ctx, credit.ID, credit.ResetDate, next)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*Ledger.refresh").Msg("error: credit window reset failed")
		return credit
	}
	if won {
		logger.FromContext(ctx).Info().Int64("credit_id", credit.ID).Time("next_reset", next).Msg("credit window reset")
	}
	credit.UsedAmount = 0
	credit.ResetDate = next
	return credit
}

// amountFor converts one request's accounting into the unit a limit is
// expressed in.
func amountFor(limitType models.LimitType, totalTokens int64, cost float64) float64 {
	switch limitType {
	case models.LimitRequests:
		return 1
	case models.LimitTokens:
		return float64(totalTokens)
	case models.LimitDollars:
		return cost
	default:
		return 0
	}
}

// Check reports whether a call to the given provider and model may
// proceed. A request is refused only when a hard limit is exhausted;
// soft limits report their margin but never block. With no applicable
// limits the check is unlimited.
func (l *Ledger) Check(ctx context.Context, providerID int64, modelID *int64) (models.CreditCheck, error) {
	credits, err := l.credits.FindApplicable(ctx, providerID, modelID)
	if err != nil {
		return models.CreditCheck{}, fmt.Errorf("find applicable credits: %w", err)
	}
	if len(credits) == 0 {
		return models.CreditCheck{Allowed: true, Unlimited: true, LimitType: models.LimitRequests}, nil
	}

	tightest := -1
	tightestRemaining := 0.0
	for i := range credits {
		credits[i] = l.refresh(ctx, credits[i])

		remaining := credits[i].TotalLimit - credits[i].UsedAmount
		if remaining <= 0 && credits[i].HardLimit {
			return models.CreditCheck{
				Allowed:   false,
				Remaining: 0,
				LimitType: credits[i].LimitType,
				Message: fmt.Sprintf("%s limit exhausted (%v/%v)",
					credits[i].LimitType, credits[i].UsedAmount, credits[i].TotalLimit),
			}, nil
		}
		if tightest < 0 || remaining < tightestRemaining {
			tightest = i
			tightestRemaining = remaining
		}
	}

	if tightestRemaining < 0 {
		tightestRemaining = 0
	}
	return models.CreditCheck{
		Allowed:   true,
		Remaining: tightestRemaining,
		LimitType: credits[tightest].LimitType,
	}, nil
}

// Consume charges every applicable limit for one completed call: 1 per
// request limit, the token total per token limit, the dollar cost per
// dollar limit. Call it only after the upstream response succeeded.
func (l *Ledger) Consume(ctx context.Context, providerID int64, modelID *int64, totalTokens int64, cost float64) error {
	credits, err := l.credits.FindApplicable(ctx, providerID, modelID)
	if err != nil {
		return fmt.Errorf("find applicable credits: %w", err)
	}

	for i := range credits {
		credits[i] = l.refresh(ctx, credits[i])
		amount := amountFor(credits[i].LimitType, totalTokens, cost)
		if amount == 0 {
			continue
		}
		if err := l.credits.AddUsage(ctx, credits[i].ID, amount); err != nil {
			return fmt.Errorf("consume credit %d: %w", credits[i].ID, err)
		}
	}
	return nil
}
