package store

import (
	"context"
	"time"

	"github.com/promptsentry/prompt-sentry/models"
)

type ProviderRepository interface {
	CreateProvider(ctx context.Context, provider models.Provider) (models.Provider, error)
	GetProvider(ctx context.Context, id int64) (models.Provider, error)
	GetProviderBySlug(ctx context.Context, slug string) (models.Provider, error)
	ListProviders(ctx context.Context) ([]models.Provider, error)
	UpdateProvider(ctx context.Context, provider models.Provider) (models.Provider, error)
	DeleteProvider(ctx context.Context, id int64) error
}

type ModelRepository interface {
	CreateModel(ctx context.Context, model models.Model) (models.Model, error)
	GetModel(ctx context.Context, id int64) (models.Model, error)
	// FindModelByName resolves a requested model name to its registration,
	// returning ErrNotFound when the model was never registered.
	FindModelByName(ctx context.Context, modelName string) (models.Model, error)
	ListModels(ctx context.Context, providerID int64) ([]models.Model, error)
	UpdateModel(ctx context.Context, model models.Model) (models.Model, error)
	DeleteModel(ctx context.Context, id int64) error
}

type CreditRepository interface {
	CreateCredit(ctx context.Context, credit models.CreditConfig) (models.CreditConfig, error)
	ListCredits(ctx context.Context) ([]models.CreditConfig, error)
	// FindApplicable returns every limit scoped to the provider, the
	// model, or globally (both scope columns NULL).
	FindApplicable(ctx context.Context, providerID int64, modelID *int64) ([]models.CreditConfig, error)
	UpdateCredit(ctx context.Context, credit models.CreditConfig) (models.CreditConfig, error)
	DeleteCredit(ctx context.Context, id int64) error

	// AddUsage atomically increments used_amount by amount. The increment
	// happens in the database, not read-modify-write in process, so two
	// concurrent consumers cannot lose an update.
	AddUsage(ctx context.Context, creditID int64, amount float64) error

	// ResetIfDue zeroes used_amount and advances reset_date, but only if
	// the stored reset_date is still the one the caller observed. A false
	// return means another request already performed the reset.
	ResetIfDue(ctx context.Context, creditID int64, observedReset, nextReset time.Time) (bool, error)
}

type UsageRepository interface {
	RecordUsage(ctx context.Context, record models.UsageRecord) (models.UsageRecord, error)
	ListUsage(ctx context.Context, since time.Time) ([]models.UsageRecord, error)
}

type LogRepository interface {
	AppendLog(ctx context.Context, entry models.LogEntry) (models.LogEntry, error)
	QueryLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error)
}

type VaultRepository interface {
	SaveEntry(ctx context.Context, entry models.VaultEntry) error
	GetEntry(ctx context.Context, tokenID string) (models.VaultEntry, error)
	DeleteEntry(ctx context.Context, tokenID string) error
	// PurgeExpired removes every entry whose expiry is at or before now
	// and reports how many were deleted.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	ListTokens(ctx context.Context) ([]models.VaultEntry, error)
}
