package http

import (
	"context"
	"strings"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/store"
	"github.com/promptsentry/prompt-sentry/models"
)

type fakeProviders struct {
	nextID int64
	items  map[int64]models.Provider
}

func newFakeProviders() *fakeProviders {
	return &fakeProviders{items: map[int64]models.Provider{}}
}

func (f *fakeProviders) CreateProvider(_ context.Context, provider models.Provider) (models.Provider, error) {
	for _, existing := range f.items {
		if existing.Slug == provider.Slug {
			return models.Provider{}, store.ErrSlugAlreadyExists
		}
	}
	f.nextID++
	provider.ID = f.nextID
	provider.CreatedAt = time.Now().UTC()
	provider.UpdatedAt = provider.CreatedAt
	f.items[provider.ID] = provider
	return provider, nil
}

func (f *fakeProviders) GetProvider(_ context.Context, id int64) (models.Provider, error) {
	provider, ok := f.items[id]
	if !ok {
		return models.Provider{}, store.ErrNotFound
	}
	return provider, nil
}

func (f *fakeProviders) GetProviderBySlug(_ context.Context, slug string) (models.Provider, error) {
	for _, provider := range f.items {
		if provider.Slug == slug {
			return provider, nil
		}
	}
	return models.Provider{}, store.ErrNotFound
}

func (f *fakeProviders) ListProviders(_ context.Context) ([]models.Provider, error) {
	out := make([]models.Provider, 0, len(f.items))
	for _, provider := range f.items {
		out = append(out, provider)
	}
	return out, nil
}

func (f *fakeProviders) UpdateProvider(_ context.Context, provider models.Provider) (models.Provider, error) {
	existing, ok := f.items[provider.ID]
	if !ok {
		return models.Provider{}, store.ErrNotFound
	}
	if provider.APIKeyEncrypted == "" {
		provider.APIKeyEncrypted = existing.APIKeyEncrypted
	}
	f.items[provider.ID] = provider
	return provider, nil
}

func (f *fakeProviders) DeleteProvider(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeModels struct {
	nextID    int64
	items     map[int64]models.Model
	providers *fakeProviders
}

func newFakeModels(providers *fakeProviders) *fakeModels {
	return &fakeModels{items: map[int64]models.Model{}, providers: providers}
}

func (f *fakeModels) CreateModel(_ context.Context, model models.Model) (models.Model, error) {
	for _, existing := range f.items {
		if existing.ProviderID == model.ProviderID && existing.ModelName == model.ModelName {
			return models.Model{}, store.ErrModelAlreadyExists
		}
	}
	f.nextID++
	model.ID = f.nextID
	f.items[model.ID] = model
	return model, nil
}

func (f *fakeModels) GetModel(_ context.Context, id int64) (models.Model, error) {
	model, ok := f.items[id]
	if !ok {
		return models.Model{}, store.ErrNotFound
	}
	return model, nil
}

func (f *fakeModels) FindModelByName(_ context.Context, modelName string) (models.Model, error) {
	for _, model := range f.items {
		if model.ModelName != modelName || !model.Enabled {
			continue
		}
		if provider, ok := f.providers.items[model.ProviderID]; ok && provider.Enabled {
			return model, nil
		}
	}
	return models.Model{}, store.ErrNotFound
}

func (f *fakeModels) ListModels(_ context.Context, providerID int64) ([]models.Model, error) {
	out := make([]models.Model, 0)
	for _, model := range f.items {
		if providerID == 0 || model.ProviderID == providerID {
			out = append(out, model)
		}
	}
	return out, nil
}

func (f *fakeModels) UpdateModel(_ context.Context, model models.Model) (models.Model, error) {
	if _, ok := f.items[model.ID]; !ok {
		return models.Model{}, store.ErrNotFound
	}
	f.items[model.ID] = model
	return model, nil
}

func (f *fakeModels) DeleteModel(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeCredits struct {
	nextID int64
	items  []models.CreditConfig
}

func (f *fakeCredits) CreateCredit(_ context.Context, credit models.CreditConfig) (models.CreditConfig, error) {
	f.nextID++
	credit.ID = f.nextID
	credit.CreatedAt = time.Now().UTC()
	f.items = append(f.items, credit)
	return credit, nil
}

func (f *fakeCredits) ListCredits(_ context.Context) ([]models.CreditConfig, error) {
	return append([]models.CreditConfig(nil), f.items...), nil
}

func (f *fakeCredits) FindApplicable(_ context.Context, providerID int64, modelID *int64) ([]models.CreditConfig, error) {
	var out []models.CreditConfig
	for _, c := range f.items {
		global := c.ProviderID == nil && c.ModelID == nil
		providerWide := c.ProviderID != nil && *c.ProviderID == providerID && c.ModelID == nil
		modelScoped := modelID != nil && c.ModelID != nil && *c.ModelID == *modelID
		if global || providerWide || modelScoped {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCredits) UpdateCredit(_ context.Context, credit models.CreditConfig) (models.CreditConfig, error) {
	for i := range f.items {
		if f.items[i].ID == credit.ID {
			f.items[i] = credit
			return credit, nil
		}
	}
	return models.CreditConfig{}, store.ErrNotFound
}

func (f *fakeCredits) DeleteCredit(_ context.Context, id int64) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeCredits) AddUsage(_ context.Context, creditID int64, amount float64) error {
	for i := range f.items {
		if f.items[i].ID == creditID {
			f.items[i].UsedAmount += amount
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeCredits) ResetIfDue(_ context.Context, creditID int64, observedReset, nextReset time.Time) (bool, error) {
	for i := range f.items {
		if f.items[i].ID == creditID && f.items[i].ResetDate.Equal(observedReset) {
			f.items[i].UsedAmount = 0
			f.items[i].ResetDate = nextReset
			return true, nil
		}
	}
	return false, nil
}

type fakeUsage struct {
	records []models.UsageRecord
}

func (f *fakeUsage) RecordUsage(_ context.Context, record models.UsageRecord) (models.UsageRecord, error) {
	record.ID = int64(len(f.records) + 1)
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeUsage) ListUsage(_ context.Context, since time.Time) ([]models.UsageRecord, error) {
	var out []models.UsageRecord
	for _, record := range f.records {
		if since.IsZero() || !record.Timestamp.Before(since) {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeLogs struct {
	entries []models.LogEntry
}

func (f *fakeLogs) AppendLog(_ context.Context, entry models.LogEntry) (models.LogEntry, error) {
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeLogs) QueryLogs(_ context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	var out []models.LogEntry
	for _, entry := range f.entries {
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.Model != "" && entry.Model != filter.Model {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

type fakeVault struct {
	items map[string]models.VaultEntry
}

func newFakeVault() *fakeVault {
	return &fakeVault{items: map[string]models.VaultEntry{}}
}

func (f *fakeVault) SaveEntry(_ context.Context, entry models.VaultEntry) error {
	f.items[entry.TokenID] = entry
	return nil
}

func (f *fakeVault) GetEntry(_ context.Context, tokenID string) (models.VaultEntry, error) {
	entry, ok := f.items[tokenID]
	if !ok {
		return models.VaultEntry{}, store.ErrVaultTokenNotFound
	}
	if entry.ExpiresAt != nil && !entry.ExpiresAt.After(time.Now()) {
		return models.VaultEntry{}, store.ErrVaultTokenNotFound
	}
	return entry, nil
}

func (f *fakeVault) DeleteEntry(_ context.Context, tokenID string) error {
	if _, ok := f.items[tokenID]; !ok {
		return store.ErrVaultTokenNotFound
	}
	delete(f.items, tokenID)
	return nil
}

func (f *fakeVault) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	for id, entry := range f.items {
		if entry.ExpiresAt != nil && !entry.ExpiresAt.After(now) {
			delete(f.items, id)
			purged++
		}
	}
	return purged, nil
}

func (f *fakeVault) ListTokens(_ context.Context) ([]models.VaultEntry, error) {
	out := make([]models.VaultEntry, 0, len(f.items))
	for _, entry := range f.items {
		out = append(out, entry)
	}
	return out, nil
}

func boolPtr(v bool) *bool { return &v }

func timeInFuture() time.Time { return time.Now().Add(24 * time.Hour) }

func int64Ptr(v int64) *int64 { return &v }

func hasReasonContaining(reasons []string, fragment string) bool {
	for _, reason := range reasons {
		if strings.Contains(reason, fragment) {
			return true
		}
	}
	return false
}
