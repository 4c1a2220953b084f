package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsentry/prompt-sentry/models"
)

func TestGetUsage_AggregatesTotals(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	env.usage.records = []models.UsageRecord{
		{ID: 1, ProviderID: 1, ModelName: "gpt-4o", TotalTokens: 100, Cost: 0.002, Timestamp: now.Add(-2 * time.Hour)},
		{ID: 2, ProviderID: 1, ModelName: "gpt-4o", TotalTokens: 50, Cost: 0.001, Timestamp: now},
	}

	rec := env.request(t, http.MethodGet, "/api/usage", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items       []models.UsageRecord `json:"items"`
		TotalTokens int64                `json:"totalTokens"`
		TotalCost   float64              `json:"totalCost"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Items, 2)
	assert.Equal(t, int64(150), body.TotalTokens)
	assert.InDelta(t, 0.003, body.TotalCost, 1e-9)
}

func TestGetUsage_SinceFilter(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	env.usage.records = []models.UsageRecord{
		{ID: 1, TotalTokens: 100, Timestamp: now.Add(-48 * time.Hour)},
		{ID: 2, TotalTokens: 50, Timestamp: now},
	}

	since := now.Add(-time.Hour).Format(time.RFC3339)
	rec := env.request(t, http.MethodGet, "/api/usage?since="+since, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []models.UsageRecord `json:"items"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Items, 1)

	rec = env.request(t, http.MethodGet, "/api/usage?since=yesterday", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLogs_FiltersByAction(t *testing.T) {
	env := newTestEnv(t)
	env.logs.entries = []models.LogEntry{
		{ID: 1, Model: "gpt-4o", Action: models.ActionBlock},
		{ID: 2, Model: "gpt-4o", Action: models.ActionAllow},
		{ID: 3, Model: "claude-sonnet", Action: models.ActionBlock},
	}

	rec := env.request(t, http.MethodGet, "/api/logs?action=BLOCK", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []models.LogEntry `json:"items"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Items, 2)

	rec = env.request(t, http.MethodGet, "/api/logs?action=BLOCK&model=gpt-4o", nil, nil)
	decodeBody(t, rec, &body)
	assert.Len(t, body.Items, 1)
}

func TestSimulate_ReportsScopeExposure(t *testing.T) {
	env := newTestEnv(t)
	seedWorkspaceFile(t, env.root, "src/main.go", "package main\n")
	seedWorkspaceFile(t, env.root, "notes.txt", "contact jane@raccoon.dev\n")

	rec := env.request(t, http.MethodPost, "/api/simulate",
		map[string]any{"targetDir": env.root}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.LeakSimulationReport
	decodeBody(t, rec, &report)
	assert.Equal(t, env.root, report.Root)
	assert.Positive(t, report.FilesScanned)
	assert.Positive(t, report.PIIFound)
}

func TestSimulate_RejectsInvalidPayload(t *testing.T) {
	env := newTestEnv(t)

	req, rec := rawRequest(t, http.MethodPost, "/api/simulate", "{broken")
	env.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
