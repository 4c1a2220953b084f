package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/models"
)

const legacyURL = "https://api.openai.com/v1/chat/completions"

func newTestRouter() *SmartRouter {
	return NewSmartRouter(legacyURL, logger.NewLogger("test"))
}

func enabledRouting() *models.SmartRoutingConfig {
	routing := DefaultRouting()
	routing.Enabled = true
	return &routing
}

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		condition string
		riskScore int
		want      bool
	}{
		{"default", 0, true},
		{"risk_score >= 70", 70, true},
		{"risk_score >= 70", 69, false},
		{"risk_score > 30", 30, false},
		{"risk_score > 30", 31, true},
		{"risk_score <= 10", 10, true},
		{"risk_score < 10", 10, false},
		{"risk_score == 50", 50, true},
		{"risk_score == 50", 51, false},
		{"garbage condition", 100, false},
		{"risk_score != 5", 5, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evaluateCondition(tt.condition, tt.riskScore), "%s @ %d", tt.condition, tt.riskScore)
	}
}

func TestResolve_StrictLocalOverridesEverything(t *testing.T) {
	router := newTestRouter()
	policy := models.PolicyConfig{StrictLocal: true, SmartRouting: enabledRouting()}

	route := router.Resolve(0, "gpt-4", policy)
	assert.Equal(t, models.TargetLocalLLM, route.Target)
	assert.True(t, route.IsLocal)
	assert.Equal(t, "llama3", route.Model)
	assert.Equal(t, "http://localhost:11434/api/chat", route.ProviderURL)
}

func TestResolve_RoutingDisabledGoesDirect(t *testing.T) {
	router := newTestRouter()

	route := router.Resolve(95, "gpt-4", models.PolicyConfig{})
	assert.Equal(t, models.TargetCloudDirect, route.Target)
	assert.Equal(t, "gpt-4", route.Model)
	assert.Equal(t, legacyURL, route.ProviderURL)
	assert.False(t, route.RequiresRedaction)
}

func TestResolve_FirstMatchWins(t *testing.T) {
	router := newTestRouter()
	policy := models.PolicyConfig{SmartRouting: enabledRouting()}

	high := router.Resolve(85, "gpt-4", policy)
	assert.Equal(t, models.TargetLocalLLM, high.Target)

	medium := router.Resolve(45, "gpt-4", policy)
	assert.Equal(t, models.TargetCloudRedacted, medium.Target)
	assert.True(t, medium.RequiresRedaction)

	low := router.Resolve(5, "gpt-4", policy)
	assert.Equal(t, models.TargetCloudDirect, low.Target)
	assert.False(t, low.RequiresRedaction)
}

func TestResolve_NoMatchingRuleFallsBackToDirect(t *testing.T) {
	router := newTestRouter()
	policy := models.PolicyConfig{SmartRouting: &models.SmartRoutingConfig{
		Enabled: true,
		Routes:  []models.SmartRoute{{Condition: "risk_score >= 90", Target: models.TargetLocalLLM}},
	}}

	route := router.Resolve(10, "gpt-4", policy)
	assert.Equal(t, models.TargetCloudDirect, route.Target)
}

func TestIsLocalLLMAvailable(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	routing := DefaultRouting()
	routing.LocalLLM.Endpoint = up.URL
	assert.True(t, IsLocalLLMAvailable(context.Background(), routing))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	down.Close()

	routing.LocalLLM.Endpoint = down.URL
	assert.False(t, IsLocalLLMAvailable(context.Background(), routing))
}
