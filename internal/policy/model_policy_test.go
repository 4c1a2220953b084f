package policy

import (
	"testing"

	"github.com/promptsentry/prompt-sentry/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gpt4Policies() map[string]models.ModelPolicyRule {
	return map[string]models.ModelPolicyRule{
		"gpt-4": {
			AllowedPaths: []string{"src/frontend/**"},
			BlockedPaths: []string{"src/auth/**"},
		},
	}
}

func TestEvaluateModelPolicy_BlockedPath(t *testing.T) {
	result := EvaluateModelPolicy("gpt-4", []string{"src/auth/login.ts"}, gpt4Policies())

	require.False(t, result.Allowed)
	assert.Equal(t, []string{"src/auth/login.ts"}, result.BlockedFiles)
	assert.Contains(t, result.Reason, "gpt-4")
	assert.Contains(t, result.Reason, "src/auth/login.ts")
}

func TestEvaluateModelPolicy_AllowedPath(t *testing.T) {
	result := EvaluateModelPolicy("gpt-4", []string{"src/frontend/App.tsx"}, gpt4Policies())

	assert.True(t, result.Allowed)
	assert.Empty(t, result.BlockedFiles)
}

func TestEvaluateModelPolicy_AllowlistIsExclusionary(t *testing.T) {
	// Not blocked, but outside the non-empty allowed list.
	result := EvaluateModelPolicy("gpt-4", []string{"src/server/db.ts"}, gpt4Policies())

	assert.False(t, result.Allowed)
	assert.Equal(t, []string{"src/server/db.ts"}, result.BlockedFiles)
}

func TestEvaluateModelPolicy_DefaultRuleFallback(t *testing.T) {
	policies := map[string]models.ModelPolicyRule{
		"default": {BlockedPaths: []string{"secrets/**"}},
	}

	blocked := EvaluateModelPolicy("claude-sonnet", []string{"secrets/vault.yaml"}, policies)
	assert.False(t, blocked.Allowed)

	allowed := EvaluateModelPolicy("claude-sonnet", []string{"src/main.go"}, policies)
	assert.True(t, allowed.Allowed)
}

func TestEvaluateModelPolicy_NoRuleOrNoPaths(t *testing.T) {
	assert.True(t, EvaluateModelPolicy("gpt-4", nil, gpt4Policies()).Allowed)
	assert.True(t, EvaluateModelPolicy("gpt-4", []string{"src/auth/login.ts"}, nil).Allowed)
	assert.True(t, EvaluateModelPolicy("unlisted-model", []string{"src/auth/login.ts"}, gpt4Policies()).Allowed)
}

func TestEvaluateModelPolicy_BackslashPathsNormalized(t *testing.T) {
	result := EvaluateModelPolicy("gpt-4", []string{`src\auth\login.ts`}, gpt4Policies())

	require.False(t, result.Allowed)
	assert.Equal(t, []string{`src\auth\login.ts`}, result.BlockedFiles)
}
