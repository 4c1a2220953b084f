// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"fmt"
	"strings"

	"github.com/promptsentry/prompt-sentry/internal/scope"
	"github.com/promptsentry/prompt-sentry/models"
)

// EvaluateModelPolicy checks the requested model's path rules against the
// referenced file paths. The rule is looked up by exact model name with a
// fallback to the "default" rule; no rule or no paths means allowed.
//
// A path is blocked when it matches any blocked-glob, or when a non-empty
// allowed-glob list exists and the path matches none of it.
func EvaluateModelPolicy(modelName string, filePaths []string, modelPolicies map[string]models.ModelPolicyRule) models.ModelPolicyResult {
	if len(modelPolicies) == 0 || len(filePaths) == 0 {
		return models.ModelPolicyResult{Allowed: true, BlockedFiles: []string{}}
	}

	rule, ok := modelPolicies[modelName]
	if !ok {
		rule, ok = modelPolicies["default"]
	}
	if !ok {
		return models.ModelPolicyResult{Allowed: true, BlockedFiles: []string{}}
	}

	var blockedFiles []string
	for _, fp := range filePaths {
		normalized := strings.ReplaceAll(fp, "\\", "/")

		if scope.MatchesAny(normalized, rule.BlockedPaths) {
			blockedFiles = append(blockedFiles, fp)
			continue
		}

		if len(rule.AllowedPaths) > 0 && !scope.MatchesAny(normalized, rule.AllowedPaths) {
			blockedFiles = append(blockedFiles, fp)
		}
	}

	if len(blockedFiles) > 0 {
		return models.ModelPolicyResult{
			Allowed:      false,
			BlockedFiles: blockedFiles,
			Reason:       fmt.Sprintf("Model %q is not allowed to access: %s", modelName, strings.Join(blockedFiles, ", ")),
		}
	}

	return models.ModelPolicyResult{Allowed: true, BlockedFiles: []string{}}
}
