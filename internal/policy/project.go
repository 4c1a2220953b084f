package policy

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/promptsentry/prompt-sentry/models"
)

// ProjectConfigName is the per-project override file discovered by
// walking up from the workspace root.
const ProjectConfigName = ".promptsentry.json"

// ProjectOverride is the partial policy a project may layer on top of
// the global config. Pointer fields distinguish "absent" from a zero
// value; list fields replace the global lists wholesale rather than
// appending.
type ProjectOverride struct {
	Extends           string                     `json:"extends,omitempty"`
	Rules             *models.PolicyRules        `json:"rules,omitempty"`
	FileScope         *projectFileScope          `json:"file_scope,omitempty"`
	BlockedPaths      []string                   `json:"blocked_paths,omitempty"`
	SeverityThreshold models.Severity            `json:"severity_threshold,omitempty"`
	SmartRouting      *models.SmartRoutingConfig `json:"smart_routing,omitempty"`
}

type projectFileScope struct {
	Mode          models.FileScopeMode `json:"mode,omitempty"`
	Blocklist     []string             `json:"blocklist,omitempty"`
	Allowlist     []string             `json:"allowlist,omitempty"`
	MaxFileSizeKB *int64               `json:"max_file_size_kb,omitempty"`
	ScanOnOpen    *bool                `json:"scan_on_open,omitempty"`
	ScanOnSend    *bool                `json:"scan_on_send,omitempty"`
}

// findProjectConfig walks up from startDir until it finds the override
// file or reaches the filesystem root.
func findProjectConfig(startDir string) string {
	current, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(current, ProjectConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// MergeProjectPolicy layers the nearest project override on top of the
// global policy. Sections merge shallowly; list fields replace. A
// missing or unreadable override file leaves the global policy intact.
func MergeProjectPolicy(global *models.PolicyConfig, projectRoot string) *models.PolicyConfig {
	configPath := findProjectConfig(projectRoot)
	if configPath == "" {
		return global
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return global
	}
	var override ProjectOverride
	if err := json.Unmarshal(raw, &override); err != nil {
		return global
	}

	merged := *global

	if override.Rules != nil {
		merged.Rules = *override.Rules
	}
	if override.FileScope != nil {
		fs := override.FileScope
		if fs.Mode != "" {
			merged.FileScope.Mode = fs.Mode
		}
		if fs.Blocklist != nil {
			merged.FileScope.Blocklist = fs.Blocklist
		}
		if fs.Allowlist != nil {
			merged.FileScope.Allowlist = fs.Allowlist
		}
		if fs.MaxFileSizeKB != nil {
			merged.FileScope.MaxFileSizeKB = *fs.MaxFileSizeKB
		}
		if fs.ScanOnOpen != nil {
			merged.FileScope.ScanOnOpen = *fs.ScanOnOpen
		}
		if fs.ScanOnSend != nil {
			merged.FileScope.ScanOnSend = *fs.ScanOnSend
		}
	}
	if override.BlockedPaths != nil {
		merged.BlockedPaths = override.BlockedPaths
	}
	if override.SeverityThreshold != "" {
		merged.SeverityThreshold = override.SeverityThreshold
	}
	if override.SmartRouting != nil {
		merged.SmartRouting = override.SmartRouting
	}

	return &merged
}
