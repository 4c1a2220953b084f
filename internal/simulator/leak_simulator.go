// SPDX-License-Identifier: Apache-2.0

// Package simulator answers "what would leak if every file in this tree
// were pasted into a prompt": it walks a directory, runs the secret and
// PII scanners over each in-scope text file, and layers inference
// patterns on top that flag what an attacker could learn about the
// system even without a literal credential.
package simulator

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/scanner"
	"github.com/promptsentry/prompt-sentry/internal/scope"
	"github.com/promptsentry/prompt-sentry/models"
)

type inferencePattern struct {
	re       *regexp.Regexp
	category string
	detail   string
	severity models.Severity
}

var inferencePatterns = []inferencePattern{
	{regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(\w+)`), "Database Schema", "SQL table definition detected", models.SeverityCritical},
	{regexp.MustCompile(`(?i)(stripe|paypal|razorpay|braintree)`), "Payment Gateway", "Payment provider integration detected", models.SeverityCritical},
	{regexp.MustCompile(`(?i)(jwt|jsonwebtoken|refresh.?token|access.?token)`), "Authentication Flow", "Authentication mechanism detected", models.SeverityHigh},
	{regexp.MustCompile(`(?i)(app\.(get|post|put|delete|patch)\s*\(|router\.(get|post|put|delete|patch))`), "API Endpoints", "Route/endpoint definition detected", models.SeverityHigh},
	{regexp.MustCompile(`(?i)(pricing|discount|commission|margin|markup)\s*[=:]`), "Business Logic", "Pricing or financial logic detected", models.SeverityMedium},
	{regexp.MustCompile(`(?i)(aws|gcp|azure|us-east|eu-west|ap-south|ecs|eks|lambda|s3)`), "Infrastructure", "Cloud infrastructure reference detected", models.SeverityMedium},
	{regexp.MustCompile(`process\.env\.\w+`), "Environment Variables", "Environment variable reference detected", models.SeverityHigh},
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\s.+FROM\s`), "Database Queries", "Raw SQL query detected", models.SeverityHigh},
}

var defaultIgnore = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/build/**",
	"**/vendor/**",
	"**/*.min.js",
	"**/package-lock.json",
	"**/yarn.lock",
	"**/go.sum",
}

var textExtensions = map[string]struct{}{
	".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {}, ".mjs": {}, ".cjs": {},
	".py": {}, ".rb": {}, ".go": {}, ".rs": {}, ".java": {}, ".kt": {}, ".swift": {}, ".cs": {},
	".json": {}, ".yaml": {}, ".yml": {}, ".toml": {}, ".xml": {}, ".csv": {},
	".sql": {}, ".graphql": {}, ".gql": {},
	".sh": {}, ".bash": {}, ".zsh": {}, ".fish": {},
	".env": {}, ".cfg": {}, ".conf": {}, ".ini": {}, ".properties": {},
	".md": {}, ".txt": {}, ".html": {}, ".css": {}, ".scss": {}, ".less": {},
	".dockerfile": {}, ".tf": {}, ".hcl": {},
}

func isTextFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return true
	}
	_, ok := textExtensions[ext]
	return ok
}

func isIgnored(relative string) bool {
	for _, pattern := range defaultIgnore {
		if ok, _ := doublestar.Match(pattern, relative); ok {
			return true
		}
	}
	return false
}

var severityOrder = map[models.Severity]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityMedium:   2,
}

// Simulator runs leak simulations rooted at a working directory.
type Simulator struct {
	logger *logger.Logger
}

// NewSimulator constructs a Simulator.
func NewSimulator(log *logger.Logger) *Simulator {
	log.Debug().Msg("creating leak simulator")
	return &Simulator{logger: log}
}

func analyzeContent(relative, content string) []models.LeakFinding {
	var findings []models.LeakFinding

	secretResult := scanner.ScanSecrets(content)
	for _, secret := range secretResult.Secrets {
		findings = append(findings, models.LeakFinding{
			File:     relative,
			Category: "Secret: " + string(secret.Type),
			Detail:   string(secret.Type) + " detected (value redacted)",
			Severity: secret.Severity,
			Count:    1,
		})
	}

	piiResult := scanner.ScanPII(content)
	for _, pii := range piiResult.PII {
		findings = append(findings, models.LeakFinding{
			File:     relative,
			Category: "PII: " + string(pii.Type),
			Detail:   string(pii.Type) + " detected",
			Severity: pii.Severity,
			Count:    1,
		})
	}

	for _, pattern := range inferencePatterns {
		hits := pattern.re.FindAllStringIndex(content, -1)
		if len(hits) == 0 {
			continue
		}
		findings = append(findings, models.LeakFinding{
			File:     relative,
			Category: pattern.category,
			Detail:   pattern.detail,
			Severity: pattern.severity,
			Count:    len(hits),
		})
	}

	return findings
}

// dedupe collapses findings to one row per (category, file), summing
// counts.
func dedupe(findings []models.LeakFinding) []models.LeakFinding {
	index := map[string]int{}
	var out []models.LeakFinding
	for _, f := range findings {
		key := f.Category + ":" + f.File
		if i, ok := index[key]; ok {
			out[i].Count += f.Count
			continue
		}
		index[key] = len(out)
		out = append(out, f)
	}
	return out
}

// exposureScore aggregates finding severities the same way the policy
// engine weighs scan matches, capped at 100.
func exposureScore(findings []models.LeakFinding) int {
	score := 0
	for _, f := range findings {
		switch f.Severity {
		case models.SeverityCritical:
			score += 40
		case models.SeverityHigh:
			score += 20
		default:
			score += 10
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Run walks root and reports what the tree would leak. Files outside
// the file-scope config, over maxFileSizeKB, non-text, or matching the
// built-in ignore list are skipped and counted.
func (s *Simulator) Run(root string, scopeConfig models.FileScopeConfig, maxFileSizeKB int64) (models.LeakSimulationReport, error) {
	validator := scope.NewValidator(root)

	report := models.LeakSimulationReport{Root: root}
	var all []models.LeakFinding

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relative, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		relative = filepath.ToSlash(relative)

		if d.IsDir() {
			switch d.Name() {
			case "node_modules", ".git", "dist", "build", "vendor":
				return fs.SkipDir
			}
			return nil
		}
		if isIgnored(relative) || !isTextFile(path) {
			return nil
		}

		if result := validator.Check(path, scopeConfig); !result.Allowed {
			report.FilesSkipped++
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil || (maxFileSizeKB > 0 && info.Size() > maxFileSizeKB*1024) {
			report.FilesSkipped++
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			report.FilesSkipped++
			return nil
		}

		findings := analyzeContent(relative, string(content))
		for _, f := range findings {
			if strings.HasPrefix(f.Category, "Secret:") {
				report.SecretsFound += f.Count
			}
			if strings.HasPrefix(f.Category, "PII:") {
				report.PIIFound += f.Count
			}
		}
		all = append(all, findings...)
		report.FilesScanned++
		return nil
	})
	if walkErr != nil {
		return models.LeakSimulationReport{}, walkErr
	}

	deduped := dedupe(all)
	sort.SliceStable(deduped, func(i, j int) bool {
		return severityOrder[deduped[i].Severity] < severityOrder[deduped[j].Severity]
	})

	report.Findings = deduped
	report.ExposureScore = exposureScore(deduped)
	return report, nil
}
