// SPDX-License-Identifier: Apache-2.0

// Package firewall runs the per-request inspection pipeline: scanning,
// context severity adjustment, policy decision, prompt-injection and
// per-model checks, redaction, and the persisted decision log.
package firewall

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/policy"
	"github.com/promptsentry/prompt-sentry/internal/redactor"
	"github.com/promptsentry/prompt-sentry/internal/scanner"
	"github.com/promptsentry/prompt-sentry/internal/scope"
	"github.com/promptsentry/prompt-sentry/internal/store"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

// Evaluation is everything the pipeline learned about one request. It is
// produced once per request and threaded through redaction, routing, and
// logging so no stage re-scans the text.
type Evaluation struct {
	Policy       *models.PolicyConfig
	RawText      string
	Secrets      models.SecretScanResult
	PII          models.PIIScanResult
	FileScope    []models.FileScopeResult
	Decision     models.PolicyDecision
	Injection    *models.InjectionResult
	ModelPolicy  *models.ModelPolicyResult
	Replacements []redactor.Replacement
}

// Outcome describes how a request ended, for the persisted decision log.
type Outcome struct {
	Model         string
	Provider      string
	SanitizedText string
	Action        models.Action
	Reasons       []string
	StartedAt     time.Time
}

// Service is the pipeline front door. Handlers call Evaluate once, act
// on the verdict, and report the terminal outcome through LogOutcome.
type Service struct {
	policies      *policy.Loader
	logs          store.LogRepository
	workspaceRoot string
	logHashKey    string
	logger        *logger.Logger
	now           func() time.Time
}

func NewService(policies *policy.Loader, logs store.LogRepository, workspaceRoot, logHashKey string, log *logger.Logger) *Service {
	log.Debug().Msg("creating firewall service")
	return &Service{
		policies:      policies,
		logs:          logs,
		workspaceRoot: workspaceRoot,
		logHashKey:    logHashKey,
		logger:        log,
		now:           time.Now,
	}
}

// MergeMessages flattens a message list into the single text the
// scanners operate on. Redaction never uses this form; messages are
// redacted independently.
func MergeMessages(messages []models.ChatMessage) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.Content
	}
	return strings.Join(parts, "\n")
}

func appendUnique(reasons []string, extra []string) []string {
	seen := make(map[string]struct{}, len(reasons)+len(extra))
	out := make([]string, 0, len(reasons)+len(extra))
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	for _, r := range extra {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// adjustMatches applies the context severity adjuster to every match in
// place and returns the human-readable adjustment reasons. Adjuster
// problems are treated as "no adjustment".
func adjustMatches(secrets []models.SecretMatch, pii []models.PIIMatch, filePaths []string) []string {
	var reasons []string
	for i := range secrets {
		adj := scanner.AdjustSeverity(secrets[i].Value, string(secrets[i].Type), secrets[i].Severity, filePaths)
		if adj != nil && adj.AdjustedSeverity != secrets[i].Severity {
			secrets[i].Severity = adj.AdjustedSeverity
			reasons = append(reasons, fmt.Sprintf("%s (%s)", adj.Reason, secrets[i].Type))
		}
	}
	for i := range pii {
		adj := scanner.AdjustSeverity(pii[i].Value, string(pii[i].Type), pii[i].Severity, filePaths)
		if adj != nil && adj.AdjustedSeverity != pii[i].Severity {
			pii[i].Severity = adj.AdjustedSeverity
			reasons = append(reasons, fmt.Sprintf("%s (%s)", adj.Reason, pii[i].Type))
		}
	}
	return reasons
}

// Evaluate runs every inspection stage over one request and returns the
// combined verdict. The only error it can return is a policy file that
// exists but cannot be read or parsed.
func (s *Service) Evaluate(ctx context.Context, req *models.ChatCompletionRequest) (*Evaluation, error) {
	log := logger.FromContext(ctx)

	projectRoot := s.workspaceRoot
	var filePaths []string
	if req.Metadata != nil {
		if req.Metadata.ProjectRoot != "" {
			projectRoot = req.Metadata.ProjectRoot
		}
		filePaths = req.Metadata.FilePaths
	}

	global, err := s.policies.LoadGlobal()
	if err != nil {
		log.Err(err).Str("func", "*Service.Evaluate").Msg("error: load policy")
		return nil, fmt.Errorf("load policy: %w", err)
	}
	cfg := policy.MergeProjectPolicy(global, projectRoot)

	eval := &Evaluation{
		Policy:  cfg,
		RawText: MergeMessages(req.Messages),
	}

	eval.FileScope = scope.NewValidator(projectRoot).ValidateAll(filePaths, cfg.FileScope)

	eval.Secrets = scanner.ScanSecrets(eval.RawText)
	eval.PII = scanner.ScanPII(eval.RawText)

	if entropy := scanner.ScanEntropy(eval.RawText); len(entropy) > 0 {
		eval.Secrets.Secrets = append(eval.Secrets.Secrets, entropy...)
		eval.Secrets.HasSecrets = true
	}

	contextReasons := adjustMatches(eval.Secrets.Secrets, eval.PII.PII, filePaths)

	eval.Decision = policy.Decide(eval.Secrets, eval.PII, cfg, eval.FileScope)
	if len(contextReasons) > 0 {
		eval.Decision.Reasons = appendUnique(eval.Decision.Reasons, contextReasons)
	}

	if cfg.PromptInjection == nil || cfg.PromptInjection.Enabled == nil || *cfg.PromptInjection.Enabled {
		threshold := 0
		if cfg.PromptInjection != nil {
			threshold = cfg.PromptInjection.Threshold
		}
		result := scanner.ScanPromptInjection(eval.RawText, threshold)
		eval.Injection = &result
		if result.IsInjection {
			eval.Decision.Action = models.ActionBlock
			if result.Score > eval.Decision.RiskScore {
				eval.Decision.RiskScore = result.Score
			}
			eval.Decision.Reasons = append(eval.Decision.Reasons,
				fmt.Sprintf("Prompt injection detected (score: %d)", result.Score))
		}
	}

	if cfg.ModelPolicies != nil {
		result := policy.EvaluateModelPolicy(req.Model, filePaths, cfg.ModelPolicies)
		eval.ModelPolicy = &result
	}

	eval.Replacements = redactor.FromScanResults(eval.Secrets.Secrets, eval.PII.PII)
	return eval, nil
}

// RedactMessages redacts each message independently and returns the
// redacted copy alongside the sanitized flattened text kept for the log.
func RedactMessages(messages []models.ChatMessage, replacements []redactor.Replacement) ([]models.ChatMessage, string) {
	out := make([]models.ChatMessage, len(messages))
	for i, m := range messages {
		out[i] = models.ChatMessage{Role: m.Role, Content: redactor.Redact(m.Content, replacements)}
	}
	return out, MergeMessages(out)
}

// LogOutcome persists the terminal pipeline result. The raw prompt is
// hashed before it is written; a configured hash key turns the hash into
// an HMAC signature so stored entries are tamper-evident. Log failures
// never fail the request.
func (s *Service) LogOutcome(ctx context.Context, eval *Evaluation, out Outcome) {
	hash := utils.SHA256Hex(eval.RawText)
	if s.logHashKey != "" {
		hash = utils.HashString(eval.RawText, s.logHashKey)
	}

	entry := models.LogEntry{
		Timestamp:      s.now().UTC(),
		Model:          out.Model,
		Provider:       out.Provider,
		OriginalHash:   hash,
		SanitizedText:  out.SanitizedText,
		SecretsFound:   len(eval.Secrets.Secrets),
		PIIFound:       len(eval.PII.PII),
		FilesBlocked:   len(eval.Decision.FilesBlocked),
		RiskScore:      eval.Decision.RiskScore,
		Action:         out.Action,
		Reasons:        out.Reasons,
		ResponseTimeMs: s.now().Sub(out.StartedAt).Milliseconds(),
	}

	if _, err := s.logs.AppendLog(ctx, entry); err != nil {
		s.logger.Err(err).Str("func", "*Service.LogOutcome").Msg("error: append decision log")
	}
}
