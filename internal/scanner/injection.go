// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"regexp"

	"github.com/promptsentry/prompt-sentry/models"
)

// DefaultInjectionThreshold is the score at or above which a text is
// classified as a prompt-injection attempt, unless policy overrides it.
const DefaultInjectionThreshold = 60

type injectionPattern struct {
	name   string
	regex  *regexp.Regexp
	weight int
}

// injectionPatterns are the weighted detection rules. Every occurrence
// contributes its weight to the score (no per-pattern deduplication);
// the total is capped at 100.
var injectionPatterns = []injectionPattern{
	{"instruction_override", regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above|earlier|preceding)\s+(instructions|prompts|rules|guidelines|context)`), 30},
	{"new_instructions", regexp.MustCompile(`(?i)new\s+instructions?\s*[:=]`), 25},
	{"role_play", regexp.MustCompile(`(?i)(you\s+are\s+now|pretend\s+(you\s+are|to\s+be)|act\s+as\s+(if|a|an|though))`), 20},
	{"system_prompt_extract", regexp.MustCompile(`(?i)repeat\s+(the|your)\s+(system|initial|original|first)\s+(prompt|instructions?|message)`), 30},
	{"data_exfil", regexp.MustCompile(`(?i)send\s+(all|every|the|my)\s+(files?|data|code|content|secrets?|keys?|credentials?)\s+to`), 35},
	{"dan_jailbreak", regexp.MustCompile(`(?i)\b(DAN|Do\s+Anything\s+Now|jailbreak|bypass\s+(filter|safety|restriction))\b`), 25},
	{"encoding_bypass", regexp.MustCompile(`(?i)(base64\s+decode|atob\(|\\x[0-9a-f]{2}|&#x?[0-9a-f]+;)`), 15},
	{"delimiter_injection", regexp.MustCompile("(?i)(```system|<\\|im_start\\|>|<\\|im_end\\|>|\\[INST\\]|\\[/INST\\]|<<SYS>>)"), 30},
	{"output_format_hijack", regexp.MustCompile(`(?i)(respond\s+only\s+with|output\s+format\s*:|from\s+now\s+on\s+you\s+(will|must|should))`), 20},
	{"persona_switch", regexp.MustCompile(`(?i)(switch\s+(to|into)\s+(evil|unrestricted|unfiltered)|enable\s+developer\s+mode)`), 25},
	{"context_confusion", regexp.MustCompile(`(?i)(forget\s+(everything|all|what)|disregard\s+(all|any|the)\s+(previous|above|prior))`), 25},
	{"chain_of_thought_leak", regexp.MustCompile(`(?i)(show\s+(me\s+)?your\s+(reasoning|chain\s+of\s+thought|internal)|reveal\s+(your|the)\s+(system|hidden))`), 20},
	{"indirect_injection", regexp.MustCompile(`(?i)(when\s+you\s+see\s+this|if\s+you\s+read\s+this|hidden\s+instruction)`), 20},
}

// ScanPromptInjection scores text against the weighted injection
// patterns. threshold <= 0 means DefaultInjectionThreshold.
func ScanPromptInjection(text string, threshold int) models.InjectionResult {
	if threshold <= 0 {
		threshold = DefaultInjectionThreshold
	}

	var matches []models.InjectionMatch
	totalScore := 0

	for _, pattern := range injectionPatterns {
		for _, loc := range pattern.regex.FindAllStringIndex(text, -1) {
			matches = append(matches, models.InjectionMatch{
				Pattern:  pattern.name,
				Matched:  text[loc[0]:loc[1]],
				Position: loc[0],
				Weight:   pattern.weight,
			})
			totalScore += pattern.weight
		}
	}

	score := totalScore
	if score > 100 {
		score = 100
	}

	return models.InjectionResult{
		Score:       score,
		IsInjection: score >= threshold,
		Matches:     matches,
	}
}
