// SPDX-License-Identifier: Apache-2.0

// Package audit estimates how much a text resembles memorized training
// data. The result is advisory: it feeds review workflows and the
// pre-flight estimate response, never the allow/redact/block verdict.
package audit

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/scanner"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

// Signal weights for the combined score.
const (
	weightEntropy         = 0.4
	weightNgramRepetition = 0.3
	weightVocabRichness   = 0.2
	weightCodeStructure   = 0.1
)

// codeSearchBoost is added to the score when an external code-search
// lookup corroborates a candidate snippet.
const codeSearchBoost = 0.3

var codeIndicators = []*regexp.Regexp{
	regexp.MustCompile(`[{}\[\]();]`),
	regexp.MustCompile(`\b(function|class|const|let|var|import|export|return|if|for|while)\b`),
	regexp.MustCompile(`[A-Z][a-z]+[A-Z]`),
	regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`),
	regexp.MustCompile(`//.*`),
	regexp.MustCompile(`(?s)/\*.*?\*/`),
}

// computeNgramRepetition measures how much of the text repeats itself:
// character trigram repeats, averaged with word-bigram repeats once the
// text is long enough to have them.
func computeNgramRepetition(text string) float64 {
	if len(text) < 10 {
		return 0
	}

	trigrams := map[string]int{}
	for i := 0; i+3 <= len(text); i++ {
		trigrams[text[i:i+3]]++
	}
	total := len(text) - 2

	repeated := 0
	for _, count := range trigrams {
		if count > 1 {
			repeated += count - 1
		}
	}
	charRatio := float64(repeated) / float64(total)

	words := strings.Fields(text)
	if len(words) >= 3 {
		bigrams := map[string]int{}
		for i := 0; i < len(words)-1; i++ {
			bigrams[words[i]+" "+words[i+1]]++
		}
		wordRepeat := 0
		for _, count := range bigrams {
			if count > 1 {
				wordRepeat += count - 1
			}
		}
		wordRatio := float64(wordRepeat) / math.Max(1, float64(len(words)-1))
		return math.Min(1, (charRatio+wordRatio)/2)
	}
	return math.Min(1, charRatio)
}

// computeVocabRichness inverts the type-token ratio: memorized text
// tends to have low vocabulary diversity.
func computeVocabRichness(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) < 5 {
		return 0
	}

	unique := map[string]struct{}{}
	for _, w := range words {
		unique[w] = struct{}{}
	}
	ttr := float64(len(unique)) / float64(len(words))
	return math.Min(1, math.Max(0, 1-ttr))
}

// computeCodeStructure scores the density of code-like tokens per
// character.
func computeCodeStructure(text string) float64 {
	if len(text) < 20 {
		return 0
	}

	total := 0
	for _, re := range codeIndicators {
		total += len(re.FindAllString(text, -1))
	}
	density := float64(total) / float64(len(text))
	return math.Min(1, density*10)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Analyze runs the multi-signal heuristic over one text. The entropy
// signal reuses the entropy scanner's hits, normalized against three as
// a saturation point; up to ten hit values come back as candidate
// snippets for review.
func Analyze(text string) models.BlindMIResult {
	entropyMatches := scanner.ScanEntropy(text)
	entropySignal := math.Min(1, float64(len(entropyMatches))/3)

	ngramRepetition := computeNgramRepetition(text)
	vocabRichness := computeVocabRichness(text)
	codeStructure := computeCodeStructure(text)

	score := weightEntropy*entropySignal +
		weightNgramRepetition*ngramRepetition +
		weightVocabRichness*vocabRichness +
		weightCodeStructure*codeStructure

	candidates := make([]string, 0, 10)
	for _, m := range entropyMatches {
		if len(candidates) == 10 {
			break
		}
		candidates = append(candidates, m.Value)
	}

	return models.BlindMIResult{
		Score:      round3(score),
		Candidates: candidates,
		Signals: models.BlindMISignals{
			Entropy:         round3(entropySignal),
			NgramRepetition: round3(ngramRepetition),
			VocabRichness:   round3(vocabRichness),
			CodeStructure:   round3(codeStructure),
		},
	}
}

// Analyzer adds optional code-search corroboration on top of the pure
// heuristic. A nil or unreachable code-search service degrades to the
// plain Analyze result; audit failures never fail a request.
type Analyzer struct {
	codeSearchURL string
	threshold     float64
	client        *utils.HTTPClient
	logger        *logger.Logger
}

// NewAnalyzer constructs an Analyzer. codeSearchURL may be empty, which
// disables corroboration entirely. threshold is the score at which a
// corroboration lookup is worth the network round trip.
func NewAnalyzer(codeSearchURL string, threshold float64, log *logger.Logger) *Analyzer {
	log.Debug().Msg("creating privacy audit analyzer")
	return &Analyzer{
		codeSearchURL: codeSearchURL,
		threshold:     threshold,
		client:        utils.NewHTTPClient(3 * time.Second),
		logger:        log,
	}
}

type codeSearchResponse struct {
	TotalCount int `json:"total_count"`
}

// Analyze runs the heuristic and, when the score crosses the threshold
// and a code-search service is configured, checks the strongest
// candidate against it. A corroborated hit boosts the score, capped at
// one.
func (a *Analyzer) Analyze(ctx context.Context, text string) models.BlindMIResult {
	result := Analyze(text)
	if a.codeSearchURL == "" || result.Score < a.threshold || len(result.Candidates) == 0 {
		return result
	}

	hits, ok := a.searchHits(ctx, result.Candidates[0])
	if !ok {
		logger.FromContext(ctx).Warn().Str("func", "*Analyzer.Analyze").Msg("code search lookup failed, keeping heuristic score")
		return result
	}

	if hits > 0 {
		result.Score = round3(math.Min(1, result.Score+codeSearchBoost))
	}
	return result
}

func (a *Analyzer) searchHits(ctx context.Context, candidate string) (int, bool) {
	var found codeSearchResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("q", candidate).
		SetResult(&found).
		Get(a.codeSearchURL)
	if err != nil || resp.IsError() {
		return 0, false
	}
	return found.TotalCount, true
}

// PrivacyRisk reports the audit in the shape the pre-flight estimate
// exposes: the raw heuristic score, the corroboration hit count, and
// the combined score rounded to two decimals. Corroboration runs only
// when the policy asks for it and the score crosses the policy
// threshold (0.5 when unset); lookup failures count as zero hits.
func (a *Analyzer) PrivacyRisk(ctx context.Context, text string, cfg models.AuditConfig) *models.PrivacyRisk {
	result := Analyze(text)

	threshold := cfg.PrivacyRiskThreshold
	if threshold <= 0 {
		threshold = 0.5
	}

	hits := 0
	if cfg.UseCodeSearch && a.codeSearchURL != "" && result.Score >= threshold && len(result.Candidates) > 0 {
		if n, ok := a.searchHits(ctx, result.Candidates[0]); ok {
			hits = n
		} else {
			logger.FromContext(ctx).Warn().Str("func", "*Analyzer.PrivacyRisk").Msg("code search lookup failed, keeping heuristic score")
		}
	}

	combined := result.Score
	if hits > 0 {
		combined = math.Min(1, combined+codeSearchBoost)
	}

	return &models.PrivacyRisk{
		BlindMIScore:     result.Score,
		CodeSearchHits:   hits,
		PrivacyRiskScore: math.Round(combined*100) / 100,
	}
}
