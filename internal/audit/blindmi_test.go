package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promptsentry/prompt-sentry/internal/logger"
)

func TestAnalyze_PlainProseScoresLow(t *testing.T) {
	result := Analyze("The quick brown fox jumps over the lazy dog near the quiet river bank today.")

	assert.Less(t, result.Score, 0.3)
	assert.Empty(t, result.Candidates)
	assert.Zero(t, result.Signals.Entropy)
}

func TestAnalyze_RepetitiveTextRaisesNgramSignal(t *testing.T) {
	repeated := strings.Repeat("the same phrase again and again ", 12)
	result := Analyze(repeated)

	assert.Greater(t, result.Signals.NgramRepetition, 0.4)
	assert.Greater(t, result.Signals.VocabRichness, 0.5)
}

func TestAnalyze_CodeHeavyTextRaisesCodeSignal(t *testing.T) {
	code := `function handler(req, res) { const x = items.map((it) => it.id); return res.json({ x }); } // send ids`
	result := Analyze(code)

	assert.Greater(t, result.Signals.CodeStructure, 0.3)
}

func TestAnalyze_EntropySignalFromScannerHits(t *testing.T) {
	text := "api_key = \"x9K2mP5vQ8wL3nR7tY1zB4cD6fG0hJ\""
	result := Analyze(text)

	assert.Greater(t, result.Signals.Entropy, 0.0)
	assert.NotEmpty(t, result.Candidates)
}

func TestAnalyze_ShortTextAllSignalsZero(t *testing.T) {
	result := Analyze("hi")
	assert.Zero(t, result.Score)
}

func TestAnalyzer_CodeSearchBoostsCorroboratedScore(t *testing.T) {
	hits := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_count": 5}`))
	}))
	defer hits.Close()

	text := "signing token: A1b2C3d4E5f6G7h8I9j0K1l2M3n4O5 secret = Q6r7S8t9U0v1W2x3Y4z5A6b7C8d9E0"
	baseline := Analyze(text)

	analyzer := NewAnalyzer(hits.URL, 0.0, logger.NewLogger("test"))
	boosted := analyzer.Analyze(context.Background(), text)

	assert.Greater(t, boosted.Score, baseline.Score)
	assert.LessOrEqual(t, boosted.Score, 1.0)
}

func TestAnalyzer_CodeSearchFailureKeepsHeuristicScore(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	text := "signing token: A1b2C3d4E5f6G7h8I9j0K1l2M3n4O5"
	baseline := Analyze(text)

	analyzer := NewAnalyzer(down.URL, 0.0, logger.NewLogger("test"))
	result := analyzer.Analyze(context.Background(), text)
	assert.Equal(t, baseline.Score, result.Score)
}

func TestAnalyzer_NoCodeSearchConfigured(t *testing.T) {
	analyzer := NewAnalyzer("", 0.5, logger.NewLogger("test"))
	result := analyzer.Analyze(context.Background(), "plain text with nothing special in it at all")
	assert.Equal(t, Analyze("plain text with nothing special in it at all").Score, result.Score)
}
