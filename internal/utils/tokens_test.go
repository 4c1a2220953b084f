package utils

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int64
	}{
		{"empty", "", 0},
		{"one char rounds up", "a", 1},
		{"exact multiple", "abcd", 1},
		{"five chars", "abcde", 2},
		{"eight chars", "abcdefgh", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimateCost(t *testing.T) {
	got := EstimateCost(2000, 0.01)
	if got != 0.02 {
		t.Errorf("expected 0.02, got %f", got)
	}
	if EstimateCost(0, 0.01) != 0 {
		t.Error("expected zero cost for zero tokens")
	}
}
