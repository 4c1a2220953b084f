package utils

// EstimateTokens approximates the token count of text as one token per
// four characters, rounded up. Coarse, but consistent with how the cost
// estimator and credit ledger account for input size before the upstream
// reports exact usage.
func EstimateTokens(text string) int64 {
	if text == "" {
		return 0
	}
	return int64((len(text) + 3) / 4)
}

// EstimateCost converts a token count into dollars using a per-1K-token
// price.
func EstimateCost(tokens int64, costPer1K float64) float64 {
	return float64(tokens) / 1000 * costPer1K
}
