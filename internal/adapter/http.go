// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/utils"
	"github.com/promptsentry/prompt-sentry/models"
)

type httpGatewayClient struct {
	client *utils.HTTPClient

	logger *logger.Logger
}

// NewHTTPGatewayClient constructs an HTTP/REST implementation of
// [GatewayClient]. The base URL is normalised (a bare host:port gets an
// http scheme) and validated before any request is made.
//
// Returns an error if baseURL is empty or cannot be parsed.
func NewHTTPGatewayClient(baseURL string, timeout time.Duration, log *logger.Logger) (GatewayClient, error) {
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway address: %w", err)
	}

	client := utils.NewHTTPClient(timeout)
	client.SetBaseURL(normalized)

	return &httpGatewayClient{client: client, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Health implements [GatewayClient].
func (h *httpGatewayClient) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&status).
		Get("/api/health")
	if err != nil {
		return HealthStatus{}, fmt.Errorf("health request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return HealthStatus{}, err
	}

	return status, nil
}

// ScanText implements [GatewayClient].
func (h *httpGatewayClient) ScanText(ctx context.Context, req models.BrowserScanRequest) (models.BrowserScanResponse, error) {
	var verdict models.BrowserScanResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&verdict).
		Post("/api/browser-scan")
	if err != nil {
		return models.BrowserScanResponse{}, fmt.Errorf("scan request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.BrowserScanResponse{}, err
	}

	return verdict, nil
}

// Estimate implements [GatewayClient].
func (h *httpGatewayClient) Estimate(ctx context.Context, req models.ChatCompletionRequest) (models.EstimateResponse, error) {
	var estimate models.EstimateResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&estimate).
		Post("/api/estimate")
	if err != nil {
		return models.EstimateResponse{}, fmt.Errorf("estimate request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.EstimateResponse{}, err
	}

	return estimate, nil
}

// Complete implements [GatewayClient]. Streaming is not exposed here;
// the request is forced to the buffered form so the annotated body can
// be decoded whole.
func (h *httpGatewayClient) Complete(ctx context.Context, req models.ChatCompletionRequest) (models.AnnotatedCompletion, error) {
	req.Stream = false

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/v1/chat/completions")
	if err != nil {
		return models.AnnotatedCompletion{}, fmt.Errorf("completion request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AnnotatedCompletion{}, err
	}

	var completion models.AnnotatedCompletion
	if err = json.Unmarshal(resp.Body(), &completion); err != nil {
		return models.AnnotatedCompletion{}, fmt.Errorf("decode completion response: %w", err)
	}

	return completion, nil
}

// Usage implements [GatewayClient].
func (h *httpGatewayClient) Usage(ctx context.Context, since time.Time) (UsageSummary, error) {
	req := h.client.R().SetContext(ctx)
	if !since.IsZero() {
		req.SetQueryParam("since", since.Format(time.RFC3339))
	}

	resp, err := req.Get("/api/usage")
	if err != nil {
		return UsageSummary{}, fmt.Errorf("usage request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return UsageSummary{}, err
	}

	var summary UsageSummary
	if err = json.Unmarshal(resp.Body(), &summary); err != nil {
		return UsageSummary{}, fmt.Errorf("decode usage response: %w", err)
	}

	return summary, nil
}

// Logs implements [GatewayClient].
func (h *httpGatewayClient) Logs(ctx context.Context, query LogQuery) ([]models.LogEntry, error) {
	req := h.client.R().SetContext(ctx)
	if query.Action != "" {
		req.SetQueryParam("action", query.Action)
	}
	if query.Model != "" {
		req.SetQueryParam("model", query.Model)
	}
	if query.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(query.Limit))
	}
	if !query.Since.IsZero() {
		req.SetQueryParam("since", query.Since.Format(time.RFC3339))
	}

	resp, err := req.Get("/api/logs")
	if err != nil {
		return nil, fmt.Errorf("logs request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var page struct {
		Items []models.LogEntry `json:"items"`
	}
	if err = json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, fmt.Errorf("decode logs response: %w", err)
	}

	return page.Items, nil
}

// VaultTokens implements [GatewayClient].
func (h *httpGatewayClient) VaultTokens(ctx context.Context) ([]models.VaultEntry, error) {
	resp, err := h.client.R().SetContext(ctx).Get("/api/vault/tokens")
	if err != nil {
		return nil, fmt.Errorf("vault tokens request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var page struct {
		Tokens []models.VaultEntry `json:"tokens"`
	}
	if err = json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, fmt.Errorf("decode vault tokens response: %w", err)
	}

	return page.Tokens, nil
}

// ResolveToken implements [GatewayClient].
func (h *httpGatewayClient) ResolveToken(ctx context.Context, tokenID string) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"tokenId": tokenID}).
		Post("/api/vault/resolve")
	if err != nil {
		return "", fmt.Errorf("resolve request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var resolution struct {
		OriginalValue string `json:"originalValue"`
	}
	if err = json.Unmarshal(resp.Body(), &resolution); err != nil {
		return "", fmt.Errorf("decode resolve response: %w", err)
	}

	return resolution.OriginalValue, nil
}

// Simulate implements [GatewayClient]. targetDir is resolved on the
// gateway host, not the caller's machine.
func (h *httpGatewayClient) Simulate(ctx context.Context, targetDir string) (models.LeakSimulationReport, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"targetDir": targetDir}).
		Post("/api/simulate")
	if err != nil {
		return models.LeakSimulationReport{}, fmt.Errorf("simulate request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.LeakSimulationReport{}, err
	}

	var report models.LeakSimulationReport
	if err = json.Unmarshal(resp.Body(), &report); err != nil {
		return models.LeakSimulationReport{}, fmt.Errorf("decode simulate response: %w", err)
	}

	return report, nil
}
