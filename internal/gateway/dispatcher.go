// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/utils"
)

// UpstreamError is a non-2xx answer from a provider. The gateway maps it
// to a 502 and, critically for the credit ledger, never consumes credit
// for the failed call.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Dispatcher performs the actual provider HTTP calls. Completion calls
// use the configured long timeout; streaming calls disable the client
// timeout and rely on the request context for cancellation.
type Dispatcher struct {
	client *utils.HTTPClient
	stream *utils.HTTPClient
	logger *logger.Logger
}

// NewDispatcher constructs a Dispatcher with the given completion
// timeout.
func NewDispatcher(timeout time.Duration, log *logger.Logger) *Dispatcher {
	log.Debug().Msg("creating gateway dispatcher")
	return &Dispatcher{
		client: utils.NewHTTPClient(timeout),
		stream: utils.NewHTTPClient(0),
		logger: log,
	}
}

// Send posts the request and decodes the JSON body. The raw decoded map
// is returned so family-specific normalizers and token extraction can
// both read it.
func (d *Dispatcher) Send(ctx context.Context, req UpstreamRequest) (map[string]interface{}, error) {
	log := logger.FromContext(ctx)

	var raw map[string]interface{}
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeaders(req.Headers).
		SetBody(req.Body).
		SetResult(&raw).
		Post(req.URL)
	if err != nil {
		log.Err(err).Str("func", "*Dispatcher.Send").Msg("error: upstream request failed")
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	if resp.IsError() {
		log.Error().Str("func", "*Dispatcher.Send").Int("status", resp.StatusCode()).Msg("upstream returned error status")
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return raw, nil
}

// Stream posts the request without reading the body, handing the live
// response back for piping. The caller owns closing resp.Body.
func (d *Dispatcher) Stream(ctx context.Context, req UpstreamRequest) (*http.Response, error) {
	log := logger.FromContext(ctx)

	resp, err := d.stream.R().
		SetContext(ctx).
		SetHeaders(req.Headers).
		SetBody(req.Body).
		SetDoNotParseResponse(true).
		Post(req.URL)
	if err != nil {
		log.Err(err).Str("func", "*Dispatcher.Stream").Msg("error: upstream stream request failed")
		return nil, fmt.Errorf("upstream stream request: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		resp.RawResponse.Body.Close()
		return nil, &UpstreamError{StatusCode: resp.StatusCode()}
	}
	return resp.RawResponse, nil
}
