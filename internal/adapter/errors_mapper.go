// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/promptsentry/prompt-sentry/models"
)

// mapHTTPError translates a gateway response into the package's sentinel
// errors so callers can use [errors.Is] without knowing status codes.
// The gateway's structured error body is folded into the message; a 403
// additionally carries the block reasons when the body has them.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	detail := strings.TrimSpace(string(resp.Body()))
	var body models.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		detail = body.Error
		if len(body.Reasons) > 0 {
			detail += ": " + strings.Join(body.Reasons, "; ")
		}
	}

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, detail)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrBlocked, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrCreditExhausted, detail)
	case http.StatusBadGateway:
		return fmt.Errorf("%w: %s", ErrUpstream, detail)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrVaultUnavailable, detail)
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrInternal, detail)
	default:
		if detail == "" {
			detail = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode(), detail)
	}
}
