// SPDX-License-Identifier: Apache-2.0

package adapter

import "errors"

var (
	ErrBadRequest       = errors.New("bad request")
	ErrBlocked          = errors.New("request blocked")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrCreditExhausted  = errors.New("credit limit exhausted")
	ErrUpstream         = errors.New("upstream provider error")
	ErrVaultUnavailable = errors.New("vault unavailable")
	ErrInternal         = errors.New("internal server error")
)
