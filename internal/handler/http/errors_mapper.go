// SPDX-License-Identifier: Apache-2.0

package http

import (
	"errors"
	"net/http"

	"github.com/promptsentry/prompt-sentry/internal/store"
)

var errorStatusMap = map[error]int{
	store.ErrNotFound:           http.StatusNotFound,
	store.ErrSlugAlreadyExists:  http.StatusConflict,
	store.ErrModelAlreadyExists: http.StatusConflict,
	store.ErrVaultTokenNotFound: http.StatusNotFound,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
