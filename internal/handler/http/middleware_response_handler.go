// SPDX-License-Identifier: Apache-2.0

package http

import "net/http"

// responseWriter decorates [http.ResponseWriter] to record the status
// code and the number of body bytes written, so withLogging can report
// them after the downstream handler returns.
//
// WriteHeader is forwarded exactly once; later calls are ignored, as the
// [http.ResponseWriter] contract documents. Flush is forwarded when the
// underlying writer supports it, which streaming passthrough relies on.
type responseWriter struct {
	http.ResponseWriter

	// status is recorded on the first WriteHeader call (implicit or
	// explicit). Zero until then.
	status int

	// size accumulates body bytes across all Write calls.
	size int
}

func (w *responseWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(body []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(body)
	w.size += n
	return n, err
}

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
