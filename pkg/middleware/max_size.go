package middleware

import (
	"net/http"

	apperrors "capirelay/pkg/errors"
	"capirelay/pkg/logger"
)

// MaxRequestSize rejects bodies that declare a length above limit and caps the
// rest with http.MaxBytesReader, so handlers see *http.MaxBytesError on overrun.
func MaxRequestSize(limit int64, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				log.Warn("Request body too large",
					"request_id", RequestIDFromContext(r.Context()),
					"content_length", r.ContentLength,
					"limit", limit,
					"path", r.URL.Path,
				)
				_ = apperrors.WriteError(w, apperrors.PayloadTooLarge(limit))
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
