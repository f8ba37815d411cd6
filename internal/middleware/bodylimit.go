package middleware

import (
	"net/http"

	"github.com/contactdesk/admin-server/internal/config"
	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/httputil"
)

// BodyLimitMiddleware caps request bodies. Routes that accept uploads are
// given a larger limit than the JSON default.
type BodyLimitMiddleware struct {
	maxSize int64
}

func NewBodyLimitMiddleware(maxSize int64) *BodyLimitMiddleware {
	if maxSize <= 0 {
		maxSize = config.MaxJSONBodyBytes
	}
	return &BodyLimitMiddleware{maxSize: maxSize}
}

func (m *BodyLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.ContentLength > m.maxSize {
			httputil.WriteError(w, r, apperrors.PayloadTooLarge(m.maxSize))
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, m.maxSize)
		}
		next.ServeHTTP(w, r)
	})
}
