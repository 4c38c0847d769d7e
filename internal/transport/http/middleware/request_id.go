package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"apas/internal/platform/requestctx"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// RequestID honors an inbound X-Request-ID and mints one otherwise. The id
// rides the context so audit rows and log lines can carry it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
