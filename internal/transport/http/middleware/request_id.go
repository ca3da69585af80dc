package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/baechuer/orderflow/internal/transport/http/response"
)

const HeaderXRequestID = "X-Request-Id"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderXRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(response.WithRequestID(r.Context(), reqID)))
	})
}
