package response

import (
	"errors"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/orderflow/internal/domain"
)

// Err maps an application error onto the error body. Causes stay in the logs.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	requestID := RequestID(r.Context())

	if err == nil {
		Fail(w, http.StatusInternalServerError, string(domain.CodeInternal), "unknown error", nil, requestID)
		return
	}

	var ae *domain.AppError
	if errors.As(err, &ae) {
		status := statusFromCode(ae.Code)
		if status >= http.StatusInternalServerError {
			zlog.Error().Err(err).Str("request_id", requestID).Msg("request failed")
		}
		Fail(w, status, string(ae.Code), ae.Message, ae.Meta, requestID)
		return
	}

	zlog.Error().Err(err).Str("request_id", requestID).Msg("unhandled error")
	Fail(w, http.StatusInternalServerError, string(domain.CodeInternal), "internal error", nil, requestID)
}

func statusFromCode(code domain.ErrCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodePublish:
		return http.StatusBadGateway
	case domain.CodeRepository:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
