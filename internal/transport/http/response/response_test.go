package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/orderflow/internal/domain"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.ErrValidation("bad"), http.StatusBadRequest, "validation_error"},
		{"not_found", domain.ErrNotFound("missing"), http.StatusNotFound, "not_found"},
		{"repository", domain.ErrRepository("save", errors.New("conn reset")), http.StatusServiceUnavailable, "repository_error"},
		{"publish", domain.ErrPublishAfterSave("ord-1", errors.New("no brokers")), http.StatusBadGateway, "publish_failed"},
		{"generic", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"nil", nil, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithRequestID(req.Context(), "req-1"))

			Err(rr, req, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "req-1", body.Error.RequestID)
		})
	}
}

func TestErr_KeepsCauseOutOfBody(t *testing.T) {
	rr := httptest.NewRecorder()
	Err(rr, httptest.NewRequest(http.MethodGet, "/", nil), domain.ErrPublishAfterSave("ord-1", errors.New("secret broker detail")))

	assert.NotContains(t, rr.Body.String(), "secret broker detail")
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ord-1", body.Error.Meta["order_id"])
}

func TestData(t *testing.T) {
	rr := httptest.NewRecorder()
	Data(rr, http.StatusCreated, map[string]string{"orderId": "ord-1"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"orderId":"ord-1"}}`, rr.Body.String())
}
