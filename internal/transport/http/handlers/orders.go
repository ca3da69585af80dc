package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/baechuer/orderflow/internal/domain"
	"github.com/baechuer/orderflow/internal/transport/http/response"
)

const maxBodyBytes = 1 << 20

type OrderService interface {
	CreateOrder(ctx context.Context, in domain.Order) (*domain.StoredOrder, error)
	GetOrder(ctx context.Context, id string) (*domain.StoredOrder, error)
}

type OrdersHandler struct {
	svc OrderService
}

func NewOrdersHandler(svc OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

// Create handles POST /api/v1/orders
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req domain.Order
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.Err(w, r, decodeError(err))
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, o)
}

// Get handles GET /api/v1/orders/{order_id}
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, o)
}

// decodeError names the offending field when the body is well-formed JSON of
// the wrong shape.
func decodeError(err error) error {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		field := te.Field
		if field == "" {
			field = "body"
		}
		return domain.ErrValidationMeta("invalid json body", map[string]string{field: "has the wrong type"})
	}
	return domain.ErrValidation("invalid json body")
}
