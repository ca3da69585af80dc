package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/orderflow/internal/application/notify"
	"github.com/baechuer/orderflow/internal/domain"
	"github.com/baechuer/orderflow/internal/transport/http/response"
)

type HistoryReader interface {
	History(ctx context.Context, orderID string) ([]notify.NotificationRecord, error)
}

type NotificationsHandler struct {
	history HistoryReader
}

func NewNotificationsHandler(h HistoryReader) *NotificationsHandler {
	return &NotificationsHandler{history: h}
}

type historyResponse struct {
	OrderID       string                      `json:"orderId"`
	Notifications []notify.NotificationRecord `json:"notifications"`
}

// List handles GET /api/v1/notifications/{order_id}. An order with no
// notifications yet returns an empty list.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "order_id"))
	if id == "" {
		response.Err(w, r, domain.ErrValidationMeta("invalid order id", map[string]string{"orderId": "is required"}))
		return
	}

	recs, err := h.history.History(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if recs == nil {
		recs = []notify.NotificationRecord{}
	}
	response.Data(w, http.StatusOK, historyResponse{OrderID: id, Notifications: recs})
}
