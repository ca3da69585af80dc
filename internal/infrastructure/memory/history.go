package memory

import (
	"context"
	"sync"

	"github.com/baechuer/orderflow/internal/application/notify"
)

// HistoryStore keeps notification records per order for the life of the
// process.
type HistoryStore struct {
	mu   sync.RWMutex
	recs map[string][]notify.NotificationRecord
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{recs: map[string][]notify.NotificationRecord{}}
}

func (h *HistoryStore) Append(_ context.Context, rec notify.NotificationRecord) error {
	rec.Outcomes = append([]notify.ChannelOutcome(nil), rec.Outcomes...)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs[rec.OrderID] = append(h.recs[rec.OrderID], rec)
	return nil
}

// Get returns a copy of the order's records, oldest first.
func (h *HistoryStore) Get(_ context.Context, orderID string) ([]notify.NotificationRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	src := h.recs[orderID]
	out := make([]notify.NotificationRecord, len(src))
	for i, r := range src {
		r.Outcomes = append([]notify.ChannelOutcome(nil), r.Outcomes...)
		out[i] = r
	}
	return out, nil
}
