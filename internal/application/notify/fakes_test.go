package notify

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errBoom = errors.New("boom")

type fakeChannel struct {
	name    string
	err     error
	panics  bool
	down    bool
	started chan<- string
	release <-chan struct{}

	mu    sync.Mutex
	calls []NotificationType
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Send(ctx context.Context, kind NotificationType, n OrderNotice) (SendResult, error) {
	c.mu.Lock()
	c.calls = append(c.calls, kind)
	c.mu.Unlock()

	if c.started != nil {
		c.started <- c.name
	}
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return SendResult{}, ctx.Err()
		}
	}
	if c.panics {
		panic("sender exploded")
	}
	if c.err != nil {
		return SendResult{}, c.err
	}
	return SendResult{
		MessageID: c.name + "-msg",
		Channel:   c.name,
		Recipient: n.CustomerEmail,
		Subject:   "Order " + n.OrderID,
		SentAt:    time.Now(),
	}, nil
}

func (c *fakeChannel) Healthy(context.Context) bool { return !c.down }

func (c *fakeChannel) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type fakeHistory struct {
	mu   sync.Mutex
	recs map[string][]NotificationRecord
	err  error
}

func newFakeHistory() *fakeHistory { return &fakeHistory{recs: map[string][]NotificationRecord{}} }

func (h *fakeHistory) Append(_ context.Context, rec NotificationRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.recs[rec.OrderID] = append(h.recs[rec.OrderID], rec)
	return nil
}

func (h *fakeHistory) Get(_ context.Context, orderID string) ([]NotificationRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]NotificationRecord(nil), h.recs[orderID]...), nil
}

type fakeDedup struct {
	mu     sync.Mutex
	keys   map[string]bool
	hasErr error
	addErr error
}

func newFakeDedup() *fakeDedup { return &fakeDedup{keys: map[string]bool{}} }

func (d *fakeDedup) Has(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hasErr != nil {
		return false, d.hasErr
	}
	return d.keys[key], nil
}

func (d *fakeDedup) Add(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.addErr != nil {
		return d.addErr
	}
	d.keys[key] = true
	return nil
}

func (d *fakeDedup) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.keys)
}

type fakeNotifier struct {
	mu      sync.Mutex
	err     error
	kinds   []NotificationType
	notices []OrderNotice
}

func (f *fakeNotifier) record(kind NotificationType, n OrderNotice) (NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	f.notices = append(f.notices, n)
	if f.err != nil {
		return NotificationRecord{}, f.err
	}
	return NotificationRecord{OrderID: n.OrderID, Type: kind}, nil
}

func (f *fakeNotifier) SendOrderConfirmation(_ context.Context, n OrderNotice) (NotificationRecord, error) {
	return f.record(KindConfirmation, n)
}

func (f *fakeNotifier) SendStatusUpdate(_ context.Context, n OrderNotice) (NotificationRecord, error) {
	return f.record(KindStatusUpdate, n)
}

func (f *fakeNotifier) SendCancellation(_ context.Context, n OrderNotice) (NotificationRecord, error) {
	return f.record(KindCancellation, n)
}

func (f *fakeNotifier) calls() []NotificationType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]NotificationType(nil), f.kinds...)
}
