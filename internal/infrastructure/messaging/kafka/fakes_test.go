package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/baechuer/orderflow/internal/contracts/event"
)

// fakeGroup replays log from the last marked offset on every Consume, the
// way a real group resumes from its committed offset after a rejoin.
type fakeGroup struct {
	mu       sync.Mutex
	log      []*sarama.ConsumerMessage
	feed     chan *sarama.ConsumerMessage
	next     int64
	consumes int
	paused   bool
	closed   bool
	errs     chan error
	// revokeAt makes the first session's context go done on that read,
	// simulating a generation revoked while a record is in hand.
	revokeAt int
	ends     []int64
}

func newFakeGroup(log ...*sarama.ConsumerMessage) *fakeGroup {
	return &fakeGroup{log: log, errs: make(chan error)}
}

func (g *fakeGroup) Consume(ctx context.Context, _ []string, h sarama.ConsumerGroupHandler) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return sarama.ErrClosedConsumerGroup
	}
	g.consumes++
	msgs := g.feed
	if msgs == nil {
		pending := g.log[min(int(g.next), len(g.log)):]
		ch := make(chan *sarama.ConsumerMessage, len(pending))
		for _, m := range pending {
			ch <- m
		}
		msgs = ch
	}
	g.mu.Unlock()

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sess := &fakeSession{ctx: sessCtx, cancel: cancel, g: g}
	g.mu.Lock()
	if g.consumes == 1 {
		sess.revokeAt = g.revokeAt
	}
	g.mu.Unlock()
	if err := h.Setup(sess); err != nil {
		return err
	}
	_ = h.ConsumeClaim(sess, &fakeClaim{msgs: msgs})
	cancel()
	err := h.Cleanup(sess)
	g.mu.Lock()
	g.ends = append(g.ends, g.next)
	g.mu.Unlock()
	return err
}

func (g *fakeGroup) Errors() <-chan error { return g.errs }

func (g *fakeGroup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.closed = true
		close(g.errs)
	}
	return nil
}

func (g *fakeGroup) Pause(map[string][]int32)  {}
func (g *fakeGroup) Resume(map[string][]int32) {}

func (g *fakeGroup) PauseAll() {
	g.mu.Lock()
	g.paused = true
	g.mu.Unlock()
}

func (g *fakeGroup) ResumeAll() {
	g.mu.Lock()
	g.paused = false
	g.mu.Unlock()
}

func (g *fakeGroup) committed() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next
}

func (g *fakeGroup) consumeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.consumes
}

// sessionEnds returns the committed offset seen as each session ended.
func (g *fakeGroup) sessionEnds() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int64(nil), g.ends...)
}

type fakeSession struct {
	ctx      context.Context
	cancel   context.CancelFunc
	g        *fakeGroup
	mu       sync.Mutex
	reads    int
	revokeAt int
}

func (s *fakeSession) Claims() map[string][]int32               { return map[string][]int32{"orders.events": {0}} }
func (s *fakeSession) MemberID() string                         { return "member-1" }
func (s *fakeSession) GenerationID() int32                      { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}

func (s *fakeSession) Context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.revokeAt > 0 && s.reads >= s.revokeAt {
		s.cancel()
	}
	return s.ctx
}

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	if msg.Offset+1 > s.g.next {
		s.g.next = msg.Offset + 1
	}
}

type fakeClaim struct {
	msgs chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Topic() string                            { return "orders.events" }
func (c *fakeClaim) Partition() int32                         { return 0 }
func (c *fakeClaim) InitialOffset() int64                     { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

type fakeHandler struct {
	mu    sync.Mutex
	seen  []event.Envelope
	ctxs  []context.Context
	fn    func(call int) error
	calls int
}

func (h *fakeHandler) Handle(ctx context.Context, env event.Envelope) error {
	h.mu.Lock()
	h.calls++
	call := h.calls
	h.mu.Unlock()

	var err error
	if h.fn != nil {
		err = h.fn(call)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.seen = append(h.seen, env)
		h.ctxs = append(h.ctxs, ctx)
	}
	return err
}

func (h *fakeHandler) handled() []event.Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]event.Envelope(nil), h.seen...)
}

func (h *fakeHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func createdPayload(orderID string) event.OrderCreated {
	return event.OrderCreated{
		OrderID:       orderID,
		UserID:        "u-1",
		Items:         []event.LineItem{{ID: "sku-1", Title: "Widget", Quantity: 2, Price: 9.99}},
		TotalAmount:   19.98,
		CustomerEmail: "a@b.com",
		CustomerName:  "Ada",
		Status:        "PENDING",
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func record(offset int64, value []byte) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Topic:     "orders.events",
		Partition: 0,
		Offset:    offset,
		Key:       []byte("ord-1"),
		Value:     value,
	}
}

func envelopeBytes(orderID string) []byte {
	env, err := event.NewOrderCreated(createdPayload(orderID), "order-intake")
	if err != nil {
		panic(err)
	}
	b, err := json.Marshal(env)
	if err != nil {
		panic(err)
	}
	return b
}
