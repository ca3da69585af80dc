package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/contracts/event"
	"github.com/baechuer/orderflow/internal/metrics"
)

type State string

const (
	StateStopped    State = "STOPPED"
	StateConnecting State = "CONNECTING"
	StateSubscribed State = "SUBSCRIBED"
	StateRunning    State = "RUNNING"
	StatePaused     State = "PAUSED"
	StateStopping   State = "STOPPING"
)

var allStates = []string{
	string(StateStopped), string(StateConnecting), string(StateSubscribed),
	string(StateRunning), string(StatePaused), string(StateStopping),
}

var ErrInvalidState = errors.New("invalid consumer state")

// errSessionGone means the group generation ended before a record was
// handled. The record is left for whoever owns the partition next.
var errSessionGone = errors.New("consumer session ended")

// Handler processes one validated-on-the-wire envelope. A non-nil error
// leaves the record uncommitted so it is delivered again.
type Handler interface {
	Handle(ctx context.Context, env event.Envelope) error
}

type DialFunc func() (sarama.ConsumerGroup, error)

type ConsumerOption func(*Consumer)

// WithBackoff bounds the delay between failed sessions.
func WithBackoff(min, max time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.minBackoff = min
		c.maxBackoff = max
	}
}

type Consumer struct {
	dial    DialFunc
	topic   string
	handler Handler
	lg      zerolog.Logger

	minBackoff time.Duration
	maxBackoff time.Duration

	mu            sync.Mutex
	state         State
	group         sarama.ConsumerGroup
	cancel        context.CancelFunc
	cancelSession context.CancelFunc
	sessionActive bool
	failed        error
	resumeCh      chan struct{}
	doneCh        chan struct{}
	errsDone      chan struct{}
}

func NewConsumer(dial DialFunc, topic string, h Handler, lg zerolog.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		dial:       dial,
		topic:      topic,
		handler:    h,
		lg:         lg.With().Str("component", "kafka_consumer").Str("topic", topic).Logger(),
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
		state:      StateStopped,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Consumer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Healthy reports whether records are currently flowing.
func (c *Consumer) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateRunning && c.sessionActive
}

func (c *Consumer) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.lg.Info().Str("from", string(c.state)).Str("to", string(s)).Msg("consumer state")
	c.state = s
	metrics.SetConsumerState(string(s), allStates)
}

func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateStopped {
		st := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidState, st)
	}
	if c.handler == nil {
		c.mu.Unlock()
		return fmt.Errorf("nil handler")
	}
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	group, err := c.dial()
	if err != nil {
		c.mu.Lock()
		c.setStateLocked(StateStopped)
		c.mu.Unlock()
		return fmt.Errorf("kafka consumer group: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.group = group
	c.cancel = cancel
	c.doneCh = make(chan struct{})
	c.errsDone = make(chan struct{})
	c.setStateLocked(StateSubscribed)
	done, errsDone := c.doneCh, c.errsDone
	c.mu.Unlock()

	go c.drainErrors(group, errsDone)
	go c.run(runCtx, group, done)
	return nil
}

func (c *Consumer) drainErrors(group sarama.ConsumerGroup, done chan struct{}) {
	defer close(done)
	for err := range group.Errors() {
		c.lg.Warn().Err(err).Msg("consumer group error")
	}
}

// Stop ends the session, waits for the record in flight and closes the
// group. ctx bounds the wait.
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateStopped, StateStopping:
		c.mu.Unlock()
		return nil
	case StateConnecting:
		c.mu.Unlock()
		return fmt.Errorf("%w: stop while connecting", ErrInvalidState)
	}
	c.setStateLocked(StateStopping)
	cancel, done, errsDone, group := c.cancel, c.doneCh, c.errsDone, c.group
	c.mu.Unlock()

	cancel()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		c.lg.Warn().Err(err).Msg("stop deadline reached with a record in flight")
	}

	if cerr := group.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close consumer group: %w", cerr)
	}
	if err == nil {
		<-errsDone
	}

	c.mu.Lock()
	c.group = nil
	c.cancel = nil
	c.cancelSession = nil
	c.sessionActive = false
	c.resumeCh = nil
	c.setStateLocked(StateStopped)
	c.mu.Unlock()
	return err
}

// Pause stops fetching without leaving the group.
func (c *Consumer) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return fmt.Errorf("%w: pause from %s", ErrInvalidState, c.state)
	}
	c.group.PauseAll()
	c.resumeCh = make(chan struct{})
	c.setStateLocked(StatePaused)
	return nil
}

func (c *Consumer) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidState, c.state)
	}
	c.group.ResumeAll()
	close(c.resumeCh)
	c.resumeCh = nil
	if c.sessionActive {
		c.setStateLocked(StateRunning)
	} else {
		c.setStateLocked(StateSubscribed)
	}
	return nil
}

func (c *Consumer) run(ctx context.Context, group sarama.ConsumerGroup, done chan struct{}) {
	defer close(done)

	backoff := c.minBackoff
	topics := []string{c.topic}

	for {
		if ctx.Err() != nil {
			c.lg.Info().Msg("consumer supervisor exiting")
			return
		}

		sessCtx, cancelSess := context.WithCancel(ctx)
		c.mu.Lock()
		c.cancelSession = cancelSess
		c.failed = nil
		c.mu.Unlock()

		err := group.Consume(sessCtx, topics, &groupHandler{c: c})
		cancelSess()

		c.mu.Lock()
		failed := c.failed
		c.cancelSession = nil
		c.mu.Unlock()

		if ctx.Err() != nil {
			c.lg.Info().Msg("consumer supervisor exiting")
			return
		}
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			c.lg.Warn().Msg("consumer group closed underneath the supervisor")
			return
		}

		if err == nil && failed == nil {
			// rebalance; rejoin at once
			backoff = c.minBackoff
			continue
		}
		if err == nil {
			err = failed
		}

		c.lg.Warn().Err(err).Dur("backoff", backoff).Msg("session ended with an error; rejoining")
		if !sleepOrDone(ctx, backoff) {
			return
		}
		backoff = minDur(backoff*2, c.maxBackoff)
	}
}

func (c *Consumer) failSession(err error) {
	c.mu.Lock()
	c.failed = err
	cancel := c.cancelSession
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// waitResumed blocks while the consumer is paused.
func (c *Consumer) waitResumed(ctx context.Context) bool {
	c.mu.Lock()
	ch := c.resumeCh
	c.mu.Unlock()
	if ch == nil {
		return true
	}
	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Consumer) process(sess sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) error {
	lg := c.lg.With().
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Logger()

	env, err := event.Parse(msg.Value)
	if err != nil {
		lg.Warn().Err(err).Msg("unparseable record; skipping")
		metrics.RecordConsumed(msg.Topic, "parse_error")
		return nil
	}

	env = env.WithMetadata(map[string]string{
		"kafka.topic":     msg.Topic,
		"kafka.partition": strconv.Itoa(int(msg.Partition)),
		"kafka.offset":    strconv.FormatInt(msg.Offset, 10),
		"kafka.key":       string(msg.Key),
		"received_at":     time.Now().UTC().Format(time.RFC3339Nano),
	})

	// heartbeat: a revoked generation must not process further records
	if sess.Context().Err() != nil {
		return errSessionGone
	}

	err = c.handler.Handle(context.WithoutCancel(sess.Context()), env)
	if err != nil {
		metrics.RecordConsumed(msg.Topic, "handler_error")
		lg.Error().Err(err).Str("event_id", env.ID).Str("type", string(env.Type)).Msg("handler failed; record left for redelivery")
		return err
	}

	sess.MarkMessage(msg, "")
	metrics.RecordConsumed(msg.Topic, "ok")
	return nil
}

type groupHandler struct {
	c *Consumer
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	c := h.c
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionActive = true
	switch c.state {
	case StateSubscribed:
		c.setStateLocked(StateRunning)
	case StatePaused:
		c.group.PauseAll()
	}
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	c := h.c
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionActive = false
	if c.state == StateRunning {
		c.setStateLocked(StateSubscribed)
	}
	return nil
}

// ConsumeClaim handles one partition strictly in offset order.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	c := h.c
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if !c.waitResumed(ctx) {
				return nil
			}
			err := c.process(sess, msg)
			if errors.Is(err, errSessionGone) {
				return nil
			}
			if err != nil {
				c.failSession(err)
				return nil
			}
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
