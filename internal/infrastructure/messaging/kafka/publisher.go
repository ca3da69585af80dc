package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/contracts/event"
	"github.com/baechuer/orderflow/internal/domain"
	"github.com/baechuer/orderflow/internal/metrics"
)

// Publisher writes validated envelopes to a single topic.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	source   string
	opts     []event.BuildOption
	lg       zerolog.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic, source string, lg zerolog.Logger, opts ...event.BuildOption) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		source:   source,
		opts:     opts,
		lg:       lg.With().Str("component", "kafka_publisher").Str("topic", topic).Logger(),
	}
}

// Publish keys the record by the payload's order id.
func (p *Publisher) Publish(ctx context.Context, t event.Type, payload event.Payload) (event.Receipt, error) {
	if payload == nil {
		return event.Receipt{}, &domain.PublishError{EventType: string(t), Err: errors.New("nil payload")}
	}
	return p.PublishWithKey(ctx, event.OrderID(payload), t, payload)
}

func (p *Publisher) PublishWithKey(ctx context.Context, key string, t event.Type, payload event.Payload) (event.Receipt, error) {
	fail := func(err error) (event.Receipt, error) {
		metrics.RecordPublish(string(t), "error", 0)
		p.lg.Error().Err(err).Str("type", string(t)).Str("key", key).Msg("publish failed")
		return event.Receipt{}, &domain.PublishError{EventType: string(t), Key: key, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	env, err := event.Build(t, payload, p.source, p.opts...)
	if err != nil {
		return fail(err)
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fail(err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(event.HeaderEventType), Value: []byte(env.Type)},
			{Key: []byte(event.HeaderEventVersion), Value: []byte(env.Version)},
			{Key: []byte(event.HeaderSourceService), Value: []byte(env.Source)},
		},
	}

	start := time.Now()
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fail(err)
	}
	metrics.RecordPublish(string(t), "ok", time.Since(start))

	p.lg.Debug().
		Str("event_id", env.ID).
		Str("type", string(t)).
		Str("key", key).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("event published")

	return event.Receipt{
		EventID:   env.ID,
		Type:      t,
		Topic:     p.topic,
		Partition: partition,
		Offset:    offset,
		Key:       key,
	}, nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
