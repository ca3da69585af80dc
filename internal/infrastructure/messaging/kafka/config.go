// Package kafka carries order events over Kafka: an idempotent sarama
// producer, a consumer-group runner and kafka-go topic provisioning.
package kafka

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

func baseConfig(clientID, version string) (*sarama.Config, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Version = sarama.V3_7_0_0
	if version != "" {
		v, err := sarama.ParseKafkaVersion(version)
		if err != nil {
			return nil, fmt.Errorf("kafka version %q: %w", version, err)
		}
		cfg.Version = v
	}
	cfg.Metadata.Retry.Max = 5
	cfg.Metadata.Retry.Backoff = 2 * time.Second
	return cfg, nil
}

// NewProducerConfig returns an idempotent, all-replica-ack producer config.
// Records with the same key always land on the same partition.
func NewProducerConfig(clientID, version string) (*sarama.Config, error) {
	cfg, err := baseConfig(clientID, version)
	if err != nil {
		return nil, err
	}
	cfg.Producer.Idempotent = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 250 * time.Millisecond
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Net.MaxOpenRequests = 1
	return cfg, nil
}

// NewConsumerConfig starts new groups at the oldest retained offset so no
// order event published before the first deploy is skipped.
func NewConsumerConfig(clientID, version string) (*sarama.Config, error) {
	cfg, err := baseConfig(clientID, version)
	if err != nil {
		return nil, err
	}
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Offsets.AutoCommit.Enable = true
	cfg.Consumer.Offsets.AutoCommit.Interval = time.Second
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	return cfg, nil
}

func NewSyncProducer(brokers []string, clientID, version string) (sarama.SyncProducer, error) {
	cfg, err := NewProducerConfig(clientID, version)
	if err != nil {
		return nil, err
	}
	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return p, nil
}

// GroupDialer returns a DialFunc that joins groupID on brokers.
func GroupDialer(brokers []string, groupID, clientID, version string) DialFunc {
	return func() (sarama.ConsumerGroup, error) {
		cfg, err := NewConsumerConfig(clientID, version)
		if err != nil {
			return nil, err
		}
		return sarama.NewConsumerGroup(brokers, groupID, cfg)
	}
}
