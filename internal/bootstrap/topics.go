package bootstrap

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/config"
	"github.com/baechuer/orderflow/internal/infrastructure/messaging/kafka"
)

// CreateTopics provisions the order events topic from config.
func CreateTopics(ctx context.Context, cfg *config.Config, lg zerolog.Logger) error {
	return kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, kafka.TopicSpec{
		Name:              cfg.Kafka.Topic,
		Partitions:        cfg.Kafka.Partitions,
		ReplicationFactor: cfg.Kafka.ReplicationFactor,
		Retention:         cfg.Kafka.Retention,
		CleanupPolicy:     cfg.Kafka.CleanupPolicy,
	}, lg)
}
