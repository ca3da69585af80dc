package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

type TopicSpec struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	Retention         time.Duration
	CleanupPolicy     string
}

func topicConfig(s TopicSpec) kafkago.TopicConfig {
	tc := kafkago.TopicConfig{
		Topic:             s.Name,
		NumPartitions:     s.Partitions,
		ReplicationFactor: s.ReplicationFactor,
	}
	if s.Retention > 0 {
		tc.ConfigEntries = append(tc.ConfigEntries, kafkago.ConfigEntry{
			ConfigName:  "retention.ms",
			ConfigValue: strconv.FormatInt(s.Retention.Milliseconds(), 10),
		})
	}
	if s.CleanupPolicy != "" {
		tc.ConfigEntries = append(tc.ConfigEntries, kafkago.ConfigEntry{
			ConfigName:  "cleanup.policy",
			ConfigValue: s.CleanupPolicy,
		})
	}
	return tc
}

// EnsureTopic creates the topic through the cluster controller. An existing
// topic is left as is.
func EnsureTopic(ctx context.Context, brokers []string, s TopicSpec, lg zerolog.Logger) error {
	lg = lg.With().Str("component", "topic_provisioner").Str("topic", s.Name).Logger()
	dialer := &kafkago.Dialer{Timeout: 10 * time.Second}

	var (
		conn *kafkago.Conn
		err  error
	)
	for _, b := range brokers {
		conn, err = dialer.DialContext(ctx, "tcp", b)
		if err == nil {
			break
		}
		lg.Warn().Err(err).Str("broker", b).Msg("broker dial failed")
	}
	if conn == nil {
		return fmt.Errorf("dial brokers: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	cc, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer cc.Close()

	if err := cc.CreateTopics(topicConfig(s)); err != nil {
		if errors.Is(err, kafkago.TopicAlreadyExists) {
			lg.Info().Msg("topic already exists")
			return nil
		}
		return fmt.Errorf("create topic: %w", err)
	}

	lg.Info().
		Int("partitions", s.Partitions).
		Int("replication_factor", s.ReplicationFactor).
		Dur("retention", s.Retention).
		Str("cleanup_policy", s.CleanupPolicy).
		Msg("topic created")
	return nil
}
