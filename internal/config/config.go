package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Kafka struct {
	Brokers  []string
	Topic    string
	ClientID string
	GroupID  string
	Version  string

	// topic provisioning
	Partitions        int
	ReplicationFactor int
	Retention         time.Duration
	CleanupPolicy     string
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type Config struct {
	Env          string
	ShutdownWait time.Duration

	Kafka Kafka
	Redis Redis

	// Intake
	IntakeHTTPAddr string
	OrderStore     string // memory | postgres
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxIdle  time.Duration
	RLEnabled      bool
	RLLimit        int
	RLWindow       time.Duration

	// Notifier
	NotifierHTTPAddr    string
	DedupCapacity       int
	NotifyStatusUpdates bool
	EmailFrom           string
	EmailFailureRate    float64
	SMSFailureRate      float64
	SMSFallbackNumber   string
	SendLatency         time.Duration
	ChannelRateLimit    int
	ChannelRateWindow   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Env = getEnvFirst([]string{"APP_ENV", "ENV"}, "dev")
	cfg.ShutdownWait = getDuration("SHUTDOWN_WAIT", 15*time.Second)

	cfg.Kafka.Brokers = splitCSV(os.Getenv("KAFKA_BROKERS"))
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("missing required env var: KAFKA_BROKERS")
	}
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", "orders.events")
	cfg.Kafka.ClientID = getEnv("KAFKA_CLIENT_ID", "orderflow")
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", "notification-service-group")
	cfg.Kafka.Version = getEnv("KAFKA_VERSION", "3.7.0")
	cfg.Kafka.Partitions = getInt("KAFKA_TOPIC_PARTITIONS", 3)
	cfg.Kafka.ReplicationFactor = getInt("KAFKA_TOPIC_REPLICATION", 1)
	cfg.Kafka.Retention = getDuration("KAFKA_TOPIC_RETENTION", 24*time.Hour)
	cfg.Kafka.CleanupPolicy = getEnv("KAFKA_TOPIC_CLEANUP_POLICY", "delete")
	switch cfg.Kafka.CleanupPolicy {
	case "delete", "compact", "compact,delete":
	default:
		return nil, fmt.Errorf("bad KAFKA_TOPIC_CLEANUP_POLICY: %q", cfg.Kafka.CleanupPolicy)
	}

	cfg.Redis.Enabled = getBool("REDIS_ENABLED", false)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)
	if strings.Contains(cfg.Redis.Addr, " ") {
		return nil, fmt.Errorf("bad REDIS_ADDR (contains spaces): %q", cfg.Redis.Addr)
	}

	cfg.IntakeHTTPAddr = getEnv("INTAKE_HTTP_ADDR", ":8080")
	cfg.OrderStore = strings.ToLower(getEnv("ORDER_STORE", "memory"))
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.DBMaxOpenConns = getInt("DB_MAX_OPEN_CONNS", 10)
	cfg.DBMaxIdleConns = getInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxIdle = getDuration("DB_CONN_MAX_IDLE", 15*time.Minute)
	switch cfg.OrderStore {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres order store selected but missing DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("bad ORDER_STORE: %q", cfg.OrderStore)
	}

	cfg.RLEnabled = getBool("RL_ENABLED", true)
	cfg.RLLimit = getInt("RL_LIMIT", 60)
	cfg.RLWindow = getDuration("RL_WINDOW", time.Minute)

	cfg.NotifierHTTPAddr = getEnv("NOTIFIER_HTTP_ADDR", ":8090")
	cfg.DedupCapacity = getInt("DEDUP_CAPACITY", 1000)
	cfg.NotifyStatusUpdates = getBool("NOTIFY_STATUS_UPDATES", false)
	cfg.EmailFrom = getEnv("EMAIL_FROM", "orders@orderflow.local")
	cfg.SMSFallbackNumber = getEnv("SMS_FALLBACK_NUMBER", "+10000000000")
	cfg.SendLatency = getDuration("CHANNEL_SEND_LATENCY", 50*time.Millisecond)
	cfg.ChannelRateLimit = getInt("CHANNEL_RATE_LIMIT", 20)
	cfg.ChannelRateWindow = getDuration("CHANNEL_RATE_WINDOW", time.Hour)

	var err error
	if cfg.EmailFailureRate, err = getRate("EMAIL_FAILURE_RATE", 0.05); err != nil {
		return nil, err
	}
	if cfg.SMSFailureRate, err = getRate("SMS_FAILURE_RATE", 0.05); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFirst(keys []string, def string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// getRate reads a probability in [0,1].
func getRate(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, fmt.Errorf("bad %s: %q (want 0..1)", key, v)
	}
	return f, nil
}

func splitCSV(s string) []string {
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, x := range raw {
		x = strings.TrimSpace(x)
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
