package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration, read from the environment.
type Config struct {
	Service       ServiceConfig
	Kafka         KafkaConfig
	Limits        LimitsConfig
	Schema        SchemaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds listener and identity settings.
type ServiceConfig struct {
	Principal       string
	GRPCPort        string
	HTTPPort        string
	MetricsPort     string
	ShutdownTimeout time.Duration
}

// KafkaConfig holds ingest and result topic settings.
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicInput    string
	TopicValid    string
	TopicRejected string
	GroupID       string
	Principal     string
}

// LimitsConfig bounds the documents accepted for validation.
type LimitsConfig struct {
	MaxDocumentBytes int64
	MaxCoins         int
}

// SchemaConfig selects schema documents.
type SchemaConfig struct {
	DefaultKind  string
	DocumentsDir string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

// Load reads the configuration. Unparseable values fall back to defaults.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-balance-schema")

	return &Config{
		Service: ServiceConfig{
			Principal:       principal,
			GRPCPort:        envOrDefault("GRPC_PORT", "50051"),
			HTTPPort:        envOrDefault("HTTP_PORT", "8080"),
			MetricsPort:     envOrDefault("METRICS_PORT", "9090"),
			ShutdownTimeout: envOrDefaultDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:       envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:       envOrDefaultList("KAFKA_BROKERS", nil),
			TopicInput:    envOrDefault("KAFKA_TOPIC_INPUT", "bank.balance.responses"),
			TopicValid:    envOrDefault("KAFKA_TOPIC_VALID", "bank.balance.valid"),
			TopicRejected: envOrDefault("KAFKA_TOPIC_REJECTED", "bank.balance.rejected"),
			GroupID:       envOrDefault("KAFKA_GROUP_ID", "balance-schema-service"),
			Principal:     envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Limits: LimitsConfig{
			MaxDocumentBytes: envOrDefaultInt64("LIMIT_MAX_DOCUMENT_BYTES", 1024*1024),
			MaxCoins:         envOrDefaultInt("LIMIT_MAX_COINS", 1000),
		},
		Schema: SchemaConfig{
			DefaultKind:  envOrDefault("SCHEMA_DEFAULT_KIND", "balance"),
			DocumentsDir: envOrDefault("SCHEMA_DOCUMENTS_DIR", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// envOrDefaultList splits a comma-separated value, dropping empty entries.
func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
