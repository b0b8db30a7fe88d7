package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
	"github.com/vladislavdragonenkov/mdm/internal/masterdata"
	"github.com/vladislavdragonenkov/mdm/internal/messaging/kafka"
)

// StorageDriver выбирает backend хранилища справочников.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers  string
	EventsTopic   string
	DLQTopic      string
	ConsumerGroup string

	// Идентичность мобильного пользователя, от имени которого
	// выполняются мутации справочников.
	SessionUserID int64
	SessionRole   domain.Role

	UniquenessPolicy masterdata.UniquenessPolicy

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	DraftCleanupInterval  time.Duration
	DraftCleanupBatchSize int
	DraftRetentionDays    int
}

// DefaultConfig возвращает конфигурацию для локального запуска
// без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:    ":50051",
		MetricsAddr: ":9090",

		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,

		EventsTopic:   kafka.TopicMasterDataEvents,
		DLQTopic:      kafka.TopicDeadLetterQueue,
		ConsumerGroup: "masterdata-cache",

		SessionUserID: 1,
		SessionRole:   domain.RoleAdministrator,

		UniquenessPolicy: masterdata.UniquenessLenient,

		OutboxPollInterval: time.Second,
		OutboxBatchSize:    100,
		OutboxMaxAttempts:  3,
		OutboxRetryDelay:   50 * time.Millisecond,

		DraftCleanupInterval:  time.Hour,
		DraftCleanupBatchSize: 200,
		DraftRetentionDays:    7,
	}
}

// ConfigFromEnv собирает конфигурацию из переменных окружения MDM_*.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.GRPCAddr = envString("MDM_GRPC_ADDR", cfg.GRPCAddr)
	cfg.MetricsAddr = envString("MDM_METRICS_ADDR", cfg.MetricsAddr)

	cfg.PostgresDSN = envString("MDM_POSTGRES_DSN", cfg.PostgresDSN)
	if cfg.PostgresDSN != "" {
		cfg.StorageDriver = StorageDriverPostgres
	}
	if driver := envString("MDM_STORAGE_DRIVER", ""); driver != "" {
		cfg.StorageDriver = StorageDriver(driver)
	}
	cfg.PostgresAutoMigrate = envBool("MDM_POSTGRES_AUTO_MIGRATE", cfg.PostgresAutoMigrate)

	cfg.KafkaBrokers = envString("MDM_KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.EventsTopic = envString("MDM_EVENTS_TOPIC", cfg.EventsTopic)
	cfg.DLQTopic = envString("MDM_DLQ_TOPIC", cfg.DLQTopic)
	cfg.ConsumerGroup = envString("MDM_CONSUMER_GROUP", cfg.ConsumerGroup)

	cfg.SessionUserID = envInt64("MDM_SESSION_USER_ID", cfg.SessionUserID)
	if role := envString("MDM_SESSION_ROLE", ""); role != "" {
		cfg.SessionRole = domain.Role(role)
	}

	if envBool("MDM_UNIQUENESS_STRICT", false) {
		cfg.UniquenessPolicy = masterdata.UniquenessStrict
	}

	cfg.OutboxPollInterval = envDuration("MDM_OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = envInt("MDM_OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxAttempts = envInt("MDM_OUTBOX_MAX_ATTEMPTS", cfg.OutboxMaxAttempts)
	cfg.OutboxRetryDelay = envDuration("MDM_OUTBOX_RETRY_DELAY", cfg.OutboxRetryDelay)

	cfg.DraftCleanupInterval = envDuration("MDM_DRAFT_CLEANUP_INTERVAL", cfg.DraftCleanupInterval)
	cfg.DraftCleanupBatchSize = envInt("MDM_DRAFT_CLEANUP_BATCH_SIZE", cfg.DraftCleanupBatchSize)
	cfg.DraftRetentionDays = envInt("MDM_DRAFT_RETENTION_DAYS", cfg.DraftRetentionDays)

	return cfg
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
