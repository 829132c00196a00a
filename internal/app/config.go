package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Поддерживаемые backend-ы снимков состояния.
const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// EnvPrefix — префикс переменных окружения (JDM_GRPC_ADDR, JDM_STORAGE_DRIVER, ...).
const EnvPrefix = "JDM"

// Config описывает настройки запуска витрины.
type Config struct {
	GRPCAddr    string
	MetricsAddr string
	LogLevel    string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	RedisKeyPrefix      string
	RedisTTL            time.Duration

	// KafkaBrokers — список брокеров через запятую; пустой отключает публикацию событий.
	KafkaBrokers  string
	KafkaTopic    string
	KafkaDLQTopic string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	OutboxMaxPending   int

	StrictTransitions  bool
	LoginDelay         time.Duration
	DefaultDeliveryFee int64
	ShutdownTimeout    time.Duration
}

// DefaultConfig возвращает настройки для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:    ":50051",
		MetricsAddr: ":9090",
		LogLevel:    "info",

		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		RedisAddr:           "localhost:6379",
		RedisKeyPrefix:      "jdm",

		KafkaTopic:    "jdm.order.events",
		KafkaDLQTopic: "jdm.dlq",

		OutboxPollInterval: time.Second,
		OutboxBatchSize:    100,
		OutboxMaxAttempts:  3,
		OutboxRetryDelay:   50 * time.Millisecond,
		OutboxMaxPending:   1000,

		LoginDelay:         time.Second,
		DefaultDeliveryFee: 2000,
		ShutdownTimeout:    5 * time.Second,
	}
}

// Ключи конфигурации; в окружении они пишутся в верхнем регистре с префиксом JDM_.
const (
	keyGRPCAddr            = "grpc_addr"
	keyMetricsAddr         = "metrics_addr"
	keyLogLevel            = "log_level"
	keyStorageDriver       = "storage_driver"
	keyPostgresDSN         = "postgres_dsn"
	keyPostgresAutoMigrate = "postgres_auto_migrate"
	keyRedisAddr           = "redis_addr"
	keyRedisPassword       = "redis_password"
	keyRedisDB             = "redis_db"
	keyRedisKeyPrefix      = "redis_key_prefix"
	keyRedisTTL            = "redis_ttl"
	keyKafkaBrokers        = "kafka_brokers"
	keyKafkaTopic          = "kafka_topic"
	keyKafkaDLQTopic       = "kafka_dlq_topic"
	keyOutboxPollInterval  = "outbox_poll_interval"
	keyOutboxBatchSize     = "outbox_batch_size"
	keyOutboxMaxAttempts   = "outbox_max_attempts"
	keyOutboxRetryDelay    = "outbox_retry_delay"
	keyOutboxMaxPending    = "outbox_max_pending"
	keyStrictTransitions   = "order_strict_transitions"
	keyLoginDelay          = "login_delay"
	keyDefaultDeliveryFee  = "default_delivery_fee"
	keyShutdownTimeout     = "shutdown_timeout"
	keyConfigFile          = "config_file"
)

// LoadConfig читает настройки из переменных окружения JDM_* и необязательного файла
// storefront.yaml (текущий каталог или /etc/jourmarche; путь можно задать JDM_CONFIG_FILE).
func LoadConfig() (Config, error) {
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (Config, error) {
	def := DefaultConfig()
	defaults := map[string]any{
		keyGRPCAddr:            def.GRPCAddr,
		keyMetricsAddr:         def.MetricsAddr,
		keyLogLevel:            def.LogLevel,
		keyStorageDriver:       def.StorageDriver,
		keyPostgresDSN:         def.PostgresDSN,
		keyPostgresAutoMigrate: def.PostgresAutoMigrate,
		keyRedisAddr:           def.RedisAddr,
		keyRedisPassword:       def.RedisPassword,
		keyRedisDB:             def.RedisDB,
		keyRedisKeyPrefix:      def.RedisKeyPrefix,
		keyRedisTTL:            def.RedisTTL,
		keyKafkaBrokers:        def.KafkaBrokers,
		keyKafkaTopic:          def.KafkaTopic,
		keyKafkaDLQTopic:       def.KafkaDLQTopic,
		keyOutboxPollInterval:  def.OutboxPollInterval,
		keyOutboxBatchSize:     def.OutboxBatchSize,
		keyOutboxMaxAttempts:   def.OutboxMaxAttempts,
		keyOutboxRetryDelay:    def.OutboxRetryDelay,
		keyOutboxMaxPending:    def.OutboxMaxPending,
		keyStrictTransitions:   def.StrictTransitions,
		keyLoginDelay:          def.LoginDelay,
		keyDefaultDeliveryFee:  def.DefaultDeliveryFee,
		keyShutdownTimeout:     def.ShutdownTimeout,
		keyConfigFile:          "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(keyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/jourmarche")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		GRPCAddr:    v.GetString(keyGRPCAddr),
		MetricsAddr: v.GetString(keyMetricsAddr),
		LogLevel:    v.GetString(keyLogLevel),

		StorageDriver:       strings.ToLower(strings.TrimSpace(v.GetString(keyStorageDriver))),
		PostgresDSN:         v.GetString(keyPostgresDSN),
		PostgresAutoMigrate: v.GetBool(keyPostgresAutoMigrate),
		RedisAddr:           v.GetString(keyRedisAddr),
		RedisPassword:       v.GetString(keyRedisPassword),
		RedisDB:             v.GetInt(keyRedisDB),
		RedisKeyPrefix:      v.GetString(keyRedisKeyPrefix),
		RedisTTL:            v.GetDuration(keyRedisTTL),

		KafkaBrokers:  v.GetString(keyKafkaBrokers),
		KafkaTopic:    v.GetString(keyKafkaTopic),
		KafkaDLQTopic: v.GetString(keyKafkaDLQTopic),

		OutboxPollInterval: v.GetDuration(keyOutboxPollInterval),
		OutboxBatchSize:    v.GetInt(keyOutboxBatchSize),
		OutboxMaxAttempts:  v.GetInt(keyOutboxMaxAttempts),
		OutboxRetryDelay:   v.GetDuration(keyOutboxRetryDelay),
		OutboxMaxPending:   v.GetInt(keyOutboxMaxPending),

		StrictTransitions:  v.GetBool(keyStrictTransitions),
		LoginDelay:         v.GetDuration(keyLoginDelay),
		DefaultDeliveryFee: v.GetInt64(keyDefaultDeliveryFee),
		ShutdownTimeout:    v.GetDuration(keyShutdownTimeout),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory, StorageDriverRedis:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres storage requires %s_POSTGRES_DSN", EnvPrefix)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if c.DefaultDeliveryFee < 0 {
		return fmt.Errorf("default delivery fee must be non-negative, got %d", c.DefaultDeliveryFee)
	}
	if c.LoginDelay < 0 {
		return fmt.Errorf("login delay must be non-negative, got %s", c.LoginDelay)
	}
	return nil
}

// Brokers возвращает список Kafka-брокеров без пустых элементов.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
