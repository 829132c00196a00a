package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/jourmarche/internal/health"
	"github.com/vladislavdragonenkov/jourmarche/internal/storage/memory"
	"github.com/vladislavdragonenkov/jourmarche/internal/storage/postgres"
	"github.com/vladislavdragonenkov/jourmarche/internal/storage/rediskv"
)

const storagePingTimeout = 2 * time.Second

// runtimeStorage — хранилища, выбранные драйвером, и их обслуживание.
type runtimeStorage struct {
	driver       string
	snapshots    domain.SnapshotStore
	outboxRepo   domain.OutboxRepository
	timelineRepo domain.TimelineRepository
	ping         func(ctx context.Context) error
	closeFn      func() error
}

// Ping проверяет доступность backend-а снимков.
func (s *runtimeStorage) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Checker возвращает критичную health-проверку backend-а снимков.
func (s *runtimeStorage) Checker() healthcheck.Checker {
	return healthcheck.NewSimpleChecker("storage_"+s.driver, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), storagePingTimeout)
		defer cancel()
		return s.Ping(ctx)
	})
}

// Close освобождает подключения к backend-у.
func (s *runtimeStorage) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// initRuntimeDependencies открывает хранилища согласно cfg.StorageDriver.
// outbox и timeline для redis остаются в памяти процесса.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeStorage, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case "", StorageDriverMemory:
		logger.Info("using in-memory storage")
		return &runtimeStorage{
			driver:       StorageDriverMemory,
			snapshots:    memory.NewSnapshotStore(),
			outboxRepo:   memory.NewOutboxRepository(),
			timelineRepo: memory.NewTimelineRepository(),
		}, nil

	case StorageDriverRedis:
		return initRedisStorage(ctx, cfg, logger)

	case StorageDriverPostgres:
		return initPostgresStorage(ctx, cfg, logger)

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func initRedisStorage(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeStorage, error) {
	if cfg.RedisAddr == "" {
		return nil, errors.New("redis storage requires redis address")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := rediskv.NewSnapshotStore(client, rediskv.Config{
		KeyPrefix: cfg.RedisKeyPrefix,
		TTL:       cfg.RedisTTL,
	})
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}

	logger.WithFields(log.Fields{
		"addr":   cfg.RedisAddr,
		"prefix": cfg.RedisKeyPrefix,
	}).Info("using redis snapshot storage")

	return &runtimeStorage{
		driver:       StorageDriverRedis,
		snapshots:    store,
		outboxRepo:   memory.NewOutboxRepository(),
		timelineRepo: memory.NewTimelineRepository(),
		ping:         store.Ping,
		closeFn:      store.Close,
	}, nil
}

func initPostgresStorage(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeStorage, error) {
	if cfg.PostgresDSN == "" {
		return nil, errors.New("postgres storage requires DSN")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply postgres migrations: %w", err)
		}
		logger.Info("postgres schema is up to date")
	}

	logger.Info("using postgres storage")
	return &runtimeStorage{
		driver:       StorageDriverPostgres,
		snapshots:    postgres.NewSnapshotStore(store),
		outboxRepo:   postgres.NewOutboxRepository(store),
		timelineRepo: postgres.NewTimelineRepository(store),
		ping:         store.Ping,
		closeFn:      store.Close,
	}, nil
}
