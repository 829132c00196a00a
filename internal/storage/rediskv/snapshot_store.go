// Package rediskv хранит снимки состояния витрины в Redis: одно строковое значение на ключ.
// Ключи имеют вид {prefix}:{snapshot_key}, например "jdm:jour_marche_cart".
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

const (
	defaultKeyPrefix = "jdm"
	defaultOpTimeout = 3 * time.Second
)

// Config задаёт параметры Redis-хранилища снимков.
type Config struct {
	// KeyPrefix добавляется ко всем ключам. По умолчанию "jdm".
	KeyPrefix string
	// TTL — время жизни снимка; 0 означает хранить без срока, как localStorage.
	TTL time.Duration
	// OpTimeout ограничивает одну операцию Redis.
	OpTimeout time.Duration
}

// SnapshotStore реализует domain.SnapshotStore поверх go-redis.
type SnapshotStore struct {
	client redis.UniversalClient
	cfg    Config
}

// NewSnapshotStore создаёт хранилище поверх уже сконфигурированного клиента.
func NewSnapshotStore(client redis.UniversalClient, cfg Config) *SnapshotStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = defaultOpTimeout
	}
	return &SnapshotStore{client: client, cfg: cfg}
}

func (s *SnapshotStore) key(name string) string {
	return fmt.Sprintf("%s:%s", s.cfg.KeyPrefix, name)
}

// Load возвращает значение по ключу или domain.ErrSnapshotNotFound.
func (s *SnapshotStore) Load(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.OpTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Save перезаписывает значение по ключу.
func (s *SnapshotStore) Save(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.OpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), data, s.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
func (s *SnapshotStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.OpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает клиент.
func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)
