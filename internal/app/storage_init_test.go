package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/jourmarche/internal/health"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	storage, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverMemory,
	}, log.WithField("test", "memory-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(memory) failed: %v", err)
	}
	if storage.snapshots == nil || storage.outboxRepo == nil || storage.timelineRepo == nil {
		t.Fatalf("memory storage must be fully initialized: %+v", storage)
	}
	if check := storage.Checker().Check(); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy memory storage, got %+v", check)
	}
	if err := storage.Close(); err != nil {
		t.Fatalf("Close on memory storage: %v", err)
	}
}

func TestInitRuntimeDependencies_Redis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	storage, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver:  StorageDriverRedis,
		RedisAddr:      mr.Addr(),
		RedisKeyPrefix: "test",
	}, log.WithField("test", "redis-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(redis) failed: %v", err)
	}
	defer func() { _ = storage.Close() }()

	if err := storage.snapshots.Save(domain.CartSnapshotKey, []byte(`{"items":[],"total":0}`)); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if !mr.Exists("test:" + domain.CartSnapshotKey) {
		t.Fatal("expected snapshot under prefixed redis key")
	}
	if check := storage.Checker().Check(); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy redis storage, got %+v", check)
	}

	mr.Close()
	if check := storage.Checker().Check(); check.Status != healthcheck.StatusUnhealthy {
		t.Fatalf("expected unhealthy redis storage after shutdown, got %+v", check)
	}
}

func TestInitRuntimeDependencies_RedisUnavailable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverRedis,
		RedisAddr:     addr,
	}, log.WithField("test", "redis-down"))
	if err == nil || !strings.Contains(err.Error(), "connect redis") {
		t.Fatalf("expected redis connection error, got %v", err)
	}
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverPostgres,
	}, log.WithField("test", "postgres-missing-dsn"))
	if err == nil {
		t.Fatal("expected error when postgres driver is selected without DSN")
	}
}

func TestInitRuntimeDependencies_PostgresSuccess(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("JDM_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("JDM_POSTGRES_TEST_DSN is not set")
	}

	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverPostgres
	cfg.PostgresDSN = dsn

	storage, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "postgres-init"))
	if err != nil {
		t.Skipf("postgres is not available for app integration test: %v", err)
	}
	defer func() { _ = storage.Close() }()

	if check := storage.Checker().Check(); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy postgres storage, got %+v", check)
	}
}

func TestInitRuntimeDependencies_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: "sqlite",
	}, log.WithField("test", "unsupported-driver"))
	if err == nil {
		t.Fatal("expected error for unsupported storage driver")
	}
}

func TestRuntimeStorage_PingError(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	storage := &runtimeStorage{driver: "fake", ping: func(context.Context) error { return want }}
	if err := storage.Ping(context.Background()); !errors.Is(err, want) {
		t.Fatalf("expected ping error, got %v", err)
	}
	check := storage.Checker().Check()
	if check.Status != healthcheck.StatusUnhealthy || !check.Critical {
		t.Fatalf("storage check must be critical and unhealthy, got %+v", check)
	}
}
