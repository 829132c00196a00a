package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

const (
	selectSnapshotSQL = `SELECT value::text FROM storefront_snapshots WHERE key = $1`
	upsertSnapshotSQL = `
INSERT INTO storefront_snapshots (key, value, updated_at)
VALUES ($1, $2::jsonb, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteSnapshotSQL = `DELETE FROM storefront_snapshots WHERE key = $1`
)

// SnapshotStore держит снимки витрины в таблице storefront_snapshots.
// Колонка JSONB отвергает невалидный JSON, поэтому повреждённый снимок сохранить нельзя.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore создаёт хранилище снимков поверх store.
func NewSnapshotStore(store *Store) *SnapshotStore {
	return &SnapshotStore{db: store.DB()}
}

// Load возвращает снимок или domain.ErrSnapshotNotFound.
func (s *SnapshotStore) Load(key string) ([]byte, error) {
	ctx, cancel := opContext()
	defer cancel()

	var value string
	switch err := s.db.QueryRowContext(ctx, selectSnapshotSQL, key).Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.ErrSnapshotNotFound
	case err != nil:
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return []byte(value), nil
}

// Save перезаписывает снимок.
func (s *SnapshotStore) Save(key string, data []byte) error {
	ctx, cancel := opContext()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, upsertSnapshotSQL, key, string(data)); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// Delete удаляет снимок; отсутствие строки не ошибка.
func (s *SnapshotStore) Delete(key string) error {
	ctx, cancel := opContext()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, deleteSnapshotSQL, key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)
