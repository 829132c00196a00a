package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

// snapshotStoreInMemory держит снимки в карте процесса; аналог localStorage одной вкладки.
type snapshotStoreInMemory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewSnapshotStore создаёт in-memory реализацию SnapshotStore.
func NewSnapshotStore() domain.SnapshotStore {
	return &snapshotStoreInMemory{values: make(map[string][]byte)}
}

// Load возвращает копию сохранённого значения.
func (s *snapshotStoreInMemory) Load(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.values[key]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save перезаписывает значение по ключу.
func (s *snapshotStoreInMemory) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), data...)
	return nil
}

// Delete удаляет ключ.
func (s *snapshotStoreInMemory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

var _ domain.SnapshotStore = (*snapshotStoreInMemory)(nil)
