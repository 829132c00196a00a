// Package snapshot кодирует состояние хранилищ витрины в JSON поверх domain.SnapshotStore.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

// Операции над снимком; используются как метка в метриках.
const (
	OpLoad   = "load"
	OpDecode = "decode"
	OpEncode = "encode"
	OpSave   = "save"
	OpDelete = "delete"
)

// Error описывает сбой операции со снимком.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("snapshot %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// OpOf возвращает операцию, на которой произошла ошибка, или "unknown".
func OpOf(err error) string {
	var snapErr *Error
	if errors.As(err, &snapErr) {
		return snapErr.Op
	}
	return "unknown"
}

// LoadJSON читает снимок и декодирует его в dst.
// Отсутствие ключа не ошибка: возвращается found=false, dst не трогается.
func LoadJSON(store domain.SnapshotStore, key string, dst any) (found bool, err error) {
	data, err := store.Load(key)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &Error{Op: OpLoad, Key: key, Err: err}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, &Error{Op: OpDecode, Key: key, Err: err}
	}
	return true, nil
}

// SaveJSON кодирует v и перезаписывает снимок.
func SaveJSON(store domain.SnapshotStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &Error{Op: OpEncode, Key: key, Err: err}
	}
	if err := store.Save(key, data); err != nil {
		return &Error{Op: OpSave, Key: key, Err: err}
	}
	return nil
}

// Delete удаляет снимок.
func Delete(store domain.SnapshotStore, key string) error {
	if err := store.Delete(key); err != nil {
		return &Error{Op: OpDelete, Key: key, Err: err}
	}
	return nil
}
