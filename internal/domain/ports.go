package domain

import (
	"context"
	"time"
)

// Ключи снимков состояния. Совпадают с ключами локального хранилища браузерной витрины.
const (
	CartSnapshotKey   = "jour_marche_cart"
	OrdersSnapshotKey = "jour_marche_orders"
	UserSnapshotKey   = "jour_marche_user"
)

// SnapshotStore хранит сериализованное состояние хранилищ по строковому ключу.
type SnapshotStore interface {
	// Load возвращает сохранённое значение или ErrSnapshotNotFound.
	Load(key string) ([]byte, error)
	// Save перезаписывает значение целиком.
	Save(key string, data []byte) error
	// Delete удаляет ключ; отсутствующий ключ не считается ошибкой.
	Delete(key string) error
}

// IdentityProvider выдаёт профиль пользователя по учётным данным.
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (User, error)
	Signup(ctx context.Context, req SignupRequest) (User, error)
}

// SignupRequest — данные регистрации.
type SignupRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
