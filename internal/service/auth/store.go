// Package auth хранит пользователя текущей сессии витрины.
package auth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/metrics"
	"github.com/vladislavdragonenkov/jourmarche/internal/storage/snapshot"
)

// Option настраивает Store.
type Option func(*Store)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics подключает prometheus-метрики.
func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// Store держит текущего пользователя и флаг загрузки на время обращения к провайдеру.
type Store struct {
	mu        sync.Mutex
	user      *domain.User
	inflight  atomic.Int32
	provider  domain.IdentityProvider
	snapshots domain.SnapshotStore
	logger    *log.Entry
	metrics   *metrics.StorefrontMetrics
}

// NewStore восстанавливает пользователя из снимка.
func NewStore(provider domain.IdentityProvider, snapshots domain.SnapshotStore, opts ...Option) *Store {
	s := &Store{
		provider:  provider,
		snapshots: snapshots,
		logger:    log.WithField("component", "auth-store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.restore()
	return s
}

func (s *Store) restore() {
	var restored domain.User
	found, err := snapshot.LoadJSON(s.snapshots, domain.UserSnapshotKey, &restored)
	if err != nil {
		s.logger.WithError(err).WithField("key", domain.UserSnapshotKey).Warn("failed to restore user, starting signed out")
		s.metrics.RecordSnapshotFailure(domain.UserSnapshotKey, snapshot.OpOf(err))
		return
	}
	if !found {
		return
	}
	if restored.ID == "" {
		// Сохранённый null означает, что пользователь вышел.
		s.logger.WithField("key", domain.UserSnapshotKey).Debug("stored user is empty, starting signed out")
		return
	}
	s.user = &restored
}

// Login обращается к провайдеру и делает полученного пользователя текущим.
// Мьютекс на время ожидания провайдера не удерживается: CurrentUser и IsLoading остаются доступны.
func (s *Store) Login(ctx context.Context, email, password string) (domain.User, error) {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	user, err := s.provider.Login(ctx, email, password)
	if err != nil {
		s.metrics.RecordLogin("error")
		return domain.User{}, fmt.Errorf("login: %w", err)
	}

	s.adopt(user, "login")
	s.metrics.RecordLogin("success")
	return user, nil
}

// Signup регистрирует нового пользователя и делает его текущим.
func (s *Store) Signup(ctx context.Context, req domain.SignupRequest) (domain.User, error) {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	user, err := s.provider.Signup(ctx, req)
	if err != nil {
		return domain.User{}, fmt.Errorf("signup: %w", err)
	}

	s.adopt(user, "signup")
	s.metrics.RecordSignup()
	return user, nil
}

// Logout сбрасывает пользователя и удаляет его снимок.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		s.logger.WithField("user_id", s.user.ID).Info("user signed out")
	}
	s.user = nil
	if err := snapshot.Delete(s.snapshots, domain.UserSnapshotKey); err != nil {
		s.logger.WithError(err).Warn("failed to delete persisted user")
		s.metrics.RecordSnapshotFailure(domain.UserSnapshotKey, snapshot.OpOf(err))
	}
}

// UpdateUser накладывает патч на текущего пользователя и сохраняет результат.
// Без вошедшего пользователя ничего не делает и возвращает false.
func (s *Store) UpdateUser(patch domain.UserPatch) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return domain.User{}, false
	}

	updated := patch.Apply(*s.user)
	s.user = &updated
	s.persistLocked()
	return updated, true
}

// CurrentUser возвращает текущего пользователя и признак входа.
func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated сообщает, есть ли текущий пользователь.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}

// IsLoading сообщает, что идёт вход или регистрация.
func (s *Store) IsLoading() bool {
	return s.inflight.Load() > 0
}

func (s *Store) adopt(user domain.User, via string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &user
	s.persistLocked()
	s.logger.WithFields(log.Fields{
		"user_id": user.ID,
		"role":    user.Role,
		"via":     via,
	}).Info("user signed in")
}

func (s *Store) persistLocked() {
	if err := snapshot.SaveJSON(s.snapshots, domain.UserSnapshotKey, s.user); err != nil {
		s.logger.WithError(err).Warn("failed to persist user")
		s.metrics.RecordSnapshotFailure(domain.UserSnapshotKey, snapshot.OpOf(err))
	}
}
