// Package identity содержит симулированный провайдер идентификации витрины.
// Он не проверяет пароли: вход по неизвестному email создаёт нового покупателя.
package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

// DefaultDelay имитирует задержку сетевого вызова.
const DefaultDelay = time.Second

// Option настраивает MockProvider.
type Option func(*MockProvider)

// WithDelay задаёт задержку ответа; 0 отключает ожидание.
func WithDelay(delay time.Duration) Option {
	return func(p *MockProvider) {
		if delay >= 0 {
			p.delay = delay
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(p *MockProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator подменяет генератор идентификаторов пользователей.
func WithIDGenerator(gen func() string) Option {
	return func(p *MockProvider) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(p *MockProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// MockProvider отвечает по фиксированной таблице демо-пользователей.
type MockProvider struct {
	users  map[string]domain.User
	delay  time.Duration
	now    func() time.Time
	newID  func() string
	logger *log.Entry
}

// NewMockProvider создаёт провайдер поверх таблицы демо-пользователей.
func NewMockProvider(demoUsers []domain.User, opts ...Option) *MockProvider {
	p := &MockProvider{
		users:  make(map[string]domain.User, len(demoUsers)),
		delay:  DefaultDelay,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.WithField("component", "identity-mock"),
	}
	for _, u := range demoUsers {
		p.users[u.Email] = u
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Login возвращает демо-пользователя с таким email или создаёт покупателя
// с именем из части адреса до "@". Пароль не проверяется.
func (p *MockProvider) Login(ctx context.Context, email, _ string) (domain.User, error) {
	if err := p.wait(ctx); err != nil {
		return domain.User{}, err
	}

	if user, ok := p.users[email]; ok {
		p.logger.WithField("user_id", user.ID).Debug("demo user signed in")
		return user, nil
	}

	user := domain.User{
		ID:        p.newID(),
		Email:     email,
		Name:      domain.EmailLocalPart(email),
		Role:      domain.UserRoleBuyer,
		CreatedAt: p.now(),
	}
	p.logger.WithField("user_id", user.ID).Debug("fabricated buyer for unknown email")
	return user, nil
}

// Signup всегда создаёт новую учётную запись; уникальность email не проверяется.
func (p *MockProvider) Signup(ctx context.Context, req domain.SignupRequest) (domain.User, error) {
	if err := p.wait(ctx); err != nil {
		return domain.User{}, err
	}

	return domain.User{
		ID:        p.newID(),
		Email:     req.Email,
		Name:      req.Name,
		Role:      req.Role,
		CreatedAt: p.now(),
	}, nil
}

func (p *MockProvider) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ domain.IdentityProvider = (*MockProvider)(nil)
