// Package health отдаёт состояние зависимостей витрины для /healthz и /readyz.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// ServiceName — имя сервиса в ответе /healthz.
const ServiceName = "jourmarche-storefront"

// Status — состояние компонента или сервиса целиком.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// worse возвращает более тяжёлый из двух статусов.
func worse(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// Check — результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Critical   bool   `json:"critical"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — тело /healthz.
type Response struct {
	Status        Status           `json:"status"`
	Service       string           `json:"service"`
	Version       string           `json:"version,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Checks        map[string]Check `json:"checks,omitempty"`
}

// Checker проверяет одну зависимость.
type Checker interface {
	Check() Check
}

// Handler собирает проверки зависимостей витрины.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	version  string
	started  time.Time
}

// NewHandler создаёт обработчик без проверок.
func NewHandler(version string) *Handler {
	return &Handler{
		checkers: make(map[string]Checker),
		version:  version,
		started:  time.Now(),
	}
}

// RegisterChecker добавляет или заменяет проверку под именем name.
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Evaluate выполняет все проверки параллельно и сводит их в один ответ.
func (h *Handler) Evaluate() Response {
	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	checkers := make([]Checker, 0, len(h.checkers))
	for name, c := range h.checkers {
		names = append(names, name)
		checkers = append(checkers, c)
	}
	h.mu.RUnlock()

	results := make([]Check, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Check()
		}()
	}
	wg.Wait()

	resp := Response{
		Status:        StatusHealthy,
		Service:       ServiceName,
		Version:       h.version,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Checks:        make(map[string]Check, len(results)),
	}
	for i, check := range results {
		resp.Checks[names[i]] = check
		resp.Status = worse(resp.Status, check.Status)
	}
	return resp
}

// ServeHTTP отдаёт /healthz: 503 только для unhealthy, degraded отвечает 200.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	resp := h.Evaluate()

	code := http.StatusOK
	if resp.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// ReadinessHandler отдаёт /readyz. Деградация некритичных проверок готовность не снимает.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	if h.Evaluate().Status == StatusUnhealthy {
		writeText(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeText(w, http.StatusOK, "ready")
}

// LivenessHandler отдаёт /livez: процесс жив, пока отвечает.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

// SimpleChecker оборачивает функцию проверки. Ошибка критичной проверки даёт unhealthy,
// некритичной даёт degraded.
type SimpleChecker struct {
	name     string
	critical bool
	probe    func() error
}

// NewSimpleChecker создаёт критичную проверку.
func NewSimpleChecker(name string, probe func() error) *SimpleChecker {
	return &SimpleChecker{name: name, critical: true, probe: probe}
}

// NewOptionalChecker создаёт некритичную проверку.
func NewOptionalChecker(name string, probe func() error) *SimpleChecker {
	return &SimpleChecker{name: name, probe: probe}
}

// Check выполняет проверку и замеряет её длительность.
func (c *SimpleChecker) Check() Check {
	start := time.Now()
	err := c.probe()

	check := Check{
		Name:       c.name,
		Status:     StatusHealthy,
		Critical:   c.critical,
		DurationMs: time.Since(start).Milliseconds(),
	}
	switch {
	case err == nil:
	case c.critical:
		check.Status, check.Message = StatusUnhealthy, err.Error()
	default:
		check.Status, check.Message = StatusDegraded, err.Error()
	}
	return check
}
