package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics содержит метрики хранилищ корзины, заказов и сессии.
// Все методы безопасны для nil-получателя: хранилища можно создавать без метрик.
type StorefrontMetrics struct {
	// Корзина
	cartMutations *prometheus.CounterVec
	cartUnits     prometheus.Gauge
	cartTotal     prometheus.Gauge

	// Заказы
	ordersCreated    prometheus.Counter
	statusChanges    *prometheus.CounterVec
	statusRejected   *prometheus.CounterVec
	pendingOrders    prometheus.Gauge
	orderNumberRetry prometheus.Counter
	checkoutDuration prometheus.Histogram
	checkoutFailures *prometheus.CounterVec

	// Снимки состояния
	snapshotFailures *prometheus.CounterVec

	// Сессия
	logins  *prometheus.CounterVec
	signups prometheus.Counter

	// События заказов
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter
}

// NewStorefrontMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewStorefrontMetrics() *StorefrontMetrics {
	return NewStorefrontMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStorefrontMetricsWithRegisterer регистрирует метрики в указанном реестре.
func NewStorefrontMetricsWithRegisterer(registerer prometheus.Registerer) *StorefrontMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorefrontMetrics{
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "jdm_cart_mutations_total",
			Help: "Total number of cart mutations by operation",
		}, []string{"op"}),
		cartUnits: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "jdm_cart_units",
			Help: "Number of product units currently in the cart",
		}),
		cartTotal: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "jdm_cart_total_fcfa",
			Help: "Current cart total in FCFA",
		}),
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jdm_orders_created_total",
			Help: "Total number of orders created",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "jdm_order_status_changes_total",
			Help: "Total number of applied order status changes by target status",
		}, []string{"status"}),
		statusRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "jdm_order_status_rejected_total",
			Help: "Total number of rejected order status updates by reason",
		}, []string{"reason"}),
		pendingOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "jdm_orders_pending",
			Help: "Number of orders waiting for seller confirmation",
		}),
		orderNumberRetry: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jdm_order_number_collisions_total",
			Help: "Total number of regenerated order numbers after a collision",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "jdm_checkout_duration_seconds",
			Help:    "Duration of checkout operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		checkoutFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "jdm_checkout_failures_total",
			Help: "Total number of failed checkouts by reason",
		}, []string{"reason"}),
		snapshotFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "jdm_snapshot_failures_total",
			Help: "Total number of snapshot load/decode/save failures",
		}, []string{"key", "op"}),
		logins: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "jdm_auth_logins_total",
			Help: "Total number of login attempts by result",
		}, []string{"result"}),
		signups: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jdm_auth_signups_total",
			Help: "Total number of successful signups",
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jdm_timeline_events_total",
			Help: "Total number of order timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jdm_outbox_events_total",
			Help: "Total number of order events enqueued to the outbox",
		}),
	}
}

// RecordCartMutation фиксирует изменение корзины и её текущее состояние.
func (m *StorefrontMetrics) RecordCartMutation(op string, units int, total int64) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
	m.cartUnits.Set(float64(units))
	m.cartTotal.Set(float64(total))
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *StorefrontMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordStatusChange увеличивает счётчик применённых смен статуса.
func (m *StorefrontMetrics) RecordStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordStatusRejected увеличивает счётчик отклонённых смен статуса.
func (m *StorefrontMetrics) RecordStatusRejected(reason string) {
	if m == nil {
		return
	}
	m.statusRejected.WithLabelValues(reason).Inc()
}

// SetPendingOrders выставляет число заказов в статусе pending.
func (m *StorefrontMetrics) SetPendingOrders(count int) {
	if m == nil {
		return
	}
	m.pendingOrders.Set(float64(count))
}

// RecordOrderNumberCollision увеличивает счётчик перегенерированных номеров.
func (m *StorefrontMetrics) RecordOrderNumberCollision() {
	if m == nil {
		return
	}
	m.orderNumberRetry.Inc()
}

// RecordCheckoutDuration записывает время оформления заказа.
func (m *StorefrontMetrics) RecordCheckoutDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordCheckoutFailure увеличивает счётчик неудачных оформлений.
func (m *StorefrontMetrics) RecordCheckoutFailure(reason string) {
	if m == nil {
		return
	}
	m.checkoutFailures.WithLabelValues(reason).Inc()
}

// RecordSnapshotFailure увеличивает счётчик ошибок работы со снимками.
func (m *StorefrontMetrics) RecordSnapshotFailure(key, op string) {
	if m == nil {
		return
	}
	m.snapshotFailures.WithLabelValues(key, op).Inc()
}

// RecordLogin увеличивает счётчик попыток входа.
func (m *StorefrontMetrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// RecordSignup увеличивает счётчик регистраций.
func (m *StorefrontMetrics) RecordSignup() {
	if m == nil {
		return
	}
	m.signups.Inc()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *StorefrontMetrics) RecordTimelineEvent() {
	if m == nil {
		return
	}
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *StorefrontMetrics) RecordOutboxEvent() {
	if m == nil {
		return
	}
	m.outboxEvents.Inc()
}
