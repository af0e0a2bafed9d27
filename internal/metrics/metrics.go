// Package metrics собирает и публикует Prometheus метрики сервера.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector — интерфейс записи метрик для хендлеров и сервисов
type MetricsCollector interface {
	RecordAuthSuccess(kind string)
	RecordAuthFailure(reason string)
	RecordTokenRefresh(success bool)
	RecordRateLimited(scope string)
	RecordBookingCreated()
	RecordBookingCancelled()
	RecordAuthLatency(duration time.Duration)
}

// Collector — реализация на Prometheus счетчиках
type Collector struct {
	authSuccess      *prometheus.CounterVec
	authFail         *prometheus.CounterVec
	tokenRefresh     *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
	bookingCreated   prometheus.Counter
	bookingCancelled prometheus.Counter
	authLatency      prometheus.Histogram
}

// NewCollector создает Collector и регистрирует метрики в реестре
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_auth_success_total",
			Help: "Успешные авторизации по виду токена (full/temp)",
		}, []string{"kind"}),
		authFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_auth_fail_total",
			Help: "Неуспешные авторизации по причине",
		}, []string{"reason"}),
		tokenRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_token_refresh_total",
			Help: "Обмены refresh token по результату",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_rate_limited_total",
			Help: "Запросы, отклоненные rate limiter",
		}, []string{"scope"}),
		bookingCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_events_created_total",
			Help: "Созданные записи",
		}),
		bookingCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_events_cancelled_total",
			Help: "Отмененные записи",
		}),
		authLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "booking_auth_latency_seconds",
			Help:    "Длительность обработки авторизации",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.authSuccess,
		c.authFail,
		c.tokenRefresh,
		c.rateLimited,
		c.bookingCreated,
		c.bookingCancelled,
		c.authLatency,
	)

	return c
}

func (c *Collector) RecordAuthSuccess(kind string) {
	c.authSuccess.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordAuthFailure(reason string) {
	c.authFail.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordTokenRefresh(success bool) {
	result := "success"
	if !success {
		result = "fail"
	}
	c.tokenRefresh.WithLabelValues(result).Inc()
}

func (c *Collector) RecordRateLimited(scope string) {
	c.rateLimited.WithLabelValues(scope).Inc()
}

func (c *Collector) RecordBookingCreated() {
	c.bookingCreated.Inc()
}

func (c *Collector) RecordBookingCancelled() {
	c.bookingCancelled.Inc()
}

func (c *Collector) RecordAuthLatency(duration time.Duration) {
	c.authLatency.Observe(duration.Seconds())
}

// Handler возвращает HTTP handler для Prometheus scrape
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
