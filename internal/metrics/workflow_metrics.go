package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics содержит метрики workflow-ов оркестратора
// справочников. Метки: entity (customer, unit, ...) и workflow
// (list, create, update, flag).
type WorkflowMetrics struct {
	// Счётчики исходов workflow
	started   *prometheus.CounterVec
	succeeded *prometheus.CounterVec
	failed    *prometheus.CounterVec

	// Гистограмма времени выполнения workflow
	duration *prometheus.HistogramVec

	// Счётчики фоновых задач
	notificationsEnqueued *prometheus.CounterVec
	changelogEntries      prometheus.Counter
	refreshFailures       *prometheus.CounterVec

	// Gauge активных workflow
	activeWorkflows prometheus.Gauge
}

// NewWorkflowMetrics создаёт метрики на default registerer.
func NewWorkflowMetrics() *WorkflowMetrics {
	return NewWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWorkflowMetricsWithRegisterer создаёт метрики на явном registerer
// (используется в тестах).
func NewWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	labels := []string{"entity", "workflow"}

	return &WorkflowMetrics{
		started: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "mdm_workflow_started_total",
			Help: "Total number of master-data workflows started.",
		}, labels),
		succeeded: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "mdm_workflow_succeeded_total",
			Help: "Total number of master-data workflows completed successfully.",
		}, labels),
		failed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "mdm_workflow_failed_total",
			Help: "Total number of master-data workflows failed.",
		}, labels),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "mdm_workflow_duration_seconds",
			Help:    "Duration of master-data workflows in seconds.",
			Buckets: prometheus.DefBuckets,
		}, labels),
		notificationsEnqueued: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "mdm_notifications_enqueued_total",
			Help: "Total number of change notifications enqueued for delivery.",
		}, []string{"entity"}),
		changelogEntries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "mdm_changelog_entries_total",
			Help: "Total number of changelog entries recorded.",
		}),
		refreshFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "mdm_refresh_failures_total",
			Help: "Total number of failed background list refreshes.",
		}, []string{"entity"}),
		activeWorkflows: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "mdm_active_workflows",
			Help: "Number of currently running master-data workflows.",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordStarted отмечает начало workflow.
func (m *WorkflowMetrics) RecordStarted(entity, workflow string) {
	m.started.WithLabelValues(entity, workflow).Inc()
	m.activeWorkflows.Inc()
}

// RecordSucceeded отмечает успешное завершение workflow.
func (m *WorkflowMetrics) RecordSucceeded(entity, workflow string, duration time.Duration) {
	m.succeeded.WithLabelValues(entity, workflow).Inc()
	m.duration.WithLabelValues(entity, workflow).Observe(duration.Seconds())
	m.activeWorkflows.Dec()
}

// RecordFailed отмечает неудачное завершение workflow.
func (m *WorkflowMetrics) RecordFailed(entity, workflow string, duration time.Duration) {
	m.failed.WithLabelValues(entity, workflow).Inc()
	m.duration.WithLabelValues(entity, workflow).Observe(duration.Seconds())
	m.activeWorkflows.Dec()
}

// RecordNotificationEnqueued увеличивает счётчик поставленных в
// очередь уведомлений.
func (m *WorkflowMetrics) RecordNotificationEnqueued(entity string) {
	m.notificationsEnqueued.WithLabelValues(entity).Inc()
}

// RecordChangelogEntry увеличивает счётчик записей журнала изменений.
func (m *WorkflowMetrics) RecordChangelogEntry() {
	m.changelogEntries.Inc()
}

// RecordRefreshFailure увеличивает счётчик неудачных фоновых refresh.
func (m *WorkflowMetrics) RecordRefreshFailure(entity string) {
	m.refreshFailures.WithLabelValues(entity).Inc()
}
