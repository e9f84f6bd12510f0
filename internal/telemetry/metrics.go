package telemetry

import (
	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates sync counters for scraping.
type Metrics struct {
	StatusTransitions *prometheus.CounterVec
	SyncErrors        *prometheus.CounterVec
	OpsEnqueued       prometheus.Counter
	OpsReplayed       prometheus.Counter
	ReplayRetries     prometheus.Counter
	ReplayFailures    prometheus.Counter
	Autosaves         prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screenpad_sync_status_transitions_total",
			Help: "Sync status transitions by operation class and state.",
		}, []string{"class", "state"}),
		SyncErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screenpad_sync_errors_total",
			Help: "Sync errors by action.",
		}, []string{"action"}),
		OpsEnqueued: f.NewCounter(prometheus.CounterOpts{
			Name: "screenpad_outbox_ops_enqueued_total",
			Help: "Operations appended to the pending queue.",
		}),
		OpsReplayed: f.NewCounter(prometheus.CounterOpts{
			Name: "screenpad_outbox_ops_replayed_total",
			Help: "Queued operations acknowledged during replay.",
		}),
		ReplayRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "screenpad_outbox_replay_retries_total",
			Help: "Retry attempts during queue replay.",
		}),
		ReplayFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "screenpad_outbox_replay_failures_total",
			Help: "Queued operations that exhausted their retries.",
		}),
		Autosaves: f.NewCounter(prometheus.CounterOpts{
			Name: "screenpad_autosaves_total",
			Help: "Debounced autosave writes issued.",
		}),
	}
}

// MetricsSink is the default StatusSink/ErrorSink feeding the counters.
type MetricsSink struct {
	m *Metrics
}

func NewMetricsSink(m *Metrics) *MetricsSink {
	return &MetricsSink{m: m}
}

func (s *MetricsSink) OnSyncStatus(st models.SyncStatus) {
	s.m.StatusTransitions.WithLabelValues(st.Class, string(st.State)).Inc()
}

func (s *MetricsSink) OnSyncError(action string, _ error) {
	s.m.SyncErrors.WithLabelValues(action).Inc()
}
