// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docvault"

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
type Metrics struct {
	documentsUploaded    prometheus.Counter
	versionsAppended     prometheus.Counter
	documentsDeleted     prometheus.Counter
	accessDenied         *prometheus.CounterVec
	fileReleaseFailures  *prometheus.CounterVec
	authenticationFailed *prometheus.CounterVec
}

// New creates the domain metrics and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		documentsUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_uploaded_total",
			Help:      "Total number of documents created by upload.",
		}),
		versionsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_versions_appended_total",
			Help:      "Total number of versions appended to existing documents.",
		}),
		documentsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_deleted_total",
			Help:      "Total number of documents deleted.",
		}),
		accessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_denied_total",
			Help:      "Total number of document operations refused by access control.",
		}, []string{"operation"}),
		fileReleaseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_release_failures_total",
			Help:      "Total number of stored files that could not be removed.",
		}, []string{"operation"}),
		authenticationFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authentication_failures_total",
			Help:      "Total number of rejected logins and registrations.",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{
		m.documentsUploaded,
		m.versionsAppended,
		m.documentsDeleted,
		m.accessDenied,
		m.fileReleaseFailures,
		m.authenticationFailed,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) DocumentUploaded() {
	if m == nil {
		return
	}
	m.documentsUploaded.Inc()
}

func (m *Metrics) VersionAppended() {
	if m == nil {
		return
	}
	m.versionsAppended.Inc()
}

func (m *Metrics) DocumentDeleted() {
	if m == nil {
		return
	}
	m.documentsDeleted.Inc()
}

func (m *Metrics) AccessDenied(operation string) {
	if m == nil {
		return
	}
	m.accessDenied.WithLabelValues(operation).Inc()
}

func (m *Metrics) FileReleaseFailed(operation string) {
	if m == nil {
		return
	}
	m.fileReleaseFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) AuthenticationFailed(reason string) {
	if m == nil {
		return
	}
	m.authenticationFailed.WithLabelValues(reason).Inc()
}
