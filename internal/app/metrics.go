package app

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"craftlink/go-backend/pkg/models"
)

// PanelCounters are the Prometheus counters the panel bumps as flows
// complete.
type PanelCounters struct {
	MessagesSent      prometheus.Counter
	RepliesDelivered  prometheus.Counter
	CallsConnected    prometheus.Counter
	PaymentsSettled   prometheus.Counter
	ReviewsSubmitted  prometheus.Counter
	SelectionSwitches prometheus.Counter
}

func NewPanelCounters(reg prometheus.Registerer) *PanelCounters {
	c := &PanelCounters{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftlink_messages_sent_total",
			Help: "Messages the panel user sent.",
		}),
		RepliesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftlink_replies_delivered_total",
			Help: "Simulated counterparty replies delivered.",
		}),
		CallsConnected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftlink_calls_connected_total",
			Help: "Calls that completed the ring phase.",
		}),
		PaymentsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftlink_payments_settled_total",
			Help: "Payment transactions that reached settled.",
		}),
		ReviewsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftlink_reviews_submitted_total",
			Help: "Post-call reviews submitted.",
		}),
		SelectionSwitches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftlink_conversation_switches_total",
			Help: "Conversation selection changes.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			c.MessagesSent,
			c.RepliesDelivered,
			c.CallsConnected,
			c.PaymentsSettled,
			c.ReviewsSubmitted,
			c.SelectionSwitches,
		)
	}
	return c
}

type opMetric struct {
	count   int
	errors  int
	totalNs int64
	maxNs   int64
	lastNs  int64
}

// OpMetricsState mirrors the panel's per-operation latency and error counts
// for the snapshot endpoint.
type OpMetricsState struct {
	mu            sync.RWMutex
	errorCounters map[string]int
	ops           map[string]*opMetric
}

func NewOpMetricsState() *OpMetricsState {
	return &OpMetricsState{
		errorCounters: make(map[string]int),
		ops:           make(map[string]*opMetric),
	}
}

func (m *OpMetricsState) RecordOp(operation string, started time.Time) {
	latency := time.Since(started).Nanoseconds()
	m.mu.Lock()
	defer m.mu.Unlock()
	metric, ok := m.ops[operation]
	if !ok {
		metric = &opMetric{}
		m.ops[operation] = metric
	}
	metric.count++
	metric.totalNs += latency
	metric.lastNs = latency
	if latency > metric.maxNs {
		metric.maxNs = latency
	}
}

func (m *OpMetricsState) RecordOpError(operation, class string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metric, ok := m.ops[operation]
	if !ok {
		metric = &opMetric{}
		m.ops[operation] = metric
	}
	metric.errors++
	m.errorCounters[class]++
}

func (m *OpMetricsState) Snapshot() models.MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int, len(m.errorCounters))
	for class, n := range m.errorCounters {
		counters[class] = n
	}
	ops := make(map[string]models.OperationMetric, len(m.ops))
	for name, metric := range m.ops {
		avg := int64(0)
		if metric.count > 0 {
			avg = metric.totalNs / int64(metric.count) / int64(time.Millisecond)
		}
		ops[name] = models.OperationMetric{
			Count:         metric.count,
			Errors:        metric.errors,
			AvgLatencyMs:  avg,
			MaxLatencyMs:  metric.maxNs / int64(time.Millisecond),
			LastLatencyMs: metric.lastNs / int64(time.Millisecond),
		}
	}
	return models.MetricsSnapshot{
		ErrorCounters: counters,
		Operations:    ops,
		GeneratedAt:   nowUTC(),
	}
}
