package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without an external
// dependency. Every value is an atomic counter or gauge, safe for
// concurrent use from every symbol's writer goroutine.
type Metrics struct {
	ordersAccepted atomic.Uint64
	ordersRejected atomic.Uint64
	ordersCanceled atomic.Uint64
	tradesExecuted atomic.Uint64
	errorsTotal    atomic.Uint64

	matchLatencySumNs atomic.Int64
	matchLatencyCount atomic.Uint64

	openOrders atomic.Int64
}

// GlobalMetrics is the process-wide metrics instance.
var GlobalMetrics = &Metrics{}

// RecordOrderAccepted records a successful execute_order admission.
func (m *Metrics) RecordOrderAccepted() {
	m.ordersAccepted.Add(1)
}

// RecordOrderRejected records an order that failed validation or
// admission checks, or a cancel request refused for an unknown order or
// a non-owner.
func (m *Metrics) RecordOrderRejected() {
	m.ordersRejected.Add(1)
}

// RecordOrderCanceled records a successful cancel_order.
func (m *Metrics) RecordOrderCanceled() {
	m.ordersCanceled.Add(1)
}

// RecordTrades records n trades emitted by a single execute_order call
// and its latency in nanoseconds.
func (m *Metrics) RecordTrades(n int, latencyNs int64) {
	m.tradesExecuted.Add(uint64(n))
	m.matchLatencySumNs.Add(latencyNs)
	m.matchLatencyCount.Add(1)
}

// RecordError records an error surfaced from execute_order or
// cancel_order.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// SetOpenOrders sets the current count of resting orders across all
// symbols.
func (m *Metrics) SetOpenOrders(count int64) {
	m.openOrders.Store(count)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersAccepted  uint64
	OrdersRejected  uint64
	OrdersCanceled  uint64
	TradesExecuted  uint64
	ErrorsTotal     uint64
	AvgMatchLatency int64
	OpenOrders      int64
	Timestamp       time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.matchLatencyCount.Load()
	if count > 0 {
		avgLatency = m.matchLatencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		OrdersAccepted:  m.ordersAccepted.Load(),
		OrdersRejected:  m.ordersRejected.Load(),
		OrdersCanceled:  m.ordersCanceled.Load(),
		TradesExecuted:  m.tradesExecuted.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
		AvgMatchLatency: avgLatency,
		OpenOrders:      m.openOrders.Load(),
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics. Intended for tests.
func (m *Metrics) Reset() {
	m.ordersAccepted.Store(0)
	m.ordersRejected.Store(0)
	m.ordersCanceled.Store(0)
	m.tradesExecuted.Store(0)
	m.errorsTotal.Store(0)
	m.matchLatencySumNs.Store(0)
	m.matchLatencyCount.Store(0)
	m.openOrders.Store(0)
}
