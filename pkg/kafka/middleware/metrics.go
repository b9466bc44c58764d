package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"parkease/pkg/kafka"
)

// Metrics counts publish and consume outcomes for the process. The
// counters are read at shutdown to log a delivery summary.
type Metrics struct {
	published      atomic.Int64
	publishFailed  atomic.Int64
	publishedNanos atomic.Int64
	consumed       atomic.Int64
	consumeFailed  atomic.Int64
	consumedNanos  atomic.Int64
}

var globalMetrics = &Metrics{}

func GetMetrics() *Metrics {
	return globalMetrics
}

// Snapshot is a point-in-time copy of the counters, with average
// handling latencies derived from the totals.
type Snapshot struct {
	Published          int64
	PublishFailed      int64
	AvgPublishDuration time.Duration
	Consumed           int64
	ConsumeFailed      int64
	AvgConsumeDuration time.Duration
}

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Published:     m.published.Load(),
		PublishFailed: m.publishFailed.Load(),
		Consumed:      m.consumed.Load(),
		ConsumeFailed: m.consumeFailed.Load(),
	}
	if s.Published > 0 {
		s.AvgPublishDuration = time.Duration(m.publishedNanos.Load() / s.Published)
	}
	if s.Consumed > 0 {
		s.AvgConsumeDuration = time.Duration(m.consumedNanos.Load() / s.Consumed)
	}
	return s
}

func (m *Metrics) Reset() {
	m.published.Store(0)
	m.publishFailed.Store(0)
	m.publishedNanos.Store(0)
	m.consumed.Store(0)
	m.consumeFailed.Store(0)
	m.consumedNanos.Store(0)
}

// MetricsProducerMiddleware counts publish outcomes.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		globalMetrics.publishedNanos.Add(int64(time.Since(start)))
		if err != nil {
			globalMetrics.publishFailed.Add(1)
		} else {
			globalMetrics.published.Add(1)
		}
		return err
	}
}

// MetricsConsumerMiddleware counts consume outcomes.
func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		globalMetrics.consumedNanos.Add(int64(time.Since(start)))
		if err != nil {
			globalMetrics.consumeFailed.Add(1)
		} else {
			globalMetrics.consumed.Add(1)
		}
		return err
	}
}
