// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	metrics "github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all metrics for LPX using luxfi/metric
type Metrics struct {
	metricsInstance metrics.Metrics

	// Sale lifecycle metrics
	SalesCreated   metrics.Counter
	SalesFinalized metrics.Counter

	// Trade metrics
	TradesExecuted metrics.CounterVec
	TradesRejected metrics.CounterVec
	NativeVolume   metrics.Counter
	FeesCollected  metrics.Counter

	// API metrics
	RequestsProcessed metrics.CounterVec

	// Performance metrics
	TradeDuration metrics.Histogram
}

// NewMetrics creates a new metrics instance using luxfi/metric
func NewMetrics() (*Metrics, error) {
	factory := metrics.NewPrometheusFactory()
	metricsInstance := factory.New("lpx")

	m := &Metrics{
		metricsInstance: metricsInstance,
	}

	m.SalesCreated = metricsInstance.NewCounter("sales_created_total", "Total number of token sales created")
	m.SalesFinalized = metricsInstance.NewCounter("sales_finalized_total", "Total number of token sales finalized")

	m.TradesExecuted = metricsInstance.NewCounterVec(
		"trades_executed_total",
		"Total number of trades executed by type",
		[]string{"type"},
	)

	m.TradesRejected = metricsInstance.NewCounterVec(
		"trades_rejected_total",
		"Total number of trades rejected by error code",
		[]string{"code"},
	)

	m.NativeVolume = metricsInstance.NewCounter("native_volume_total", "Cumulative native-token trade volume")
	m.FeesCollected = metricsInstance.NewCounter("fees_collected_total", "Cumulative native-token fees collected")

	m.RequestsProcessed = metricsInstance.NewCounterVec(
		"api_requests_processed_total",
		"Total number of API requests processed",
		[]string{"method", "status"},
	)

	m.TradeDuration = metricsInstance.NewHistogram(
		"trade_duration_seconds",
		"Time to settle a trade",
		prometheus.DefBuckets,
	)

	return m, nil
}

// GetGatherer returns the prometheus gatherer for metrics export
func (m *Metrics) GetGatherer() prometheus.Gatherer {
	if registry := m.metricsInstance.Registry(); registry != nil {
		return registry
	}
	return prometheus.DefaultGatherer
}

// GetRegisterer returns the prometheus registerer
func (m *Metrics) GetRegisterer() prometheus.Registerer {
	if registry := m.metricsInstance.Registry(); registry != nil {
		return registry
	}
	return prometheus.DefaultRegisterer
}
