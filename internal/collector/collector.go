// Package collector implements the Prometheus collector interface for Generac
// generators reachable through the MobileLink cloud.
package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pyro2927/ha-generac/internal/generac"
	"github.com/pyro2927/ha-generac/internal/mapper"
	"github.com/pyro2927/ha-generac/internal/types"
)

// GeneracCollector implements prometheus.Collector. Each scrape performs one
// full device fetch through the client. The client supports only one fetch in
// flight at a time, and promhttp serves concurrent /metrics requests on
// separate goroutines, so fetches are serialized here.
type GeneracCollector struct {
	client  *generac.Client
	logger  *slog.Logger
	timeout time.Duration
	metrics *MetricSet

	fetchMu sync.Mutex
}

// NewGeneracCollector creates a collector over an authenticated client.
func NewGeneracCollector(client *generac.Client, timeout time.Duration, logger *slog.Logger) *GeneracCollector {
	return &GeneracCollector{
		client:  client,
		logger:  logger,
		timeout: timeout,
		metrics: newMetricSet(),
	}
}

// Describe implements prometheus.Collector.
func (c *GeneracCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.metrics.status
	ch <- c.metrics.engineHours
	ch <- c.metrics.protectionHours
	ch <- c.metrics.batteryVoltage
	ch <- c.metrics.exerciseMinutes
	ch <- c.metrics.fuelType
	ch <- c.metrics.outdoorTemp
	ch <- c.metrics.activationUnix
	ch <- c.metrics.lastSeenUnix
	ch <- c.metrics.connectionUnix
	ch <- c.metrics.generators

	c.metrics.scrapeErrors.Describe(ch)
	c.metrics.scrapeDuration.Describe(ch)
}

// Collect implements prometheus.Collector. It fetches on demand when
// Prometheus scrapes the /metrics endpoint.
func (c *GeneracCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		c.metrics.scrapeDuration.Observe(time.Since(start).Seconds())
		c.metrics.scrapeDuration.Collect(ch)
		c.metrics.scrapeErrors.Collect(ch)
	}()

	c.logger.Debug("Starting scrape")
	c.fetchMu.Lock()
	items, err := c.client.FetchDeviceData(ctx)
	c.fetchMu.Unlock()
	if err != nil {
		c.metrics.scrapeErrors.Inc()
		c.logger.Error("Device fetch failed during scrape", "error", err)
		return
	}
	if items == nil {
		c.logger.Warn("Device list endpoints returned no data")
	}

	ch <- prometheus.MustNewConstMetric(c.metrics.generators, prometheus.GaugeValue, float64(len(items)))
	for id, item := range items {
		c.emitGenerator(ch, id, item)
	}
}

// emitGenerator emits all metrics for a single generator unit.
func (c *GeneracCollector) emitGenerator(ch chan<- prometheus.Metric, id string, item types.Item) {
	labels := []string{id, item.Apparatus.Name, item.Apparatus.ModelNumber}
	detail := item.Detail

	statusLabels := append(append([]string{}, labels...), mapper.StatusLabel(detail.ApparatusStatus))
	ch <- prometheus.MustNewConstMetric(c.metrics.status, prometheus.GaugeValue, 1, statusLabels...)

	fuelLabels := append(append([]string{}, labels...), mapper.FuelTypeLabel(detail.Properties))
	ch <- prometheus.MustNewConstMetric(c.metrics.fuelType, prometheus.GaugeValue, 1, fuelLabels...)

	ch <- prometheus.MustNewConstMetric(c.metrics.engineHours, prometheus.GaugeValue,
		mapper.PropertyValueOrDefault(detail.Properties, mapper.EngineHoursCodes, 0), labels...)
	ch <- prometheus.MustNewConstMetric(c.metrics.protectionHours, prometheus.GaugeValue,
		mapper.PropertyValueOrDefault(detail.Properties, mapper.ProtectionHoursCodes, 0), labels...)
	ch <- prometheus.MustNewConstMetric(c.metrics.batteryVoltage, prometheus.GaugeValue,
		mapper.PropertyValueOrDefault(detail.Properties, mapper.BatteryVoltageCodes, 0), labels...)
	ch <- prometheus.MustNewConstMetric(c.metrics.exerciseMinutes, prometheus.GaugeValue,
		mapper.PropertyValueOrDefault(detail.Properties, mapper.ExerciseMinutesCodes, 0), labels...)

	if temp, ok := mapper.OutdoorTemperatureCelsius(detail.Weather); ok {
		ch <- prometheus.MustNewConstMetric(c.metrics.outdoorTemp, prometheus.GaugeValue, temp, labels...)
	}

	if ts := mapper.TimestampUnix(detail.ActivationDate); ts > 0 {
		ch <- prometheus.MustNewConstMetric(c.metrics.activationUnix, prometheus.GaugeValue, float64(ts), labels...)
	}
	if ts := mapper.TimestampUnix(detail.LastSeen); ts > 0 {
		ch <- prometheus.MustNewConstMetric(c.metrics.lastSeenUnix, prometheus.GaugeValue, float64(ts), labels...)
	}
	if ts := mapper.TimestampUnix(detail.ConnectionTimestamp); ts > 0 {
		ch <- prometheus.MustNewConstMetric(c.metrics.connectionUnix, prometheus.GaugeValue, float64(ts), labels...)
	}
}
