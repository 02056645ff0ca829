package collector

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pyro2927/ha-generac/internal/mapper"
)

// MetricSet holds all Prometheus metric descriptors for the Generac exporter.
type MetricSet struct {
	// Per-generator state
	status          *prometheus.Desc
	engineHours     *prometheus.Desc
	protectionHours *prometheus.Desc
	batteryVoltage  *prometheus.Desc
	exerciseMinutes *prometheus.Desc
	fuelType        *prometheus.Desc
	outdoorTemp     *prometheus.Desc

	// Timestamps
	activationUnix *prometheus.Desc
	lastSeenUnix   *prometheus.Desc
	connectionUnix *prometheus.Desc

	// Fleet
	generators *prometheus.Desc

	// Scrape metrics
	scrapeErrors   prometheus.Counter
	scrapeDuration prometheus.Histogram
}

// newMetricSet creates all metric descriptors.
func newMetricSet() *MetricSet {
	labels := []string{mapper.LabelGeneratorID, mapper.LabelName, mapper.LabelModel}
	labelsWithStatus := append(append([]string{}, labels...), mapper.LabelStatus)
	labelsWithFuel := append(append([]string{}, labels...), mapper.LabelFuel)

	return &MetricSet{
		status: prometheus.NewDesc(
			"generac_generator_status",
			"Current generator status (1 for the active status label)",
			labelsWithStatus, nil,
		),
		engineHours: prometheus.NewDesc(
			"generac_engine_run_time_hours",
			"Cumulative engine run time (h)",
			labels, nil,
		),
		protectionHours: prometheus.NewDesc(
			"generac_protection_time_hours",
			"Cumulative hours of protection (h)",
			labels, nil,
		),
		batteryVoltage: prometheus.NewDesc(
			"generac_battery_voltage_volts",
			"Battery voltage (V)",
			labels, nil,
		),
		exerciseMinutes: prometheus.NewDesc(
			"generac_exercise_duration_minutes",
			"Configured exercise duration (min)",
			labels, nil,
		),
		fuelType: prometheus.NewDesc(
			"generac_fuel_type",
			"Fuel type (1 for the active fuel label)",
			labelsWithFuel, nil,
		),
		outdoorTemp: prometheus.NewDesc(
			"generac_outdoor_temperature_celsius",
			"Outdoor temperature near the generator (°C)",
			labels, nil,
		),
		activationUnix: prometheus.NewDesc(
			"generac_activation_timestamp_seconds",
			"Unix time the generator was activated",
			labels, nil,
		),
		lastSeenUnix: prometheus.NewDesc(
			"generac_last_seen_timestamp_seconds",
			"Unix time the generator last reported in",
			labels, nil,
		),
		connectionUnix: prometheus.NewDesc(
			"generac_connection_timestamp_seconds",
			"Unix time of the current connection",
			labels, nil,
		),
		generators: prometheus.NewDesc(
			"generac_generators",
			"Number of generator units returned by the last fetch",
			nil, nil,
		),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "generac_scrape_errors_total",
			Help: "Total number of failed MobileLink scrapes",
		}),
		scrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "generac_scrape_duration_seconds",
			Help:    "Duration of MobileLink scrapes",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
