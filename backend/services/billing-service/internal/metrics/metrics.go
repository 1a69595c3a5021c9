package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "billing_"

	// ResultSuccess labels a completed computation.
	ResultSuccess = "success"
)

var (
	registerOnce sync.Once

	cdrTotal       *prometheus.CounterVec
	cdrLatency     *prometheus.HistogramVec
	unmatchedTotal *prometheus.CounterVec
	tariffLookups  *prometheus.CounterVec
	invoiceTotal   *prometheus.CounterVec
	billedEnergyWh prometheus.Counter
)

// Init registers billing metrics with the default registry. db may be nil.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		cdrTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cdr_total",
				Help: "Total CDR computations by source and result",
			},
			[]string{"source", "result"},
		)
		cdrLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "cdr_latency_seconds",
				Help:    "CDR computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)
		unmatchedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "unmatched_category_total",
				Help: "Price categories without an applicable tier",
			},
			[]string{"category"},
		)
		tariffLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "tariff_lookups_total",
				Help: "Resolved tariffs by source",
			},
			[]string{"source"},
		)
		invoiceTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_render_total",
				Help: "Rendered invoices by format and result",
			},
			[]string{"format", "result"},
		)
		billedEnergyWh = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "billed_energy_wh_total",
				Help: "Billed energy in Wh",
			},
		)

		prometheus.MustRegister(
			cdrTotal,
			cdrLatency,
			unmatchedTotal,
			tariffLookups,
			invoiceTotal,
			billedEnergyWh,
		)

		if db != nil {
			registerDBMetrics(db)
		}
	})
}

func registerDBMetrics(db *sql.DB) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "db_open_connections",
				Help: "Open database connections",
			},
			func() float64 { return float64(db.Stats().OpenConnections) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "db_in_use_connections",
				Help: "Database connections in use",
			},
			func() float64 { return float64(db.Stats().InUse) },
		),
	)
}

// ObserveCDR records a CDR computation. result is ResultSuccess or an error kind.
func ObserveCDR(source, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if cdrTotal != nil {
		cdrTotal.WithLabelValues(source, result).Inc()
	}
	if cdrLatency != nil {
		cdrLatency.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// IncUnmatched counts a category that found no applicable tier.
func IncUnmatched(category string) {
	if unmatchedTotal != nil {
		unmatchedTotal.WithLabelValues(category).Inc()
	}
}

// IncTariffLookup counts a resolved tariff.
func IncTariffLookup(source string) {
	if tariffLookups != nil {
		tariffLookups.WithLabelValues(source).Inc()
	}
}

// IncInvoice counts an invoice render.
func IncInvoice(format, result string) {
	if invoiceTotal != nil {
		invoiceTotal.WithLabelValues(format, result).Inc()
	}
}

// AddBilledEnergy adds billed Wh.
func AddBilledEnergy(wh float64) {
	if billedEnergyWh != nil && wh > 0 {
		billedEnergyWh.Add(wh)
	}
}
