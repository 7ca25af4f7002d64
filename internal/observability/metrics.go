package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wonny/inout/backend/internal/contracts"
)

// Metrics publishes decisions as Prometheus series
type Metrics struct {
	inMarket    prometheus.Gauge
	outSignals  prometheus.Gauge
	waitDays    prometheus.Gauge
	dayCounter  prometheus.Gauge
	breached    *prometheus.GaugeVec
	evaluations *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	orders      *prometheus.CounterVec
}

// NewMetrics registers the engine series on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		inMarket: f.NewGauge(prometheus.GaugeOpts{
			Name: "inout_in_market",
			Help: "1 while the regime is IN, 0 while OUT",
		}),
		outSignals: f.NewGauge(prometheus.GaugeOpts{
			Name: "inout_num_out_signals",
			Help: "Signals breaching their left-tail threshold on the last evaluation",
		}),
		waitDays: f.NewGauge(prometheus.GaugeOpts{
			Name: "inout_wait_days",
			Help: "Current cooldown length in trading days",
		}),
		dayCounter: f.NewGauge(prometheus.GaugeOpts{
			Name: "inout_day_counter",
			Help: "Daily evaluations committed since the state was created",
		}),
		breached: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inout_signal_breached",
			Help: "1 when the signal breached on the last daily evaluation",
		}, []string{"signal"}),
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inout_evaluations_total",
			Help: "Evaluations by entry point",
		}, []string{"kind"}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inout_skipped_evaluations_total",
			Help: "Evaluations skipped without a state change, by reason",
		}, []string{"kind", "reason"}),
		orders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inout_instructions_total",
			Help: "Target-weight instructions emitted",
		}, []string{"symbol"}),
	}
}

// Publish implements contracts.Publisher
func (m *Metrics) Publish(d *contracts.Decision) {
	kind := string(d.Kind)
	m.evaluations.WithLabelValues(kind).Inc()

	if d.Skipped {
		m.skipped.WithLabelValues(kind, d.SkipReason).Inc()
		return
	}

	m.inMarket.Set(float64(d.After.Regime.Indicator()))
	m.waitDays.Set(float64(d.After.WaitDays))
	m.dayCounter.Set(float64(d.After.DayCounter))

	if d.Kind == contracts.KindDailyOutCheck {
		m.outSignals.Set(float64(d.BreachCount))
		for _, r := range d.Readings {
			v := 0.0
			if r.Breached {
				v = 1
			}
			m.breached.WithLabelValues(r.Name).Set(v)
		}
	}

	for _, in := range d.Instructions {
		m.orders.WithLabelValues(in.Symbol).Inc()
	}
}
