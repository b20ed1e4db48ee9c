package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WaveCollector bundles Prometheus metrics for the wave observation loops
// and provides a ready-to-serve /metrics handler.
type WaveCollector struct {
	gatherer prometheus.Gatherer

	Recomputes         *prometheus.CounterVec
	RecomputeDurations prometheus.Histogram
	TickIntervals      prometheus.Histogram
	Progression        *prometheus.GaugeVec
	Hits               *prometheus.CounterVec
	ActiveObservations prometheus.Gauge
}

// NewWaveCollector registers wave metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewWaveCollector(reg prometheus.Registerer) (*WaveCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	recomputes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wave_recomputes_total",
		Help: "Total wave-state recomputations, labeled by event and update mode.",
	}, []string{"event", "mode"})
	recomputes, err := registerCounterVec(reg, recomputes, "wave_recomputes_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wave_recompute_duration_seconds",
		Help:    "Time spent splitting area polygons per recomputation tick.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})
	durations, err = registerHistogram(reg, durations, "wave_recompute_duration_seconds")
	if err != nil {
		return nil, err
	}

	intervals := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wave_observation_interval_seconds",
		Help:    "Recomputation intervals chosen by the observation scheduler.",
		Buckets: []float64{0.05, 0.25, 1, 5, 30},
	})
	intervals, err = registerHistogram(reg, intervals, "wave_observation_interval_seconds")
	if err != nil {
		return nil, err
	}

	progression := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wave_progression_ratio",
		Help: "Fraction of the wave crossing completed per observed event.",
	}, []string{"event"})
	progression, err = registerGaugeVec(reg, progression, "wave_progression_ratio")
	if err != nil {
		return nil, err
	}

	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wave_user_hits_total",
		Help: "Hit transitions detected for the observed user, by event.",
	}, []string{"event"})
	hits, err = registerCounterVec(reg, hits, "wave_user_hits_total")
	if err != nil {
		return nil, err
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wave_active_observations",
		Help: "Number of event observation loops currently running.",
	}), "wave_active_observations")
	if err != nil {
		return nil, err
	}

	return &WaveCollector{
		gatherer:           gatherer,
		Recomputes:         recomputes,
		RecomputeDurations: durations,
		TickIntervals:      intervals,
		Progression:        progression,
		Hits:               hits,
		ActiveObservations: active,
	}, nil
}

// ObserveRecompute records one polygon recomputation.
func (c *WaveCollector) ObserveRecompute(event, mode string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.Recomputes != nil {
		c.Recomputes.WithLabelValues(event, mode).Inc()
	}
	if c.RecomputeDurations != nil {
		c.RecomputeDurations.Observe(elapsed.Seconds())
	}
}

// ObserveInterval records the interval the scheduler picked for the next
// tick.
func (c *WaveCollector) ObserveInterval(interval time.Duration) {
	if c == nil || c.TickIntervals == nil {
		return
	}
	c.TickIntervals.Observe(interval.Seconds())
}

// SetProgression publishes an event's crossing fraction.
func (c *WaveCollector) SetProgression(event string, ratio float64) {
	if c == nil || c.Progression == nil {
		return
	}
	c.Progression.WithLabelValues(event).Set(ratio)
}

// IncHit counts a no-hit to hit transition for the observed user.
func (c *WaveCollector) IncHit(event string) {
	if c == nil || c.Hits == nil {
		return
	}
	c.Hits.WithLabelValues(event).Inc()
}

// ObservationStarted and ObservationStopped track the active-loop gauge.
func (c *WaveCollector) ObservationStarted() {
	if c == nil || c.ActiveObservations == nil {
		return
	}
	c.ActiveObservations.Inc()
}

func (c *WaveCollector) ObservationStopped() {
	if c == nil || c.ActiveObservations == nil {
		return
	}
	c.ActiveObservations.Dec()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *WaveCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
