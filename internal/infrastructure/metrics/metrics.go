package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventbot/internal/ports/output"
)

var _ output.Metrics = (*Recorder)(nil)

// Recorder exposes lifecycle and scheduler metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	transitions        *prometheus.CounterVec
	sideEffectFailures *prometheus.CounterVec
	tickDuration       prometheus.Histogram
	reminders          prometheus.Counter
	promotions         prometheus.Counter
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbot_transitions_total",
				Help: "Lifecycle transitions by outcome",
			},
			[]string{"transition", "outcome"},
		),
		sideEffectFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbot_side_effect_failures_total",
				Help: "Gateway side effects that failed and were ignored",
			},
			[]string{"op"},
		),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventbot_scheduler_tick_seconds",
			Help:    "Duration of scheduler ticks",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventbot_reminders_sent_total",
			Help: "Starting-soon reminders sent",
		}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventbot_promotions_total",
			Help: "Events promoted to Ongoing by the scheduler",
		}),
	}
	reg.MustRegister(
		r.transitions,
		r.sideEffectFailures,
		r.tickDuration,
		r.reminders,
		r.promotions,
		collectors.NewGoCollector(),
	)
	return r
}

func (r *Recorder) ObserveTransition(transition, outcome string) {
	r.transitions.WithLabelValues(transition, outcome).Inc()
}

func (r *Recorder) ObserveSideEffectFailure(op string) {
	r.sideEffectFailures.WithLabelValues(op).Inc()
}

func (r *Recorder) ObserveTick(d time.Duration, reminded, promoted int) {
	r.tickDuration.Observe(d.Seconds())
	r.reminders.Add(float64(reminded))
	r.promotions.Add(float64(promoted))
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("📈 Métriques exposées sur %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
