package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openclaw/clawevolve/controller/internal/runlog"
	"github.com/openclaw/clawevolve/controller/internal/trigger"
)

// #region metrics

// Metrics holds the Prometheus instruments. It carries its own registry
// so multiple controllers in one process never collide, and it doubles
// as an orchestrator event sink.
type Metrics struct {
	registry *prometheus.Registry

	trajectoriesIngested prometheus.Counter
	runsStarted          prometheus.Counter
	promotions           prometheus.Counter
	rejections           prometheus.Counter
	rollbacks            prometheus.Counter
	runErrors            prometheus.Counter
	windowLen            prometheus.Gauge
	championAggregate    prometheus.Gauge
}

// NewMetrics creates and registers all instruments.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		trajectoriesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clawevolve_trajectories_ingested_total",
			Help: "Trajectories accepted into the sliding window.",
		}),
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clawevolve_runs_started_total",
			Help: "Evolution runs started, online and manual.",
		}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clawevolve_promotions_total",
			Help: "Candidates promoted to champion.",
		}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clawevolve_rejections_total",
			Help: "Candidates rejected by the promotion gate.",
		}),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clawevolve_rollbacks_total",
			Help: "Champion reverts triggered by the rollback monitor.",
		}),
		runErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clawevolve_run_errors_total",
			Help: "Evolution runs that failed at the optimizer.",
		}),
		windowLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clawevolve_window_trajectories",
			Help: "Current trajectory window length.",
		}),
		championAggregate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clawevolve_champion_aggregate",
			Help: "Aggregate holdout score of the champion at promotion time.",
		}),
	}
	m.registry.MustRegister(
		m.trajectoriesIngested, m.runsStarted, m.promotions,
		m.rejections, m.rollbacks, m.runErrors, m.windowLen,
		m.championAggregate,
	)
	return m
}

// Emit maps controller events onto counters.
func (m *Metrics) Emit(ev runlog.Event) {
	switch ev.Type {
	case runlog.EventEvolutionStart:
		m.runsStarted.Inc()
	case runlog.EventPromotion:
		m.promotions.Inc()
		if agg, ok := ev.Payload["aggregate"].(float64); ok {
			m.championAggregate.Set(agg)
		}
	case runlog.EventRejection:
		m.rejections.Inc()
	case runlog.EventRollback:
		m.rollbacks.Inc()
	case runlog.EventError:
		m.runErrors.Inc()
	}
}

// ObserveIngest records one accepted trajectory and the resulting window
// length.
func (m *Metrics) ObserveIngest(st trigger.Status) {
	m.trajectoriesIngested.Inc()
	m.windowLen.Set(float64(st.TrajectoryCount))
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// #endregion metrics
