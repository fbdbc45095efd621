package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the RBAC core. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	DecisionsTotal     *prometheus.CounterVec
	PluginSyncsTotal   *prometheus.CounterVec
	PluginSyncedCodes  *prometheus.CounterVec
	CacheRebuildsTotal *prometheus.CounterVec
	EnabledPlugins     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_decisions_total",
				Help: "Authorization decisions by outcome",
			},
			[]string{"decision"},
		),
		PluginSyncsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_plugin_syncs_total",
				Help: "Plugin permission sync runs by status",
			},
			[]string{"status"},
		),
		PluginSyncedCodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_plugin_synced_permissions_total",
				Help: "Plugin permission codes processed by sync, by outcome",
			},
			[]string{"outcome"},
		),
		CacheRebuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_enabled_plugin_cache_rebuilds_total",
				Help: "Enabled-plugin cache rebuilds by status",
			},
			[]string{"status"},
		),
		EnabledPlugins: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rbac_enabled_plugins",
				Help: "Number of plugins in the last written cache snapshot",
			},
		),
	}

	reg.MustRegister(
		m.DecisionsTotal,
		m.PluginSyncsTotal,
		m.PluginSyncedCodes,
		m.CacheRebuildsTotal,
		m.EnabledPlugins,
	)
	return m
}

func (m *Metrics) ObserveDecision(decision string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObservePluginSync(ok bool, created, updated, unchanged, rejected int) {
	if m == nil {
		return
	}
	m.PluginSyncsTotal.WithLabelValues(status(ok)).Inc()
	m.PluginSyncedCodes.WithLabelValues("created").Add(float64(created))
	m.PluginSyncedCodes.WithLabelValues("updated").Add(float64(updated))
	m.PluginSyncedCodes.WithLabelValues("unchanged").Add(float64(unchanged))
	m.PluginSyncedCodes.WithLabelValues("rejected").Add(float64(rejected))
}

func (m *Metrics) ObserveCacheRebuild(ok bool, enabled int) {
	if m == nil {
		return
	}
	m.CacheRebuildsTotal.WithLabelValues(status(ok)).Inc()
	if ok {
		m.EnabledPlugins.Set(float64(enabled))
	}
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
