package anvil

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes pipeline counters through Prometheus. All methods
// are safe on a nil receiver so metrics stay optional.
type PipelineMetrics struct {
	extensionsInvoked      *prometheus.CounterVec
	scanPasses             prometheus.Counter
	interceptorsRegistered prometheus.Counter
	lateInstantiations     prometheus.Counter
	mergedDefinitions      prometheus.Counter
}

// NewPipelineMetrics creates pipeline metrics and registers them with the
// given registerer when it is non-nil.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		extensionsInvoked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anvil_extensions_invoked_total",
			Help: "Extensions invoked, partitioned by pipeline phase.",
		}, []string{"phase"}),
		scanPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anvil_registry_scan_passes_total",
			Help: "Registry scans performed by the fixed-point loop.",
		}),
		interceptorsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anvil_interceptors_registered_total",
			Help: "Interceptors appended to the factory chain.",
		}),
		lateInstantiations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anvil_late_instantiations_total",
			Help: "Components instantiated before the interceptor chain was complete.",
		}),
		mergedDefinitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anvil_merged_definitions_total",
			Help: "Merged definitions resolved, inner definitions included.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.extensionsInvoked,
			m.scanPasses,
			m.interceptorsRegistered,
			m.lateInstantiations,
			m.mergedDefinitions,
		)
	}

	return m
}

func (m *PipelineMetrics) extensionInvoked(phase string) {
	if m == nil {
		return
	}
	m.extensionsInvoked.WithLabelValues(phase).Inc()
}

func (m *PipelineMetrics) scanPass() {
	if m == nil {
		return
	}
	m.scanPasses.Inc()
}

func (m *PipelineMetrics) interceptorRegistered(n int) {
	if m == nil {
		return
	}
	m.interceptorsRegistered.Add(float64(n))
}

func (m *PipelineMetrics) lateInstantiation() {
	if m == nil {
		return
	}
	m.lateInstantiations.Inc()
}

func (m *PipelineMetrics) mergedDefinition() {
	if m == nil {
		return
	}
	m.mergedDefinitions.Inc()
}
