package anvil

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Phase labels used in logs and metrics.
const (
	phaseRegistry = "registry"
	phaseFactory  = "factory"
)

// Pipeline drives the configuration-time extension phases against one
// ComponentFactory. A Pipeline is single-shot and single-threaded: phases run
// in program order and extensions are never invoked concurrently.
type Pipeline struct {
	factory ComponentFactory
	logger  Logger
	metrics *PipelineMetrics
	runID   string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithMetrics enables Prometheus metrics, registered with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Pipeline) {
		p.metrics = NewPipelineMetrics(reg)
	}
}

// NewPipeline creates a pipeline for the given factory.
func NewPipeline(factory ComponentFactory, opts ...Option) *Pipeline {
	p := &Pipeline{
		factory: factory,
		logger:  NewNoopLogger(),
		runID:   uuid.New().String(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.logger = p.logger.Named("anvil").With(String("run_id", p.runID))

	return p
}

// RunID returns the unique identifier of this pipeline run.
func (p *Pipeline) RunID() string {
	return p.runID
}

// registry returns the factory's registry view, when it has one.
func (p *Pipeline) registry() (DefinitionRegistry, bool) {
	registry, ok := p.factory.(DefinitionRegistry)
	return registry, ok
}
