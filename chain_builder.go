package anvil

// BuildInterceptorChain discovers every interceptor definition, instantiates
// the interceptors in tier order, and appends them to the factory chain. The
// chain is bounded by two bookkeeping interceptors: a late-instantiation
// checker registered first and an inner-component listener detector appended
// last. Merge interceptors are re-appended after all plain interceptors so
// they observe fully-decorated components.
//
// Must run after RunRegistryAndFactoryExtensions, so interceptor definitions
// contributed by extensions are visible.
func (p *Pipeline) BuildInterceptorChain(registrar ListenerRegistrar) error {
	if p.factory == nil {
		return errNilFactory
	}

	registry, ok := p.registry()
	if !ok {
		return ErrRegistryRequired("build interceptor chain")
	}

	names := registry.NamesMatching(CapabilityInterceptor)

	// Components instantiated from here on miss part of the chain; the
	// checker reports them once the target length is known.
	target := p.factory.InterceptorCount() + 1 + len(names)
	p.factory.AppendInterceptor(&lateInstantiationChecker{
		factory: p.factory,
		target:  target,
		logger:  p.logger,
		metrics: p.metrics,
	})

	var (
		priority       []Interceptor
		merge          []Interceptor
		orderedNames   []string
		unorderedNames []string
	)

	for _, name := range names {
		switch {
		case registry.IsTypeMatch(name, CapabilityPrioritized):
			ic, err := p.instantiateInterceptor(name)
			if err != nil {
				return err
			}

			priority = append(priority, ic)
			if mi, ok := ic.(MergeInterceptor); ok {
				merge = append(merge, mi)
			}
		case registry.IsTypeMatch(name, CapabilityOrdered):
			orderedNames = append(orderedNames, name)
		default:
			unorderedNames = append(unorderedNames, name)
		}
	}

	sortCandidates(priority, p.factory)
	p.appendToChain(priority)

	ordered := make([]Interceptor, 0, len(orderedNames))

	for _, name := range orderedNames {
		ic, err := p.instantiateInterceptor(name)
		if err != nil {
			return err
		}

		ordered = append(ordered, ic)
		if mi, ok := ic.(MergeInterceptor); ok {
			merge = append(merge, mi)
		}
	}

	sortCandidates(ordered, p.factory)
	p.appendToChain(ordered)

	// Unordered tier keeps discovery order.
	unordered := make([]Interceptor, 0, len(unorderedNames))

	for _, name := range unorderedNames {
		ic, err := p.instantiateInterceptor(name)
		if err != nil {
			return err
		}

		unordered = append(unordered, ic)
		if mi, ok := ic.(MergeInterceptor); ok {
			merge = append(merge, mi)
		}
	}

	p.appendToChain(unordered)

	// Re-append merge interceptors so they land after all plain ones,
	// whatever tier they were discovered in.
	sortCandidates(merge, p.factory)
	p.appendToChain(merge)

	p.factory.AppendInterceptor(&innerListenerDetector{
		factory:   p.factory,
		registrar: registrar,
	})
	p.metrics.interceptorRegistered(1)

	p.logger.Debug("interceptor chain built",
		Int("chain_length", p.factory.InterceptorCount()),
		Int("discovered", len(names)),
	)

	return nil
}

func (p *Pipeline) instantiateInterceptor(name string) (Interceptor, error) {
	inst, err := p.factory.Instantiate(name, CapabilityInterceptor)
	if err != nil {
		return nil, err
	}

	return inst.(Interceptor), nil
}

// appendToChain bulk-appends so concurrent component creation triggered by a
// later interceptor's instantiation never interleaves with the registration.
func (p *Pipeline) appendToChain(ics []Interceptor) {
	if len(ics) == 0 {
		return
	}

	p.factory.AppendInterceptors(ics)
	p.metrics.interceptorRegistered(len(ics))
}

// lateInstantiationChecker reports components that finished initialization
// before the interceptor chain reached its target length, i.e. components
// instantiated too early (typically as a dependency of an interceptor being
// built). Interceptors themselves and infrastructure-role components are
// exempt. The report is informational, never an error.
type lateInstantiationChecker struct {
	factory ComponentFactory
	target  int
	logger  Logger
	metrics *PipelineMetrics
}

func (c *lateInstantiationChecker) BeforeInit(component any, _ string) (any, error) {
	return component, nil
}

func (c *lateInstantiationChecker) AfterInit(component any, name string) (any, error) {
	if _, isInterceptor := component.(Interceptor); isInterceptor {
		return component, nil
	}

	if c.isInfrastructure(name) {
		return component, nil
	}

	if c.factory.InterceptorCount() < c.target {
		c.logger.Info("component is not eligible for processing by all interceptors",
			String("component", name),
			Int("chain_length", c.factory.InterceptorCount()),
			Int("target_length", c.target),
		)
		c.metrics.lateInstantiation()
	}

	return component, nil
}

func (c *lateInstantiationChecker) isInfrastructure(name string) bool {
	registry, ok := c.factory.(DefinitionRegistry)
	if !ok || !registry.ContainsDefinition(name) {
		return false
	}

	def, err := registry.Definition(name)

	return err == nil && def.Role == RoleInfrastructure
}

// innerListenerDetector registers singleton components implementing
// EventListener with the host. It is appended last so it sees through any
// decoration earlier interceptors performed.
type innerListenerDetector struct {
	factory   ComponentFactory
	registrar ListenerRegistrar
}

func (d *innerListenerDetector) BeforeInit(component any, _ string) (any, error) {
	return component, nil
}

func (d *innerListenerDetector) AfterInit(component any, name string) (any, error) {
	listener, ok := component.(EventListener)
	if !ok || d.registrar == nil {
		return component, nil
	}

	// Inner components are positional and unnamed in the registry; only
	// registered singletons are durable enough to receive events.
	if registry, ok := d.factory.(DefinitionRegistry); ok && registry.ContainsDefinition(name) {
		d.registrar.RegisterListener(name, listener)
	}

	return component, nil
}
