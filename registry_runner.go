package anvil

// RunRegistryAndFactoryExtensions executes the two extension phases:
// registry mutation, then factory observation. Host-supplied extensions are
// pre-instantiated and take precedence over anything discovered through the
// registry.
//
// The registry phase deliberately performs multiple scans over the
// registry's names: host-supplied registry extensions run first in supplied
// order, then priority-tier definitions, then ordered-tier definitions, then
// a fixed-point loop over whatever remains, because any invocation may
// register further registry extensions. Tier membership is decided at the
// scan that first sees a name and is never re-evaluated, and each name is
// processed at most once.
func (p *Pipeline) RunRegistryAndFactoryExtensions(host []FactoryExtension) error {
	if p.factory == nil {
		return errNilFactory
	}

	processed := make(map[string]struct{})

	var (
		invokedRegistry []RegistryExtension
		hostPlain       []FactoryExtension
	)

	registry, isRegistry := p.registry()
	if !isRegistry {
		// No registry to mutate: only the factory-observation phase applies.
		return p.runFactoryExtensions(nil, host, processed)
	}

	// Host-supplied registry extensions run immediately, unconditionally, in
	// supplied order. This is the highest possible precedence.
	for _, ext := range host {
		regExt, ok := ext.(RegistryExtension)
		if !ok {
			hostPlain = append(hostPlain, ext)
			continue
		}

		if err := p.invokeRegistryExtension(regExt, registry); err != nil {
			return err
		}

		invokedRegistry = append(invokedRegistry, regExt)
	}

	// Priority-tier registry extensions discovered through the registry.
	current, err := p.collectRegistryExtensions(registry, processed, func(name string) bool {
		return registry.IsTypeMatch(name, CapabilityPrioritized)
	})
	if err != nil {
		return err
	}

	sortCandidates(current, p.factory)

	invokedRegistry = append(invokedRegistry, current...)
	if err := p.invokeRegistryExtensions(current, registry); err != nil {
		return err
	}

	// Ordered-tier registry extensions. The processed set already excludes
	// the priority tier; prioritized candidates registered by the priority
	// pass itself are left for the fixed-point loop.
	current, err = p.collectRegistryExtensions(registry, processed, func(name string) bool {
		return registry.IsTypeMatch(name, CapabilityOrdered) &&
			!registry.IsTypeMatch(name, CapabilityPrioritized)
	})
	if err != nil {
		return err
	}

	sortCandidates(current, p.factory)

	invokedRegistry = append(invokedRegistry, current...)
	if err := p.invokeRegistryExtensions(current, registry); err != nil {
		return err
	}

	// Fixed-point loop over everything else, including extensions registered
	// by a previous pass. Terminates at the first scan that finds no new
	// names.
	for {
		p.metrics.scanPass()

		current, err = p.collectRegistryExtensions(registry, processed, nil)
		if err != nil {
			return err
		}

		if len(current) == 0 {
			break
		}

		sortCandidates(current, p.factory)

		invokedRegistry = append(invokedRegistry, current...)
		if err := p.invokeRegistryExtensions(current, registry); err != nil {
			return err
		}
	}

	return p.runFactoryExtensions(invokedRegistry, hostPlain, processed)
}

// collectRegistryExtensions instantiates the registry extensions whose names
// pass the filter and are not yet processed, marking them processed. A nil
// filter accepts every remaining name.
func (p *Pipeline) collectRegistryExtensions(
	registry DefinitionRegistry,
	processed map[string]struct{},
	filter func(name string) bool,
) ([]RegistryExtension, error) {
	var collected []RegistryExtension

	for _, name := range registry.NamesMatching(CapabilityRegistryExtension) {
		if _, done := processed[name]; done {
			continue
		}

		if filter != nil && !filter(name) {
			continue
		}

		inst, err := p.factory.Instantiate(name, CapabilityRegistryExtension)
		if err != nil {
			return nil, err
		}

		collected = append(collected, inst.(RegistryExtension))
		processed[name] = struct{}{}
	}

	return collected, nil
}

func (p *Pipeline) invokeRegistryExtensions(exts []RegistryExtension, registry DefinitionRegistry) error {
	for _, ext := range exts {
		if err := p.invokeRegistryExtension(ext, registry); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) invokeRegistryExtension(ext RegistryExtension, registry DefinitionRegistry) error {
	name := componentName(ext)

	p.logger.Debug("invoking registry extension", String("extension", name))

	if err := ext.ProcessRegistry(registry); err != nil {
		return ErrExtensionFailed(name, err)
	}

	p.metrics.extensionInvoked(phaseRegistry)

	return nil
}
