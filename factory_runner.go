package anvil

// runFactoryExtensions drives the factory-observation phase: first the
// factory hooks of every registry extension already invoked (RegistryExtension
// is a superset of FactoryExtension), then host-supplied plain extensions,
// then extensions discovered through the registry, one pass per tier. Factory
// hooks must not register definitions, so no fixed-point loop is needed.
func (p *Pipeline) runFactoryExtensions(
	invokedRegistry []RegistryExtension,
	hostPlain []FactoryExtension,
	processed map[string]struct{},
) error {
	for _, ext := range invokedRegistry {
		if err := p.invokeFactoryExtension(ext); err != nil {
			return err
		}
	}

	for _, ext := range hostPlain {
		if err := p.invokeFactoryExtension(ext); err != nil {
			return err
		}
	}

	if registry, ok := p.registry(); ok {
		if err := p.runDiscoveredFactoryExtensions(registry, processed); err != nil {
			return err
		}
	}

	// Observation hooks may have rewritten values that cached merged
	// definitions captured.
	p.factory.InvalidateMetadata()

	return nil
}

// runDiscoveredFactoryExtensions partitions the remaining factory-extension
// definitions by tier in one scan, then instantiates and invokes each tier in
// order. Priority-tier members are instantiated during partitioning; the
// other tiers stay uninstantiated until their turn.
func (p *Pipeline) runDiscoveredFactoryExtensions(registry DefinitionRegistry, processed map[string]struct{}) error {
	var (
		priority       []FactoryExtension
		orderedNames   []string
		unorderedNames []string
	)

	for _, name := range registry.NamesMatching(CapabilityFactoryExtension) {
		if _, done := processed[name]; done {
			continue
		}

		switch {
		case registry.IsTypeMatch(name, CapabilityPrioritized):
			inst, err := p.factory.Instantiate(name, CapabilityFactoryExtension)
			if err != nil {
				return err
			}

			priority = append(priority, inst.(FactoryExtension))
		case registry.IsTypeMatch(name, CapabilityOrdered):
			orderedNames = append(orderedNames, name)
		default:
			unorderedNames = append(unorderedNames, name)
		}
	}

	sortCandidates(priority, p.factory)

	for _, ext := range priority {
		if err := p.invokeFactoryExtension(ext); err != nil {
			return err
		}
	}

	ordered, err := p.instantiateFactoryExtensions(orderedNames)
	if err != nil {
		return err
	}

	sortCandidates(ordered, p.factory)

	for _, ext := range ordered {
		if err := p.invokeFactoryExtension(ext); err != nil {
			return err
		}
	}

	unordered, err := p.instantiateFactoryExtensions(unorderedNames)
	if err != nil {
		return err
	}

	for _, ext := range unordered {
		if err := p.invokeFactoryExtension(ext); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) instantiateFactoryExtensions(names []string) ([]FactoryExtension, error) {
	exts := make([]FactoryExtension, 0, len(names))

	for _, name := range names {
		inst, err := p.factory.Instantiate(name, CapabilityFactoryExtension)
		if err != nil {
			return nil, err
		}

		exts = append(exts, inst.(FactoryExtension))
	}

	return exts, nil
}

func (p *Pipeline) invokeFactoryExtension(ext FactoryExtension) error {
	name := componentName(ext)

	p.logger.Debug("invoking factory extension", String("extension", name))

	if err := ext.ProcessFactory(p.factory); err != nil {
		return ErrExtensionFailed(name, err)
	}

	p.metrics.extensionInvoked(phaseFactory)

	return nil
}
