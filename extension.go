package anvil

import "fmt"

// FactoryExtension observes or modifies the finalized component factory after
// all definitions have been registered. Factory hooks must not register new
// definitions; the pipeline performs a single discovery pass per tier.
//
// Extensions may additionally implement Prioritized or Ordered to control
// invocation precedence, and Named for diagnostics.
type FactoryExtension interface {
	// ProcessFactory is invoked once, after every RegistryExtension has run.
	// A non-nil error aborts the pipeline.
	ProcessFactory(factory ComponentFactory) error
}

// RegistryExtension can mutate the definition registry before any ordinary
// component is instantiated: adding definitions, removing them, or registering
// further extensions to be picked up by a later scan. RegistryExtension is a
// strict superset of FactoryExtension: after all registry mutation completes,
// its factory hook runs as well.
type RegistryExtension interface {
	FactoryExtension

	// ProcessRegistry is invoked once during the registry-mutation phase.
	// A non-nil error aborts the pipeline.
	ProcessRegistry(registry DefinitionRegistry) error
}

// Named reports a component's name. Extensions and interceptors may implement
// it to improve log and error messages.
type Named interface {
	Name() string
}

// componentName resolves a diagnostic name for an extension or interceptor.
func componentName(v any) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", v)
}
