package anvil

import "reflect"

// Interceptor hooks into individual component creation. Both hooks may
// replace the component by returning a different value; returning nil keeps
// the current one.
type Interceptor interface {
	// BeforeInit runs before a component's initialization.
	BeforeInit(component any, name string) (any, error)

	// AfterInit runs after a component's initialization. Decorating proxies
	// are typically applied here.
	AfterInit(component any, name string) (any, error)
}

// MergeInterceptor additionally reacts to a definition being finalized,
// including inner definitions reachable through property and constructor
// values. Merge interceptors are expected to be infrastructural: the chain
// builder re-registers them after all plain interceptors so they observe
// fully-decorated components.
type MergeInterceptor interface {
	Interceptor

	// ProcessMergedDefinition is invoked once per reachable definition
	// occurrence. componentType is nil when the definition's type reference
	// could not be resolved.
	ProcessMergedDefinition(def *ComponentDefinition, componentType reflect.Type, name string)
}

// EventListener receives component events from the host. The final
// interceptor appended by the chain builder registers singleton components
// implementing EventListener with the host's ListenerRegistrar.
type EventListener interface {
	OnComponentEvent(event any)
}

// ListenerRegistrar is the host-side sink for detected listeners.
type ListenerRegistrar interface {
	RegisterListener(name string, listener EventListener)
}
