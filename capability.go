package anvil

import "reflect"

// Capability identifies a configuration-time contract a definition or
// component can satisfy. Registry queries match capabilities against a
// definition's declared tags or its resolved type, never by forcing
// instantiation.
type Capability struct {
	name  string
	iface reflect.Type
}

func (c Capability) String() string {
	return c.name
}

// Matches reports whether the given type satisfies the capability, either
// directly or through its pointer type.
func (c Capability) Matches(t reflect.Type) bool {
	if c.iface == nil {
		return true
	}
	if t == nil {
		return false
	}
	if t.Implements(c.iface) {
		return true
	}
	return t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(c.iface)
}

// Satisfied reports whether an instance satisfies the capability.
func (c Capability) Satisfied(v any) bool {
	if c.iface == nil {
		return true
	}
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Implements(c.iface)
}

var (
	// CapabilityAny matches every definition and instance.
	CapabilityAny = Capability{name: "any"}

	// CapabilityRegistryExtension matches extensions that may mutate the
	// definition registry.
	CapabilityRegistryExtension = Capability{
		name:  "registry-extension",
		iface: reflect.TypeOf((*RegistryExtension)(nil)).Elem(),
	}

	// CapabilityFactoryExtension matches extensions that observe the
	// finalized factory.
	CapabilityFactoryExtension = Capability{
		name:  "factory-extension",
		iface: reflect.TypeOf((*FactoryExtension)(nil)).Elem(),
	}

	// CapabilityInterceptor matches component lifecycle interceptors.
	CapabilityInterceptor = Capability{
		name:  "interceptor",
		iface: reflect.TypeOf((*Interceptor)(nil)).Elem(),
	}

	// CapabilityMergeInterceptor matches interceptors that also react to
	// merged definitions.
	CapabilityMergeInterceptor = Capability{
		name:  "merge-interceptor",
		iface: reflect.TypeOf((*MergeInterceptor)(nil)).Elem(),
	}

	// CapabilityPrioritized matches priority-tier candidates.
	CapabilityPrioritized = Capability{
		name:  "prioritized",
		iface: reflect.TypeOf((*Prioritized)(nil)).Elem(),
	}

	// CapabilityOrdered matches ordered-tier candidates.
	CapabilityOrdered = Capability{
		name:  "ordered",
		iface: reflect.TypeOf((*Ordered)(nil)).Elem(),
	}
)
