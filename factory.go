package anvil

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/xraph/vessel"
)

// ComponentFactory owns component instantiation and the ordered interceptor
// chain. A factory that also implements DefinitionRegistry participates in
// the full registry-mutation phase of the pipeline.
type ComponentFactory interface {
	// Instantiate builds (or returns the cached) component for a named
	// definition. The capability is asserted against the built instance;
	// CapabilityAny skips the assertion. Instantiation may recurse into
	// depends-on definitions and constructor lookups.
	Instantiate(name string, c Capability) (any, error)

	// MergedDefinition returns the definition with inheritance applied and
	// the type reference resolved when possible. Results are cached until
	// InvalidateMetadata.
	MergedDefinition(name string) (*ComponentDefinition, error)

	// AppendInterceptor appends one interceptor to the chain. An interceptor
	// already present is moved to the end rather than duplicated.
	AppendInterceptor(ic Interceptor)

	// AppendInterceptors appends interceptors in bulk, with the same
	// move-to-end semantics.
	AppendInterceptors(ics []Interceptor)

	// Interceptors returns a snapshot of the chain. The snapshot is never
	// mutated in place, so it is safe to iterate while appends happen.
	Interceptors() []Interceptor

	// InterceptorCount returns the current chain length.
	InterceptorCount() int

	// InvalidateMetadata discards cached merged definitions. Must be called
	// after factory extensions ran, since they may have rewritten values the
	// cached metadata captured.
	InvalidateMetadata()

	// ResolveType resolves a symbolic type reference.
	ResolveType(typeName string) (reflect.Type, bool)

	// OrderingComparator returns the comparator replacing DefaultComparator
	// for extension and interceptor sorting, or nil to keep the default.
	OrderingComparator() Comparator
}

// StandardFactory is the default in-memory ComponentFactory. It also acts as
// the DefinitionRegistry, caches singleton instances, and applies the
// interceptor chain around every component it builds.
type StandardFactory struct {
	mu          sync.RWMutex
	definitions map[string]*ComponentDefinition
	names       []string
	merged      map[string]*ComponentDefinition
	instances   map[string]any
	types       map[string]reflect.Type

	// Copy-on-write chain: readers load a snapshot without locking, writers
	// replace the whole slice under chainMu.
	chainMu sync.Mutex
	chain   atomic.Pointer[[]Interceptor]

	comparator Comparator
	logger     Logger
}

var (
	_ ComponentFactory   = (*StandardFactory)(nil)
	_ DefinitionRegistry = (*StandardFactory)(nil)
)

// FactoryOption configures a StandardFactory.
type FactoryOption func(*StandardFactory)

// WithFactoryLogger sets the factory logger.
func WithFactoryLogger(l Logger) FactoryOption {
	return func(f *StandardFactory) {
		f.logger = l
	}
}

// WithComparator replaces the default ordering comparator used when sorting
// extensions and interceptors discovered through this factory.
func WithComparator(c Comparator) FactoryOption {
	return func(f *StandardFactory) {
		f.comparator = c
	}
}

// NewStandardFactory creates an empty factory.
func NewStandardFactory(opts ...FactoryOption) *StandardFactory {
	f := &StandardFactory{
		definitions: make(map[string]*ComponentDefinition),
		merged:      make(map[string]*ComponentDefinition),
		instances:   make(map[string]any),
		types:       make(map[string]reflect.Type),
		logger:      NewNoopLogger(),
	}

	for _, opt := range opts {
		opt(f)
	}

	empty := make([]Interceptor, 0)
	f.chain.Store(&empty)

	return f
}

// RegisterType maps a symbolic type name to a concrete type, making
// definitions carrying that TypeName resolvable.
func (f *StandardFactory) RegisterType(typeName string, t reflect.Type) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.types[typeName] = t
}

// ResolveType implements ComponentFactory.
func (f *StandardFactory) ResolveType(typeName string) (reflect.Type, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	t, ok := f.types[typeName]

	return t, ok
}

// OrderingComparator implements ComponentFactory.
func (f *StandardFactory) OrderingComparator() Comparator {
	return f.comparator
}

// Singleton returns the cached instance for a name, if one exists.
func (f *StandardFactory) Singleton(name string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	inst, ok := f.instances[name]

	return inst, ok
}

// Instantiate implements ComponentFactory.
func (f *StandardFactory) Instantiate(name string, c Capability) (any, error) {
	if inst, ok := f.Singleton(name); ok {
		if !c.Satisfied(inst) {
			return nil, ErrTypeMismatch(name, c)
		}

		return inst, nil
	}

	def, err := f.MergedDefinition(name)
	if err != nil {
		return nil, err
	}

	if len(def.DependsOn) > 0 {
		if err := f.validateDependsOn(); err != nil {
			return nil, err
		}

		for _, dep := range def.DependsOn {
			if _, err := f.Instantiate(dep, CapabilityAny); err != nil {
				return nil, err
			}
		}
	}

	component, err := f.construct(name, def)
	if err != nil {
		return nil, err
	}

	component, err = f.applyInterceptors(component, name)
	if err != nil {
		return nil, err
	}

	if !c.Satisfied(component) {
		return nil, ErrTypeMismatch(name, c)
	}

	// A reentrant constructor may have cached the instance already; the
	// first stored one wins.
	f.mu.Lock()
	if existing, ok := f.instances[name]; ok {
		component = existing
	} else {
		f.instances[name] = component
	}
	f.mu.Unlock()

	return component, nil
}

// construct builds the raw instance from a merged definition.
func (f *StandardFactory) construct(name string, def *ComponentDefinition) (any, error) {
	if def.Constructor != nil {
		component, err := def.Constructor(f)
		if err != nil {
			return nil, ErrInvalidDefinition(name, err)
		}

		return component, nil
	}

	t := def.Type
	if t == nil {
		return nil, ErrInvalidDefinition(name, errNoConstructor)
	}

	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface(), nil
	}

	return reflect.New(t).Interface(), nil
}

// applyInterceptors runs the chain's before/after-initialization hooks over a
// snapshot of the chain.
func (f *StandardFactory) applyInterceptors(component any, name string) (any, error) {
	chain := f.Interceptors()

	for _, ic := range chain {
		replaced, err := ic.BeforeInit(component, name)
		if err != nil {
			return nil, ErrInterceptorFailed(name, err)
		}

		if replaced != nil {
			component = replaced
		}
	}

	for _, ic := range chain {
		replaced, err := ic.AfterInit(component, name)
		if err != nil {
			return nil, ErrInterceptorFailed(name, err)
		}

		if replaced != nil {
			component = replaced
		}
	}

	return component, nil
}

// validateDependsOn rejects circular depends-on declarations before any
// dependency is instantiated.
func (f *StandardFactory) validateDependsOn() error {
	f.mu.RLock()

	graph := vessel.NewDependencyGraph()
	var declared []string

	for _, name := range f.names {
		def := f.definitions[name]
		graph.AddNode(name, def.DependsOn)

		if len(def.DependsOn) > 0 {
			declared = append(declared, name)
		}
	}

	f.mu.RUnlock()

	if _, err := graph.TopologicalSort(); err != nil {
		return ErrCircularDependency(declared, err)
	}

	return nil
}

// MergedDefinition implements ComponentFactory.
func (f *StandardFactory) MergedDefinition(name string) (*ComponentDefinition, error) {
	f.mu.RLock()
	if m, ok := f.merged[name]; ok {
		f.mu.RUnlock()
		return m, nil
	}
	f.mu.RUnlock()

	lineage, err := f.definitionLineage(name)
	if err != nil {
		return nil, err
	}

	merged := lineage[0].Clone()
	for _, descendant := range lineage[1:] {
		overlayDefinition(merged, descendant)
	}

	f.mu.Lock()
	if merged.Type == nil && merged.TypeName != "" {
		if t, ok := f.types[merged.TypeName]; ok {
			merged.Type = t
		}
	}
	f.merged[name] = merged
	f.mu.Unlock()

	return merged, nil
}

// definitionLineage returns the parent chain root-first, guarding against
// parent cycles.
func (f *StandardFactory) definitionLineage(name string) ([]*ComponentDefinition, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var lineage []*ComponentDefinition
	path := []string{}
	seen := map[string]bool{}

	for current := name; current != ""; {
		if seen[current] {
			return nil, ErrCyclicDefinition(append(path, current))
		}
		seen[current] = true
		path = append(path, current)

		def, exists := f.definitions[current]
		if !exists {
			return nil, ErrDefinitionNotFound(current)
		}

		lineage = append([]*ComponentDefinition{def}, lineage...)
		current = def.Parent
	}

	return lineage, nil
}

// overlayDefinition applies a descendant's explicit settings over the merged
// ancestor state.
func overlayDefinition(merged, child *ComponentDefinition) {
	if child.TypeName != "" {
		merged.TypeName = child.TypeName
		merged.Type = nil
	}

	if child.Type != nil {
		merged.Type = child.Type
	}

	if child.Constructor != nil {
		merged.Constructor = child.Constructor
	}

	merged.Role = child.Role

	for _, pv := range child.Properties {
		replaced := false

		for i, existing := range merged.Properties {
			if existing.Name == pv.Name {
				merged.Properties[i] = pv
				replaced = true

				break
			}
		}

		if !replaced {
			merged.Properties = append(merged.Properties, pv)
		}
	}

	for index, value := range child.ConstructorArgs {
		if merged.ConstructorArgs == nil {
			merged.ConstructorArgs = make(map[int]any)
		}
		merged.ConstructorArgs[index] = value
	}

	if len(child.DependsOn) > 0 {
		merged.DependsOn = child.DependsOn
	}

	for _, c := range child.Capabilities {
		if !merged.taggedWith(c) {
			merged.Capabilities = append(merged.Capabilities, c)
		}
	}
}

// InvalidateMetadata implements ComponentFactory.
func (f *StandardFactory) InvalidateMetadata() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.merged = make(map[string]*ComponentDefinition)
}

// AppendInterceptor implements ComponentFactory.
func (f *StandardFactory) AppendInterceptor(ic Interceptor) {
	f.AppendInterceptors([]Interceptor{ic})
}

// AppendInterceptors implements ComponentFactory. The chain is replaced
// wholesale so concurrent iteration over a snapshot never observes a torn
// append.
func (f *StandardFactory) AppendInterceptors(ics []Interceptor) {
	if len(ics) == 0 {
		return
	}

	f.chainMu.Lock()
	defer f.chainMu.Unlock()

	current := *f.chain.Load()
	next := make([]Interceptor, 0, len(current)+len(ics))

	for _, existing := range current {
		if !containsInterceptor(ics, existing) {
			next = append(next, existing)
		}
	}

	next = append(next, ics...)
	f.chain.Store(&next)
}

// Interceptors implements ComponentFactory.
func (f *StandardFactory) Interceptors() []Interceptor {
	return *f.chain.Load()
}

// InterceptorCount implements ComponentFactory.
func (f *StandardFactory) InterceptorCount() int {
	return len(*f.chain.Load())
}

func containsInterceptor(ics []Interceptor, target Interceptor) bool {
	for _, ic := range ics {
		if ic == target {
			return true
		}
	}

	return false
}
