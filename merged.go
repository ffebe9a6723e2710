package anvil

import (
	"fmt"
	"reflect"
	"slices"
)

// ResolveMergedDefinitions resolves the merged form of every named definition
// in the registry and invokes each discovered MergeInterceptor on it, then
// recursively on every inner definition reachable through property values and
// indexed constructor-argument values. Inner definitions are positional:
// a definition reachable twice is processed once per occurrence.
//
// A cycle in an inner-definition graph is rejected with a CYCLIC_DEFINITION
// error rather than recursing without bound. A definition whose type
// reference cannot be resolved proceeds with an unknown type.
//
// This is a standalone maintenance pass: afterwards the merge interceptors
// themselves are registered into the factory chain in tier order.
func (p *Pipeline) ResolveMergedDefinitions() error {
	if p.factory == nil {
		return errNilFactory
	}

	registry, ok := p.registry()
	if !ok {
		return ErrRegistryRequired("resolve merged definitions")
	}

	interceptors, err := p.loadMergeInterceptors(registry)
	if err != nil {
		return err
	}

	for _, name := range registry.DefinitionNames() {
		def, err := p.factory.MergedDefinition(name)
		if err != nil {
			return err
		}

		walk := &mergedWalk{
			pipeline:     p,
			interceptors: interceptors,
			visiting:     make(map[*ComponentDefinition]bool),
		}

		if err := walk.resolve(name, def, []string{name}); err != nil {
			return err
		}
	}

	ics := make([]Interceptor, len(interceptors))
	for i, mi := range interceptors {
		ics[i] = mi
	}

	p.appendToChain(ics)

	return nil
}

// loadMergeInterceptors instantiates every MergeInterceptor definition,
// sorted by tier.
func (p *Pipeline) loadMergeInterceptors(registry DefinitionRegistry) ([]MergeInterceptor, error) {
	var interceptors []MergeInterceptor

	for _, name := range registry.NamesMatching(CapabilityMergeInterceptor) {
		inst, err := p.factory.Instantiate(name, CapabilityMergeInterceptor)
		if err != nil {
			return nil, err
		}

		interceptors = append(interceptors, inst.(MergeInterceptor))
	}

	sortCandidates(interceptors, p.factory)

	return interceptors, nil
}

// mergedWalk tracks one top-level resolution walk. The visiting set holds the
// definitions on the current path, keyed by identity.
type mergedWalk struct {
	pipeline     *Pipeline
	interceptors []MergeInterceptor
	visiting     map[*ComponentDefinition]bool
}

func (w *mergedWalk) resolve(name string, def *ComponentDefinition, path []string) error {
	if w.visiting[def] {
		return ErrCyclicDefinition(path)
	}

	w.visiting[def] = true
	defer delete(w.visiting, def)

	componentType := w.resolveType(def, name)

	for _, ic := range w.interceptors {
		ic.ProcessMergedDefinition(def, componentType, name)
	}

	w.pipeline.metrics.mergedDefinition()

	inner := 0

	for _, pv := range def.Properties {
		innerDef, ok := pv.Value.(*ComponentDefinition)
		if !ok {
			continue
		}

		innerName := fmt.Sprintf("%s#%d", name, inner)
		inner++

		if err := w.resolve(innerName, innerDef, append(path, innerName)); err != nil {
			return err
		}
	}

	for _, index := range sortedArgIndexes(def.ConstructorArgs) {
		innerDef, ok := def.ConstructorArgs[index].(*ComponentDefinition)
		if !ok {
			continue
		}

		innerName := fmt.Sprintf("%s#%d", name, inner)
		inner++

		if err := w.resolve(innerName, innerDef, append(path, innerName)); err != nil {
			return err
		}
	}

	return nil
}

// resolveType resolves a definition's type reference. Failure is tolerated:
// some definitions are registered with deliberately unresolved types.
func (w *mergedWalk) resolveType(def *ComponentDefinition, name string) reflect.Type {
	if def.Type != nil {
		return def.Type
	}

	if def.TypeName == "" {
		return nil
	}

	t, ok := w.pipeline.factory.ResolveType(def.TypeName)
	if !ok {
		w.pipeline.logger.Debug("definition type unresolved",
			String("definition", name),
			String("type_name", def.TypeName),
		)

		return nil
	}

	def.Type = t

	return t
}

func sortedArgIndexes(args map[int]any) []int {
	if len(args) == 0 {
		return nil
	}

	indexes := make([]int, 0, len(args))
	for index := range args {
		indexes = append(indexes, index)
	}

	slices.Sort(indexes)

	return indexes
}
