package anvil

import "slices"

// DefinitionRegistry stores declarative component specs keyed by unique name.
// Queries are live: NamesMatching re-evaluates against the current contents,
// so mutations made by an extension are visible to the next scan.
type DefinitionRegistry interface {
	// RegisterDefinition adds a definition under a unique name.
	RegisterDefinition(name string, def *ComponentDefinition) error

	// RemoveDefinition removes a definition by name.
	RemoveDefinition(name string) error

	// Definition returns the raw (unmerged) definition.
	Definition(name string) (*ComponentDefinition, error)

	// ContainsDefinition reports whether a definition is registered.
	ContainsDefinition(name string) bool

	// DefinitionNames returns all names in registration order.
	DefinitionNames() []string

	// NamesMatching returns, in registration order, the names of definitions
	// satisfying the capability. The query never forces instantiation.
	NamesMatching(c Capability) []string

	// IsTypeMatch reports whether a named definition satisfies the
	// capability, without forcing instantiation.
	IsTypeMatch(name string, c Capability) bool
}

// RegisterDefinition implements DefinitionRegistry.
func (f *StandardFactory) RegisterDefinition(name string, def *ComponentDefinition) error {
	if name == "" || def == nil {
		return ErrInvalidDefinition(name, errNilDefinition)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.definitions[name]; exists {
		return ErrDefinitionExists(name)
	}

	f.definitions[name] = def
	f.names = append(f.names, name)

	return nil
}

// RemoveDefinition implements DefinitionRegistry.
func (f *StandardFactory) RemoveDefinition(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.definitions[name]; !exists {
		return ErrDefinitionNotFound(name)
	}

	delete(f.definitions, name)
	delete(f.merged, name)
	f.names = slices.DeleteFunc(f.names, func(n string) bool { return n == name })

	return nil
}

// Definition implements DefinitionRegistry.
func (f *StandardFactory) Definition(name string) (*ComponentDefinition, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	def, exists := f.definitions[name]
	if !exists {
		return nil, ErrDefinitionNotFound(name)
	}

	return def, nil
}

// ContainsDefinition implements DefinitionRegistry.
func (f *StandardFactory) ContainsDefinition(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, exists := f.definitions[name]

	return exists
}

// DefinitionNames implements DefinitionRegistry.
func (f *StandardFactory) DefinitionNames() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return slices.Clone(f.names)
}

// NamesMatching implements DefinitionRegistry.
func (f *StandardFactory) NamesMatching(c Capability) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var matched []string

	for _, name := range f.names {
		if f.definitionMatches(f.definitions[name], c) {
			matched = append(matched, name)
		}
	}

	return matched
}

// IsTypeMatch implements DefinitionRegistry.
func (f *StandardFactory) IsTypeMatch(name string, c Capability) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	def, exists := f.definitions[name]
	if !exists {
		return false
	}

	return f.definitionMatches(def, c)
}

// definitionMatches checks declared tags first, then the definition's type,
// resolving the symbolic type name when necessary. Callers hold f.mu.
func (f *StandardFactory) definitionMatches(def *ComponentDefinition, c Capability) bool {
	if def.taggedWith(c) {
		return true
	}

	t := def.Type
	if t == nil && def.TypeName != "" {
		t = f.types[def.TypeName]
	}

	return t != nil && c.Matches(t)
}
