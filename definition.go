package anvil

import (
	"maps"
	"reflect"
	"slices"
)

// Role distinguishes user-visible components from infrastructure-internal
// ones. Infrastructure components are exempt from late-instantiation
// reporting.
type Role int

const (
	// RoleApplication marks a user-visible component.
	RoleApplication Role = iota
	// RoleInfrastructure marks a purely internal component.
	RoleInfrastructure
)

// Constructor builds a component instance against the factory. Constructors
// may resolve further components through the factory.
type Constructor func(factory ComponentFactory) (any, error)

// PropertyValue is a named property of a definition. The value may itself be
// an inner *ComponentDefinition.
type PropertyValue struct {
	Name  string
	Value any
}

// ComponentDefinition is the declarative spec of a component: how to build
// it, what it depends on, and which configuration-time contracts it declares.
// Definitions are data; nothing is instantiated until the factory is asked to.
type ComponentDefinition struct {
	// TypeName is a symbolic type reference resolved lazily against the
	// factory's registered types. Resolution failure is tolerated: the
	// definition proceeds with an unknown type.
	TypeName string

	// Type is the resolved concrete type, nil until known.
	Type reflect.Type

	// Constructor builds the instance. When nil, the factory zero-constructs
	// the resolved type.
	Constructor Constructor

	// Parent names a definition whose settings this one inherits.
	Parent string

	Role Role

	// Properties hold named values; values may be inner definitions.
	Properties []PropertyValue

	// ConstructorArgs hold indexed argument values; values may be inner
	// definitions.
	ConstructorArgs map[int]any

	// DependsOn lists definitions instantiated before this one.
	DependsOn []string

	// Capabilities are explicit contract tags consulted when the type is
	// unknown, so registry queries never force instantiation.
	Capabilities []Capability
}

// NewDefinition creates a definition built by the given constructor.
func NewDefinition(ctor Constructor) *ComponentDefinition {
	return &ComponentDefinition{Constructor: ctor}
}

// NewTypedDefinition creates a definition for a concrete type. The
// constructor may be nil, in which case the factory zero-constructs the type.
func NewTypedDefinition(t reflect.Type, ctor Constructor) *ComponentDefinition {
	return &ComponentDefinition{Type: t, Constructor: ctor}
}

// AddProperty appends a named property value.
func (d *ComponentDefinition) AddProperty(name string, value any) *ComponentDefinition {
	d.Properties = append(d.Properties, PropertyValue{Name: name, Value: value})
	return d
}

// SetConstructorArg sets an indexed constructor-argument value.
func (d *ComponentDefinition) SetConstructorArg(index int, value any) *ComponentDefinition {
	if d.ConstructorArgs == nil {
		d.ConstructorArgs = make(map[int]any)
	}
	d.ConstructorArgs[index] = value
	return d
}

// SetRole sets the definition role.
func (d *ComponentDefinition) SetRole(role Role) *ComponentDefinition {
	d.Role = role
	return d
}

// SetParent sets the parent definition name.
func (d *ComponentDefinition) SetParent(parent string) *ComponentDefinition {
	d.Parent = parent
	return d
}

// SetDependsOn declares definitions instantiated before this one.
func (d *ComponentDefinition) SetDependsOn(names ...string) *ComponentDefinition {
	d.DependsOn = names
	return d
}

// Tag declares explicit capabilities for pre-instantiation matching.
func (d *ComponentDefinition) Tag(caps ...Capability) *ComponentDefinition {
	d.Capabilities = append(d.Capabilities, caps...)
	return d
}

// Clone returns a copy with its own property, argument, depends-on and
// capability collections. Inner definition values are shared, not copied.
func (d *ComponentDefinition) Clone() *ComponentDefinition {
	c := *d
	c.Properties = slices.Clone(d.Properties)
	c.DependsOn = slices.Clone(d.DependsOn)
	c.Capabilities = slices.Clone(d.Capabilities)
	if d.ConstructorArgs != nil {
		c.ConstructorArgs = maps.Clone(d.ConstructorArgs)
	}
	return &c
}

// taggedWith reports whether the definition explicitly declares a capability.
func (d *ComponentDefinition) taggedWith(c Capability) bool {
	return slices.Contains(d.Capabilities, c)
}
