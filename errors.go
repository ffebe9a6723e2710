package anvil

import (
	"strings"

	"github.com/xraph/go-utils/errs"
)

// Error code constants for structured errors.
const (
	CodeExtensionFailed    = "EXTENSION_FAILED"
	CodeDefinitionNotFound = "DEFINITION_NOT_FOUND"
	CodeDefinitionExists   = "DEFINITION_ALREADY_EXISTS"
	CodeInvalidDefinition  = "INVALID_DEFINITION"
	CodeCyclicDefinition   = "CYCLIC_DEFINITION"
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"
	CodeInterceptorFailed  = "INTERCEPTOR_FAILED"
	CodeTypeMismatch       = "TYPE_MISMATCH"
	CodeRegistryRequired   = "REGISTRY_REQUIRED"
)

// PipelineError represents a structured error with code and cause.
type PipelineError = errs.Error

// Sentinel causes for invalid definitions.
var (
	errNilDefinition = errs.New("definition must not be nil")
	errNoConstructor = errs.New("definition has neither constructor nor instantiable type")
	errNilFactory    = errs.New("component factory is required")
)

// ErrExtensionFailed wraps an error returned by an extension invocation.
// Extension failures are fatal: the remaining pipeline phases do not run and
// registry mutations already applied are not rolled back.
func ErrExtensionFailed(name string, cause error) *PipelineError {
	return errs.NewError(CodeExtensionFailed, "extension '"+name+"' failed", cause)
}

// ErrDefinitionNotFound creates a missing-definition error.
func ErrDefinitionNotFound(name string) *PipelineError {
	return errs.NewError(CodeDefinitionNotFound, "definition '"+name+"' not found", nil)
}

// ErrDefinitionExists creates a duplicate-definition error.
func ErrDefinitionExists(name string) *PipelineError {
	return errs.NewError(CodeDefinitionExists, "definition '"+name+"' already registered", nil)
}

// ErrInvalidDefinition creates an error for a definition that cannot be
// instantiated (no constructor and no instantiable type).
func ErrInvalidDefinition(name string, cause error) *PipelineError {
	return errs.NewError(CodeInvalidDefinition, "invalid definition '"+name+"'", cause)
}

// ErrCyclicDefinition reports a cycle in an inner-definition graph discovered
// during merged-definition resolution. The path lists definition names from
// the top-level definition to the repeated one.
func ErrCyclicDefinition(path []string) *PipelineError {
	return errs.NewError(CodeCyclicDefinition, "cyclic inner definition: "+strings.Join(path, " -> "), nil)
}

// ErrCircularDependency reports circular depends-on declarations between
// definitions.
func ErrCircularDependency(names []string, cause error) *PipelineError {
	return errs.NewError(CodeCircularDependency, "circular depends-on declaration: "+strings.Join(names, ", "), cause)
}

// ErrInterceptorFailed wraps an error returned by an interceptor hook during
// component creation.
func ErrInterceptorFailed(componentName string, cause error) *PipelineError {
	return errs.NewError(CodeInterceptorFailed, "interceptor failed for component '"+componentName+"'", cause)
}

// ErrTypeMismatch reports an instantiated component that does not satisfy the
// capability it was requested under.
func ErrTypeMismatch(name string, capability Capability) *PipelineError {
	return errs.NewError(CodeTypeMismatch, "component '"+name+"' does not satisfy capability "+capability.String(), nil)
}

// ErrRegistryRequired reports a pipeline operation that needs a factory which
// also acts as a DefinitionRegistry.
func ErrRegistryRequired(operation string) *PipelineError {
	return errs.NewError(CodeRegistryRequired, "operation '"+operation+"' requires a definition registry", nil)
}
