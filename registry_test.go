package anvil

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionRegistry(t *testing.T) {
	t.Run("RegisterAndLookup", func(t *testing.T) {
		f := NewStandardFactory()
		def := NewDefinition(func(ComponentFactory) (any, error) { return "v", nil })

		require.NoError(t, f.RegisterDefinition("svc", def))
		assert.True(t, f.ContainsDefinition("svc"))

		got, err := f.Definition("svc")
		require.NoError(t, err)
		assert.Same(t, def, got)
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		f := NewStandardFactory()
		require.NoError(t, f.RegisterDefinition("svc", NewDefinition(nil)))

		err := f.RegisterDefinition("svc", NewDefinition(nil))
		require.Error(t, err)

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, CodeDefinitionExists, perr.Code)
	})

	t.Run("NilDefinitionRejected", func(t *testing.T) {
		f := NewStandardFactory()
		assert.Error(t, f.RegisterDefinition("svc", nil))
		assert.Error(t, f.RegisterDefinition("", NewDefinition(nil)))
	})

	t.Run("Remove", func(t *testing.T) {
		f := NewStandardFactory()
		require.NoError(t, f.RegisterDefinition("svc", NewDefinition(nil)))
		require.NoError(t, f.RemoveDefinition("svc"))

		assert.False(t, f.ContainsDefinition("svc"))
		assert.Error(t, f.RemoveDefinition("svc"))

		_, err := f.Definition("svc")
		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, CodeDefinitionNotFound, perr.Code)
	})

	t.Run("NamesInRegistrationOrder", func(t *testing.T) {
		f := NewStandardFactory()
		for _, name := range []string{"c", "a", "b"} {
			require.NoError(t, f.RegisterDefinition(name, NewDefinition(nil)))
		}

		assert.Equal(t, []string{"c", "a", "b"}, f.DefinitionNames())
	})

	t.Run("NamesMatchingIsLive", func(t *testing.T) {
		f := NewStandardFactory()
		var calls []string

		require.NoError(t, f.RegisterDefinition("first",
			instanceDefinition(newRegistryExt("first", &calls))))

		assert.Equal(t, []string{"first"}, f.NamesMatching(CapabilityRegistryExtension))

		// A registration after the first query must show up in the next one.
		require.NoError(t, f.RegisterDefinition("second",
			instanceDefinition(newRegistryExt("second", &calls))))

		assert.Equal(t, []string{"first", "second"}, f.NamesMatching(CapabilityRegistryExtension))
	})

	t.Run("MatchByExplicitTag", func(t *testing.T) {
		// A constructor-only definition has no type to inspect; explicit
		// capability tags make it discoverable without instantiation.
		f := NewStandardFactory()
		def := NewDefinition(func(ComponentFactory) (any, error) {
			return &testRegistryExtension{}, nil
		}).Tag(CapabilityRegistryExtension, CapabilityPrioritized)

		require.NoError(t, f.RegisterDefinition("tagged", def))

		assert.True(t, f.IsTypeMatch("tagged", CapabilityRegistryExtension))
		assert.True(t, f.IsTypeMatch("tagged", CapabilityPrioritized))
		assert.False(t, f.IsTypeMatch("tagged", CapabilityInterceptor))
	})

	t.Run("MatchByResolvedTypeName", func(t *testing.T) {
		f := NewStandardFactory()
		f.RegisterType("ext", reflect.TypeOf(&testRegistryExtension{}))

		def := NewDefinition(func(ComponentFactory) (any, error) {
			return &testRegistryExtension{}, nil
		})
		def.TypeName = "ext"

		require.NoError(t, f.RegisterDefinition("byname", def))

		assert.True(t, f.IsTypeMatch("byname", CapabilityRegistryExtension))
	})

	t.Run("MissingNameNeverMatches", func(t *testing.T) {
		f := NewStandardFactory()
		assert.False(t, f.IsTypeMatch("ghost", CapabilityRegistryExtension))
	})
}
