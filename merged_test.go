package anvil

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mergeSeen struct {
	name string
	typ  reflect.Type
}

// mergeRecorder records every merged-definition callback it receives.
type mergeRecorder struct {
	recordingInterceptor
	seen []mergeSeen
}

func (i *mergeRecorder) ProcessMergedDefinition(_ *ComponentDefinition, t reflect.Type, name string) {
	i.seen = append(i.seen, mergeSeen{name: name, typ: t})
}

type orderedMergeRecorder struct {
	mergeRecorder
	rank int
}

func (i *orderedMergeRecorder) Order() int { return i.rank }

func seenNames(seen []mergeSeen) []string {
	names := make([]string, len(seen))
	for i, s := range seen {
		names[i] = s.name
	}
	return names
}

func TestResolveMergedDefinitions(t *testing.T) {
	t.Run("WalksInnerDefinitions", func(t *testing.T) {
		f := NewStandardFactory()
		var calls []string

		recorder := &mergeRecorder{recordingInterceptor: recordingInterceptor{name: "rec", calls: &calls}}
		require.NoError(t, f.RegisterDefinition("rec", instanceDefinition(recorder)))

		propInner := NewTypedDefinition(reflect.TypeOf(widget{}), nil)
		argInner := NewTypedDefinition(reflect.TypeOf(widget{}), nil)

		outer := NewDefinition(func(ComponentFactory) (any, error) { return &widget{}, nil })
		outer.AddProperty("child", propInner)
		outer.AddProperty("label", "plain value")
		outer.SetConstructorArg(0, argInner)

		require.NoError(t, f.RegisterDefinition("outer", outer))

		p := NewPipeline(f)
		require.NoError(t, p.ResolveMergedDefinitions())

		// Property inners first, then indexed constructor-argument inners,
		// one positional name each. Plain values are skipped.
		assert.Equal(t, []string{"rec", "outer", "outer#0", "outer#1"}, seenNames(recorder.seen))
	})

	t.Run("SharedInnerResolvedPerOccurrence", func(t *testing.T) {
		// Inner definitions are positional, not identity-deduplicated: the
		// same definition reachable twice is processed twice.
		f := NewStandardFactory()
		var calls []string

		recorder := &mergeRecorder{recordingInterceptor: recordingInterceptor{name: "rec", calls: &calls}}
		require.NoError(t, f.RegisterDefinition("rec", instanceDefinition(recorder)))

		shared := NewTypedDefinition(reflect.TypeOf(widget{}), nil)

		outer := NewDefinition(func(ComponentFactory) (any, error) { return &widget{}, nil })
		outer.AddProperty("first", shared)
		outer.AddProperty("second", shared)

		require.NoError(t, f.RegisterDefinition("outer", outer))

		p := NewPipeline(f)
		require.NoError(t, p.ResolveMergedDefinitions())

		assert.Equal(t, []string{"rec", "outer", "outer#0", "outer#1"}, seenNames(recorder.seen))
	})

	t.Run("CycleRejected", func(t *testing.T) {
		f := NewStandardFactory()
		var calls []string

		recorder := &mergeRecorder{recordingInterceptor: recordingInterceptor{name: "rec", calls: &calls}}
		require.NoError(t, f.RegisterDefinition("rec", instanceDefinition(recorder)))

		d1 := NewTypedDefinition(reflect.TypeOf(widget{}), nil)
		d2 := NewTypedDefinition(reflect.TypeOf(widget{}), nil)
		d1.AddProperty("next", d2)
		d2.AddProperty("back", d1)

		require.NoError(t, f.RegisterDefinition("top", d1))

		p := NewPipeline(f)
		err := p.ResolveMergedDefinitions()

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, CodeCyclicDefinition, perr.Code)
	})

	t.Run("UnresolvedTypeTolerated", func(t *testing.T) {
		f := NewStandardFactory()
		var calls []string

		recorder := &mergeRecorder{recordingInterceptor: recordingInterceptor{name: "rec", calls: &calls}}
		require.NoError(t, f.RegisterDefinition("rec", instanceDefinition(recorder)))

		def := NewDefinition(func(ComponentFactory) (any, error) { return &widget{}, nil })
		def.TypeName = "never-registered"
		require.NoError(t, f.RegisterDefinition("mystery", def))

		p := NewPipeline(f)
		require.NoError(t, p.ResolveMergedDefinitions())

		require.Len(t, recorder.seen, 2)
		assert.Equal(t, "mystery", recorder.seen[1].name)
		assert.Nil(t, recorder.seen[1].typ)
	})

	t.Run("ResolvedTypePassedAlong", func(t *testing.T) {
		f := NewStandardFactory()
		var calls []string
		f.RegisterType("widget", reflect.TypeOf(widget{}))

		recorder := &mergeRecorder{recordingInterceptor: recordingInterceptor{name: "rec", calls: &calls}}
		require.NoError(t, f.RegisterDefinition("rec", instanceDefinition(recorder)))

		def := NewDefinition(func(ComponentFactory) (any, error) { return &widget{}, nil })
		def.TypeName = "widget"
		require.NoError(t, f.RegisterDefinition("w", def))

		p := NewPipeline(f)
		require.NoError(t, p.ResolveMergedDefinitions())

		require.Len(t, recorder.seen, 2)
		assert.Equal(t, reflect.TypeOf(widget{}), recorder.seen[1].typ)
	})

	t.Run("MergeInterceptorsRegisteredTiered", func(t *testing.T) {
		f := NewStandardFactory()
		var calls []string

		plainMerge := &mergeRecorder{recordingInterceptor: recordingInterceptor{name: "plain", calls: &calls}}
		rankedMerge := &orderedMergeRecorder{
			mergeRecorder: mergeRecorder{recordingInterceptor: recordingInterceptor{name: "ranked", calls: &calls}},
			rank:          1,
		}

		// Discovery order puts the unordered one first; tier sorting must
		// still rank the ordered one ahead in the chain.
		require.NoError(t, f.RegisterDefinition("plain", instanceDefinition(plainMerge)))
		require.NoError(t, f.RegisterDefinition("ranked", instanceDefinition(rankedMerge)))

		p := NewPipeline(f)
		require.NoError(t, p.ResolveMergedDefinitions())

		chain := f.Interceptors()
		require.Len(t, chain, 2)
		assert.Same(t, rankedMerge, chain[0])
		assert.Same(t, plainMerge, chain[1])
	})

	t.Run("RequiresRegistry", func(t *testing.T) {
		p := NewPipeline(factoryOnly{NewStandardFactory()})

		err := p.ResolveMergedDefinitions()

		var perr *PipelineError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, CodeRegistryRequired, perr.Code)
	})
}
