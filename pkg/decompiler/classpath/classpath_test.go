package classpath

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testClasses() []Class {
	return []Class{
		{Name: "java/lang/Object", Methods: []MethodInfo{
			{Name: "hashCode", Descriptor: "()I", Public: true},
			{Name: "clone", Descriptor: "()Ljava/lang/Object;"},
		}},
		{Name: "app/Runnable", Methods: []MethodInfo{{Name: "run", Descriptor: "()V", Public: true}}},
		{Name: "app/Named", Interfaces: []string{"app/Runnable"}, Methods: []MethodInfo{
			{Name: "name", Descriptor: "()Ljava/lang/String;", Public: true},
		}},
		{Name: "app/Base", Super: "java/lang/Object", Interfaces: []string{"app/Named"}, Methods: []MethodInfo{
			{Name: "sum", Descriptor: "(II)I", Public: true, Static: true},
		}},
		{Name: "app/Child", Super: "app/Base", Methods: []MethodInfo{
			{Name: "sum", Descriptor: "(JJ)J", Public: true},
		}},
		{Name: "cyc/A", Super: "cyc/B"},
		{Name: "cyc/B", Super: "cyc/A"},
		{Name: "broken/C", Super: "missing/D"},
	}
}

func TestParseDescriptor(t *testing.T) {
	for _, test := range []struct {
		desc   string
		params []string
		ret    string
	}{
		{"()V", nil, "V"},
		{"(I[Ljava/lang/String;J)Z", []string{"I", "[Ljava/lang/String;", "J"}, "Z"},
		{"([[D)[I", []string{"[[D"}, "[I"},
		{"()Ljava/lang/Object;", nil, "Ljava/lang/Object;"},
	} {
		t.Run(test.desc, func(t *testing.T) {
			d, err := ParseDescriptor(test.desc)
			require.NoError(t, err)
			assert.Equal(t, test.params, d.Params)
			assert.Equal(t, test.ret, d.Return)
		})
	}
	for _, bad := range []string{"", "V", "()", "(I", "(Q)V", "(L;)V", "(Ljava/lang/String)V", "()VV", "()[", "(V)V"} {
		t.Run("bad "+bad, func(t *testing.T) {
			_, err := ParseDescriptor(bad)
			assert.Error(t, err)
		})
	}
}

func TestFindMethod(t *testing.T) {
	r := NewResolver(NewMapProvider(testClasses()...))
	for _, test := range []struct {
		class, name, desc string
		owner             string
	}{
		{"app/Child", "sum", "(JJ)J", "app/Child"},
		{"app/Child", "sum", "(II)I", "app/Base"},
		{"app/Child", "hashCode", "()I", "java/lang/Object"},
		{"app/Child", "name", "()Ljava/lang/String;", "app/Named"},
		{"app/Child", "run", "()V", "app/Runnable"},
		{"app/Named", "run", "()V", "app/Runnable"},
	} {
		t.Run(test.class+"."+test.name+test.desc, func(t *testing.T) {
			ref, ok := r.FindMethod(test.class, test.name, test.desc)
			require.True(t, ok)
			assert.Equal(t, test.owner, ref.Owner)
			assert.Equal(t, test.name, ref.Name)
			assert.Equal(t, test.desc, ref.Descriptor)
		})
	}
	ref, ok := r.FindMethod("app/Child", "sum", "(II)I")
	require.True(t, ok)
	assert.True(t, ref.Static)
}

func TestFindMethodMisses(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewResolver(NewMapProvider(testClasses()...), WithLogger(zap.New(core)))
	for _, test := range []struct {
		name              string
		class, method, ds string
		logged            bool
	}{
		{"non public", "app/Child", "clone", "()Ljava/lang/Object;", false},
		{"wrong descriptor", "app/Child", "sum", "(IJ)I", false},
		{"malformed descriptor", "app/Child", "sum", "(II", true},
		{"missing class", "app/Nope", "run", "()V", true},
		{"cyclic hierarchy", "cyc/A", "run", "()V", true},
		{"missing superclass", "broken/C", "run", "()V", true},
	} {
		t.Run(test.name, func(t *testing.T) {
			before := logs.Len()
			ref, ok := r.FindMethod(test.class, test.method, test.ds)
			assert.False(t, ok)
			assert.Nil(t, ref)
			assert.Equal(t, test.logged, logs.Len() > before)
		})
	}
}

type countingProvider struct {
	Provider
	mu    sync.Mutex
	calls int
}

func (p *countingProvider) Class(name string) (*Class, bool) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.Provider.Class(name)
}

func TestFindMethodCachesHitsAndMisses(t *testing.T) {
	p := &countingProvider{Provider: NewMapProvider(testClasses()...)}
	r := NewResolver(p, WithCacheSize(2))

	_, ok := r.FindMethod("app/Child", "run", "()V")
	require.True(t, ok)
	calls := p.calls
	_, ok = r.FindMethod("app/Child", "run", "()V")
	require.True(t, ok)
	assert.Equal(t, calls, p.calls)

	_, ok = r.FindMethod("app/Nope", "x", "()V")
	require.False(t, ok)
	calls = p.calls
	_, ok = r.FindMethod("app/Nope", "x", "()V")
	require.False(t, ok)
	assert.Equal(t, calls, p.calls)
	assert.Equal(t, 2, r.CacheLen())

	// The oldest entry is evicted first.
	_, _ = r.FindMethod("app/Base", "sum", "(II)I")
	assert.Equal(t, 2, r.CacheLen())
	calls = p.calls
	_, ok = r.FindMethod("app/Child", "run", "()V")
	require.True(t, ok)
	assert.Greater(t, p.calls, calls)
}

func TestFindMethodDistinctSignatures(t *testing.T) {
	r := NewResolver(NewMapProvider(
		Class{Name: "app/A", Methods: []MethodInfo{{Name: "bc", Descriptor: "()V", Public: true}}},
		Class{Name: "app/Ab", Methods: []MethodInfo{{Name: "x", Descriptor: "()V", Public: true}}},
	))
	ref, ok := r.FindMethod("app/A", "bc", "()V")
	require.True(t, ok)
	assert.Equal(t, "app/A", ref.Owner)

	ref, ok = r.FindMethod("app/Ab", "c", "()V")
	assert.False(t, ok)
	assert.Nil(t, ref)
	assert.Equal(t, 2, r.CacheLen())
}

func TestFindMethodConcurrent(t *testing.T) {
	r := NewResolver(NewMapProvider(testClasses()...), WithCacheSize(8))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ref, ok := r.FindMethod("app/Child", "hashCode", "()I")
				assert.True(t, ok)
				assert.Equal(t, "java/lang/Object", ref.Owner)
				_, ok = r.FindMethod("app/Child", "missing", "()I")
				assert.False(t, ok)
			}
		}()
	}
	wg.Wait()
}

func TestIndexRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatCBOR} {
		buf := new(bytes.Buffer)
		require.NoError(t, SaveIndex(buf, f, testClasses()))
		p, err := LoadIndex(buf, f)
		require.NoError(t, err)
		assert.Equal(t, len(testClasses()), p.Len())
		c, ok := p.Class("app/Base")
		require.True(t, ok)
		assert.Equal(t, testClasses()[3], *c)
	}
}

func TestLoadIndexErrors(t *testing.T) {
	_, err := LoadIndex(strings.NewReader(`{"classes":[{"super":"x"}]}`), FormatJSON)
	assert.Error(t, err)
	_, err = LoadIndex(strings.NewReader(`not json`), FormatJSON)
	assert.Error(t, err)
	_, err = LoadIndex(strings.NewReader(`{}`), Format(9))
	assert.Error(t, err)

	f, err := ParseFormat("cbor")
	require.NoError(t, err)
	assert.Equal(t, FormatCBOR, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
