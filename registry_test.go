package schemaref_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemaref"
)

// countingLoader serves docs by location and records every invocation.
type countingLoader struct {
	docs  map[string]any
	calls map[string]int
	fail  map[string]int // remaining failures per location
}

func newCountingLoader(docs map[string]any) *countingLoader {
	return &countingLoader{docs: docs, calls: map[string]int{}, fail: map[string]int{}}
}

func (l *countingLoader) LoadResource(_ context.Context, location string) (any, error) {
	l.calls[location]++
	if l.fail[location] > 0 {
		l.fail[location]--
		return nil, errors.New("transient")
	}
	d, ok := l.docs[location]
	if !ok {
		return nil, &schemaref.Error{Code: schemaref.CodeResource, URI: location}
	}
	return d, nil
}

func (l *countingLoader) total() int {
	n := 0
	for _, c := range l.calls {
		n += c
	}
	return n
}

func TestRegistry_DocumentScenario(t *testing.T) {
	r := schemaref.NewRegistry()
	h := newCountingLoader(nil)
	require.NoError(t, r.RegisterForScheme("http", h))
	require.NoError(t, r.RegisterForScheme("file", newCountingLoader(nil)))
	require.NoError(t, r.RegisterForScheme(schemaref.NoScheme, schemaref.NewDocumentLoader(map[string]any{"type": "object"}, "root#")))

	v, err := r.LoadURI(context.Background(), "root#/type")
	require.NoError(t, err)
	assert.Equal(t, "object", v)
	assert.Zero(t, h.total())
}

func TestRegistry_UnregisteredScheme(t *testing.T) {
	r := schemaref.NewRegistry()
	require.NoError(t, r.RegisterForScheme("http", newCountingLoader(nil)))

	_, err := r.LoadURI(context.Background(), "ftp://x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaref.ErrLookup))
	e, ok := schemaref.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "unregistered_scheme", e.Reason)
}

func TestRegistry_NoFragmentReturnsLoaderResult(t *testing.T) {
	doc := map[string]any{"a": 1}
	l := newCountingLoader(map[string]any{"http://h/s.json": doc})
	r := schemaref.NewRegistry()
	require.NoError(t, r.RegisterForScheme("http", l))

	v, err := r.LoadURI(context.Background(), "http://h/s.json")
	require.NoError(t, err)
	direct, err := l.LoadResource(context.Background(), "http://h/s.json")
	require.NoError(t, err)
	assert.Equal(t, direct, v)
}

func TestRegistry_CacheIgnoresFragment(t *testing.T) {
	l := newCountingLoader(map[string]any{
		"http://h/a.json": map[string]any{"x": 1, "y": 2},
		"http://h/b.json": map[string]any{"x": 3},
	})
	r := schemaref.NewRegistry()
	require.NoError(t, r.RegisterForScheme("http", l))
	ctx := context.Background()

	_, err := r.LoadURI(ctx, "http://h/a.json#/x")
	require.NoError(t, err)
	_, err = r.LoadURI(ctx, "http://h/a.json#/y")
	require.NoError(t, err)
	_, err = r.LoadURI(ctx, "http://h/a.json")
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls["http://h/a.json"])

	_, err = r.LoadURI(ctx, "http://h/b.json#/x")
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls["http://h/b.json"])
	assert.Equal(t, 2, r.CacheLen())
}

func TestRegistry_SharedLoaderSharesCache(t *testing.T) {
	l := newCountingLoader(map[string]any{"http://h/a.json": map[string]any{}})
	r := schemaref.NewRegistry()
	require.NoError(t, r.RegisterForScheme("http", l))
	require.NoError(t, r.RegisterForScheme("HTTPS", l))

	_, err := r.LoadURI(context.Background(), "http://h/a.json")
	require.NoError(t, err)
	_, err = r.LoadURI(context.Background(), "HTTP://h/a.json#/")
	require.Error(t, err) // key "" absent
	assert.Equal(t, 1, l.calls["http://h/a.json"])

	got, ok := r.Loader("https")
	require.True(t, ok)
	assert.Same(t, l, got)
}

func TestRegistry_FailuresAreNotCached(t *testing.T) {
	l := newCountingLoader(map[string]any{"http://h/a.json": map[string]any{"ok": true}})
	l.fail["http://h/a.json"] = 1
	r := schemaref.NewRegistry()
	require.NoError(t, r.RegisterForScheme("http", l))

	_, err := r.LoadURI(context.Background(), "http://h/a.json#/ok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaref.ErrResource), "plain loader errors become resource errors: %v", err)
	assert.Zero(t, r.CacheLen())

	v, err := r.LoadURI(context.Background(), "http://h/a.json#/ok")
	require.NoError(t, err)
	assert.Equal(t, true, v)
	assert.Equal(t, 2, l.calls["http://h/a.json"])
}

func TestRegistry_LRUEviction(t *testing.T) {
	l := newCountingLoader(map[string]any{
		"http://h/1": 1, "http://h/2": 2, "http://h/3": 3,
	})
	r := schemaref.NewRegistry(schemaref.WithCacheSize(2))
	require.NoError(t, r.RegisterForScheme("http", l))
	ctx := context.Background()
	load := func(u string) {
		_, err := r.LoadURI(ctx, u)
		require.NoError(t, err)
	}

	load("http://h/1")
	load("http://h/2")
	load("http://h/1") // 1 becomes most recently used
	load("http://h/3") // evicts 2
	load("http://h/1")
	assert.Equal(t, 1, l.calls["http://h/1"])
	load("http://h/2")
	assert.Equal(t, 2, l.calls["http://h/2"])
	assert.Equal(t, 2, r.CacheLen())

	r.Purge()
	assert.Zero(t, r.CacheLen())
}

func TestRegistry_Uncached(t *testing.T) {
	l := newCountingLoader(map[string]any{"http://h/1": 1})
	r := schemaref.NewRegistry(schemaref.WithCacheSize(0))
	require.NoError(t, r.RegisterForScheme("http", l))
	for i := 0; i < 3; i++ {
		_, err := r.LoadURI(context.Background(), "http://h/1")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, l.calls["http://h/1"])
	assert.Zero(t, r.CacheLen())
}

func TestRegistry_LastRegistrationWinsAndSeals(t *testing.T) {
	first := newCountingLoader(map[string]any{"http://h/a": "first"})
	second := newCountingLoader(map[string]any{"http://h/a": "second"})
	r := schemaref.NewRegistry()
	require.NoError(t, r.RegisterForScheme("http", first))
	require.NoError(t, r.RegisterForScheme("http", second))
	assert.False(t, r.Sealed())

	v, err := r.LoadURI(context.Background(), "http://h/a")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
	assert.True(t, r.Sealed())

	err = r.RegisterForScheme("ftp", first)
	assert.ErrorIs(t, err, schemaref.ErrRegistrySealed)
	assert.ErrorIs(t, err, schemaref.ErrConsistency)
	assert.Contains(t, err.Error(), "registry is sealed once resolution has started (ftp)")
	_, ok := r.Loader("ftp")
	assert.False(t, ok)
}

func TestRegistry_FragmentMustBePointer(t *testing.T) {
	r := schemaref.NewRegistry()
	require.NoError(t, r.RegisterForScheme(schemaref.NoScheme, schemaref.NewDocumentLoader(map[string]any{"a": 1}, "")))

	_, err := r.LoadURI(context.Background(), "#anchor")
	assert.ErrorIs(t, err, schemaref.ErrConsistency)

	v, err := r.LoadURI(context.Background(), "#")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, v)
}

func TestRegistry_PointerErrors(t *testing.T) {
	doc := map[string]any{"list": []any{"a"}, "a b": "spaced"}
	r := schemaref.NewRegistry()
	require.NoError(t, r.RegisterForScheme(schemaref.NoScheme, schemaref.NewDocumentLoader(doc, "")))
	ctx := context.Background()

	_, err := r.LoadURI(ctx, "#/list/x")
	assert.ErrorIs(t, err, schemaref.ErrInvalidPointer)

	_, err = r.LoadURI(ctx, "#/list/3")
	assert.ErrorIs(t, err, schemaref.ErrLookup)

	_, err = r.LoadURI(ctx, "#/missing")
	assert.ErrorIs(t, err, schemaref.ErrLookup)

	v, err := r.LoadURI(ctx, "#/a%20b")
	require.NoError(t, err)
	assert.Equal(t, "spaced", v)
}

func TestRegistry_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := schemaref.NewMetrics(schemaref.WithMetricsRegistry(reg), schemaref.WithMetricsNamespace("test"))
	l := newCountingLoader(map[string]any{"http://h/a": map[string]any{"x": 1}})
	r := schemaref.NewRegistry(schemaref.WithMetrics(m))
	require.NoError(t, r.RegisterForScheme("http", l))
	ctx := context.Background()

	_, err := r.LoadURI(ctx, "http://h/a#/x")
	require.NoError(t, err)
	_, err = r.LoadURI(ctx, "http://h/a#/x")
	require.NoError(t, err)
	_, err = r.LoadURI(ctx, "http://h/a#/nope")
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "test_loads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, float64(1), values["test_loads_total"])
	assert.Equal(t, float64(2), values["test_cache_hits_total"])
	assert.Equal(t, float64(1), values["test_cache_misses_total"])
	assert.Equal(t, float64(1), values["test_resolution_errors_total"])
}

func TestRegistry_SealingRacesRegistration(t *testing.T) {
	r := schemaref.NewRegistry()
	require.NoError(t, r.RegisterForScheme(schemaref.NoScheme, schemaref.NewDocumentLoader("doc", "root")))

	const n = 32
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.RegisterForScheme(fmt.Sprintf("s%d", i), schemaref.NewDocumentLoader(i, "x"))
		}(i)
	}
	_, err := r.LoadURI(context.Background(), "root")
	require.NoError(t, err)
	wg.Wait()

	for i, err := range errs {
		_, ok := r.Loader(fmt.Sprintf("s%d", i))
		if err != nil {
			assert.ErrorIs(t, err, schemaref.ErrRegistrySealed)
			assert.False(t, ok, "rejected registration must not be visible")
		} else {
			assert.True(t, ok)
		}
	}
	assert.True(t, r.Sealed())
}
