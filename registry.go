package schemaref

import (
	"context"
	"log/slog"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reoring/schemaref/internal/uri"
	"github.com/reoring/schemaref/jsonpointer"
)

// NoScheme is the registry key for references that carry no scheme, such as
// "#/definitions/a" resolved against the "#" root scope.
const NoScheme = ""

type loaderEntry struct {
	loader Loader
	id     uint64
}

// Registry maps URI schemes to loaders and memoizes loaded documents. One
// Registry belongs to one resolution session; its cache is never shared with
// another registry.
//
// The mapping is mutable until the first LoadURI call. After that the registry
// is sealed and RegisterForScheme fails, so concurrent resolutions always see
// the same loaders.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]loaderEntry
	nextID  uint64
	sealed  atomic.Bool

	cache   *docCache
	id      string
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *Metrics
}

// NewRegistry returns an empty registry. Only CacheSize, Logger, Tracer and
// Metrics are relevant here; loader options are read by NewResolutionContext.
func NewRegistry(opts ...Option) *Registry {
	return newRegistry(buildOptions(opts))
}

func newRegistry(o Options) *Registry {
	return &Registry{
		loaders: map[string]loaderEntry{},
		cache:   newDocCache(o.CacheSize),
		id:      uuid.NewString(),
		logger:  o.Logger,
		tracer:  o.Tracer,
		metrics: o.Metrics,
	}
}

// ID identifies the session in logs and spans.
func (r *Registry) ID() string { return r.id }

// RegisterForScheme binds l to scheme, replacing any previous binding. Scheme
// matching is case-insensitive; NoScheme binds scheme-less references.
// Registering the same loader value under several schemes shares its cache
// entries between them.
func (r *Registry) RegisterForScheme(scheme string, l Loader) error {
	if l == nil {
		return &Error{Code: CodeConsistency, Message: "nil loader for scheme " + scheme}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return &Error{Code: CodeConsistency, Reason: "registry_sealed", Message: schemeLabel(scheme), Cause: ErrRegistrySealed}
	}
	r.loaders[strings.ToLower(scheme)] = loaderEntry{loader: l, id: r.identityLocked(l)}
	return nil
}

// identityLocked reuses the id of an already registered, equal loader.
func (r *Registry) identityLocked(l Loader) uint64 {
	if reflect.TypeOf(l).Comparable() {
		for _, e := range r.loaders {
			if reflect.TypeOf(e.loader) == reflect.TypeOf(l) && e.loader == l {
				return e.id
			}
		}
	}
	r.nextID++
	return r.nextID
}

// Loader returns the loader bound to scheme.
func (r *Registry) Loader(scheme string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.loaders[strings.ToLower(scheme)]
	return e.loader, ok
}

// Sealed reports whether resolution has started.
func (r *Registry) Sealed() bool { return r.sealed.Load() }

// CacheLen returns the number of cached documents.
func (r *Registry) CacheLen() int { return r.cache.len() }

// Purge drops every cached document.
func (r *Registry) Purge() { r.cache.purge() }

// LoadURI loads the document named by ref and, when ref carries a fragment,
// returns the value its JSON Pointer addresses. ref must already be absolute
// with respect to the session; Context.Dereference takes care of joining.
func (r *Registry) LoadURI(ctx context.Context, ref string) (any, error) {
	v, err := r.loadURI(ctx, ref)
	if err != nil {
		r.metrics.resolutionError(err)
	}
	return v, err
}

func (r *Registry) loadURI(ctx context.Context, ref string) (any, error) {
	parts := uri.Split(ref)
	location := parts.Location()

	// Sealing under the lock orders it against RegisterForScheme.
	r.mu.RLock()
	r.sealed.Store(true)
	entry, ok := r.loaders[parts.Scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, &Error{Code: CodeLookup, URI: ref, Reason: "unregistered_scheme", Message: schemeLabel(parts.Scheme)}
	}

	doc, err := r.load(ctx, entry, parts.Scheme, location)
	if err != nil {
		return nil, err
	}

	if parts.Fragment == "" {
		return doc, nil
	}
	frag, err := url.PathUnescape(parts.Fragment)
	if err != nil {
		frag = parts.Fragment
	}
	if !strings.HasPrefix(frag, "/") {
		return nil, &Error{Code: CodeConsistency, URI: ref, Pointer: frag, Message: "fragment must be a JSON pointer"}
	}
	ptr, err := jsonpointer.Parse(frag)
	if err != nil {
		return nil, &Error{Code: CodeConsistency, URI: ref, Pointer: frag, Cause: err}
	}
	v, err := ptr.Extract(doc)
	if err != nil {
		return nil, pointerError(ref, frag, err)
	}
	return v, nil
}

// load invokes the loader through the cache. Failures are never cached.
func (r *Registry) load(ctx context.Context, entry loaderEntry, scheme, location string) (any, error) {
	key := cacheKey{loader: entry.id, location: location}
	if doc, ok := r.cache.get(key); ok {
		r.metrics.cacheHit()
		return doc, nil
	}
	if r.cache != nil {
		r.metrics.cacheMiss()
	}

	ctx, span := r.tracer.Start(ctx, "schemaref.LoadResource",
		trace.WithAttributes(
			attribute.String("schemaref.session", r.id),
			attribute.String("schemaref.scheme", schemeLabel(scheme)),
			attribute.String("schemaref.location", location),
		),
	)
	defer span.End()

	r.logger.Debug("loading resource", "session", r.id, "scheme", schemeLabel(scheme), "location", location)
	start := time.Now()
	doc, err := entry.loader.LoadResource(ctx, location)
	r.metrics.observeLoad(schemeLabel(scheme), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Warn("resource load failed", "session", r.id, "location", location, "error", err)
		if _, ok := AsError(err); !ok {
			err = resourceError(location, err)
		}
		return nil, err
	}
	r.cache.add(key, doc)
	return doc, nil
}

func schemeLabel(s string) string {
	if s == NoScheme {
		return "none"
	}
	return s
}
