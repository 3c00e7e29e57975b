package routing

import (
	"strings"
	"sync"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
)

// Router is the default in-memory implementation of the external
// Router collaborator: it resolves a request's criteria string (the
// URL path) to the route entry a dispatcher should be built from.
// Resolution is cached in an xxhash-keyed LRU so a hot path never
// re-walks the separator fallback chain.
type Router struct {
	mu         sync.RWMutex
	table      Table
	separators []string
	cache      *resolutionCache
}

// New builds a Router over table. separators is the bootstrap config's
// router.seperators list (spelling preserved verbatim, see DESIGN.md):
// when criteria has no exact entry, Resolve retries against criteria
// truncated at the last occurrence of each separator in turn, most
// specific first, letting a table register a parent path as a fallback
// for everything beneath it (e.g. separator "/" turns a miss on
// "/users/42" into a retry against "/users"). cacheSize bounds the
// resolution cache; 0 selects a sensible default.
func New(table Table, separators []string, cacheSize int) *Router {
	if table == nil {
		table = make(Table)
	}
	return &Router{
		table:      table,
		separators: separators,
		cache:      newResolutionCache(cacheSize),
	}
}

// Register adds or replaces the entry for criteria and invalidates the
// cache, since a stale cache entry would otherwise outlive the change.
func (r *Router) Register(criteria string, entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[criteria] = entry
	r.cache.clear()
}

// Resolve returns the route entry for criteria, falling back through
// progressively less specific criteria derived from separators. It
// fails with kind NoRoute/404 if nothing matches.
func (r *Router) Resolve(criteria string) (Entry, error) {
	key := cacheKey(criteria)
	if entry, ok, found := r.cache.get(key); found {
		if !ok {
			return nil, noRoute(criteria)
		}
		return entry, nil
	}

	r.mu.RLock()
	entry, ok := r.lookupLocked(criteria)
	r.mu.RUnlock()

	r.cache.put(key, entry, ok)
	if !ok {
		return nil, noRoute(criteria)
	}
	return entry, nil
}

func (r *Router) lookupLocked(criteria string) (Entry, bool) {
	if entry, ok := r.table[criteria]; ok {
		return entry, true
	}
	for _, sep := range r.separators {
		if idx := strings.LastIndex(criteria, sep); idx > 0 {
			if entry, ok := r.table[criteria[:idx]]; ok {
				return entry, true
			}
		}
	}
	return nil, false
}

func noRoute(criteria string) error {
	return gwerrors.New(gwerrors.KindNoRoute, "no route for "+criteria).WithStatus(404)
}
