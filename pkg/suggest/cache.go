package suggest

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// PrefixCache keeps recent autocomplete results keyed by request shape and
// input. Entries sharing a request shape share a trie subtree, so a shape can
// be dropped in one walk. Least recently used entries are evicted first.
type PrefixCache struct {
	trie        *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	misses      int64
	maxEntries  int
	mu          sync.Mutex
}

// NewPrefixCache returns a cache holding at most maxEntries results.
func NewPrefixCache(maxEntries int) *PrefixCache {
	return &PrefixCache{
		trie:       patricia.NewTrie(),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns the cached suggestions for req.
func (pc *PrefixCache) Get(req places.AutocompleteRequest) ([]places.AutocompleteSuggestion, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	key := cacheKey(req)
	item := pc.trie.Get(patricia.Prefix(key))
	if item == nil {
		pc.misses++
		return nil, false
	}
	pc.hits++
	pc.markAccessed(key)
	return item.([]places.AutocompleteSuggestion), true
}

// Put stores suggestions for req, evicting the oldest entry when full.
func (pc *PrefixCache) Put(req places.AutocompleteRequest, suggestions []places.AutocompleteSuggestion) {
	if pc.maxEntries <= 0 {
		return
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()

	key := cacheKey(req)
	if _, exists := pc.accessTime[key]; !exists && len(pc.accessTime) >= pc.maxEntries {
		pc.evictLRU()
	}
	pc.trie.Set(patricia.Prefix(key), suggestions)
	pc.markAccessed(key)
}

// DropShape removes every entry cached under the request shape of opts.
func (pc *PrefixCache) DropShape(opts places.RequestOptions) int {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	shape := shapeKey(opts)
	var keys []string
	err := pc.trie.VisitSubtree(patricia.Prefix(shape), func(p patricia.Prefix, _ patricia.Item) error {
		keys = append(keys, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error walking prefix cache: %v", err)
	}
	for _, k := range keys {
		pc.trie.Delete(patricia.Prefix(k))
		delete(pc.accessTime, k)
	}
	return len(keys)
}

// Len returns the number of cached results.
func (pc *PrefixCache) Len() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return len(pc.accessTime)
}

func (pc *PrefixCache) Stats() map[string]int {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	return map[string]int{
		"cacheEntries": len(pc.accessTime),
		"maxEntries":   pc.maxEntries,
		"cacheHits":    int(pc.hits),
		"cacheMisses":  int(pc.misses),
	}
}

func (pc *PrefixCache) markAccessed(key string) {
	pc.accessCount++
	pc.accessTime[key] = pc.accessCount
}

func (pc *PrefixCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, accessTime := range pc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		pc.trie.Delete(patricia.Prefix(oldestKey))
		delete(pc.accessTime, oldestKey)
		log.Debugf("Evicted '%s' from prefix cache", oldestKey)
	}
}

// shapeKey encodes everything but the input and session token. It always
// ends with a separator so one shape is never a prefix of another.
func shapeKey(o places.RequestOptions) string {
	var b strings.Builder
	b.WriteString(strings.Join(o.IncludedPrimaryTypes, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(o.IncludedRegionCodes, ","))
	b.WriteByte('|')
	b.WriteString(o.LanguageCode)
	b.WriteByte('|')
	b.WriteString(o.RegionCode)
	b.WriteByte('|')
	if o.LocationBias != nil {
		fmt.Fprintf(&b, "%g,%g,%g", o.LocationBias.Center.Latitude, o.LocationBias.Center.Longitude, o.LocationBias.Radius)
	}
	b.WriteByte('|')
	if o.Origin != nil {
		fmt.Fprintf(&b, "%g,%g", o.Origin.Latitude, o.Origin.Longitude)
	}
	b.WriteByte('|')
	if o.InputOffset != nil {
		fmt.Fprintf(&b, "%d", *o.InputOffset)
	}
	b.WriteByte(0)
	return b.String()
}

func cacheKey(req places.AutocompleteRequest) string {
	return shapeKey(req.RequestOptions) + req.Input
}
