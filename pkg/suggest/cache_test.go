package suggest

import (
	"testing"

	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func req(input string, opts places.RequestOptions) places.AutocompleteRequest {
	return places.AutocompleteRequest{Input: input, RequestOptions: opts}
}

func one(id string) []places.AutocompleteSuggestion {
	return []places.AutocompleteSuggestion{{PlacePrediction: prediction(id)}}
}

func TestPrefixCacheGetPut(t *testing.T) {
	pc := NewPrefixCache(4)

	_, ok := pc.Get(req("edm", places.RequestOptions{}))
	assert.False(t, ok)

	pc.Put(req("edm", places.RequestOptions{}), one("edm"))
	got, ok := pc.Get(req("edm", places.RequestOptions{}))
	require.True(t, ok)
	assert.Equal(t, "edm", got[0].PlacePrediction.PlaceID)

	stats := pc.Stats()
	assert.Equal(t, 1, stats["cacheHits"])
	assert.Equal(t, 1, stats["cacheMisses"])
	assert.Equal(t, 1, stats["cacheEntries"])
}

func TestPrefixCacheIgnoresSessionToken(t *testing.T) {
	pc := NewPrefixCache(4)
	r := req("edm", places.RequestOptions{})
	r.SessionToken = "a"
	pc.Put(r, one("edm"))

	r.SessionToken = "b"
	_, ok := pc.Get(r)
	assert.True(t, ok)
}

func TestPrefixCacheSeparatesShapes(t *testing.T) {
	pc := NewPrefixCache(4)
	ca := places.RequestOptions{RegionCode: "ca"}
	us := places.RequestOptions{RegionCode: "us"}

	pc.Put(req("springfield", ca), one("ca"))
	_, ok := pc.Get(req("springfield", us))
	assert.False(t, ok)

	_, ok = pc.Get(req("spring", ca))
	assert.False(t, ok, "a prefix of a cached input is not a hit")
}

func TestPrefixCacheEvictsLeastRecent(t *testing.T) {
	pc := NewPrefixCache(2)
	opts := places.RequestOptions{}

	pc.Put(req("a", opts), one("a"))
	pc.Put(req("b", opts), one("b"))
	pc.Get(req("a", opts))
	pc.Put(req("c", opts), one("c"))

	assert.Equal(t, 2, pc.Len())
	_, ok := pc.Get(req("b", opts))
	assert.False(t, ok)
	_, ok = pc.Get(req("a", opts))
	assert.True(t, ok)
	_, ok = pc.Get(req("c", opts))
	assert.True(t, ok)
}

func TestPrefixCacheDisabled(t *testing.T) {
	pc := NewPrefixCache(0)
	pc.Put(req("a", places.RequestOptions{}), one("a"))
	assert.Equal(t, 0, pc.Len())
}

func TestPrefixCacheDropShape(t *testing.T) {
	pc := NewPrefixCache(8)
	ca := places.RequestOptions{IncludedRegionCodes: []string{"ca"}}
	caUS := places.RequestOptions{IncludedRegionCodes: []string{"ca", "us"}}

	pc.Put(req("a", ca), one("a"))
	pc.Put(req("ab", ca), one("ab"))
	pc.Put(req("a", caUS), one("a"))

	assert.Equal(t, 2, pc.DropShape(ca))
	assert.Equal(t, 1, pc.Len())
	_, ok := pc.Get(req("a", caUS))
	assert.True(t, ok)
}
