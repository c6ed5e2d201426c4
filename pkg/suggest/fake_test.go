package suggest

import (
	"context"
	"fmt"
	"sync"

	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// fakeLibrary answers searches with one prediction per input unless respond is set.
type fakeLibrary struct {
	mu       sync.Mutex
	searches []places.AutocompleteRequest
	fetches  []places.FetchFieldsRequest
	resolved []*places.PlacePrediction
	gates    map[string]chan struct{}

	respond  func(req places.AutocompleteRequest) ([]places.AutocompleteSuggestion, error)
	place    *places.Place
	byID     map[string]*places.Place
	fetchErr error
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{gates: map[string]chan struct{}{}, byID: map[string]*places.Place{}}
}

// hold blocks searches for input until the returned func is called.
func (f *fakeLibrary) hold(input string) func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[input] = gate
	f.mu.Unlock()
	return func() { close(gate) }
}

func (f *fakeLibrary) FetchAutocompleteSuggestions(ctx context.Context, req places.AutocompleteRequest) ([]places.AutocompleteSuggestion, error) {
	f.mu.Lock()
	f.searches = append(f.searches, req)
	gate := f.gates[req.Input]
	respond := f.respond
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if respond != nil {
		return respond(req)
	}
	return []places.AutocompleteSuggestion{{PlacePrediction: prediction(req.Input)}}, nil
}

func (f *fakeLibrary) ToPlace(p *places.PlacePrediction) places.PlaceHandle {
	f.mu.Lock()
	f.resolved = append(f.resolved, p)
	f.mu.Unlock()
	return fakeHandle{lib: f, id: p.PlaceID}
}

type fakeHandle struct {
	lib *fakeLibrary
	id  string
}

// Details for a place are gated under "place:<id>".
func (h fakeHandle) FetchFields(ctx context.Context, req places.FetchFieldsRequest) (*places.Place, error) {
	h.lib.mu.Lock()
	h.lib.fetches = append(h.lib.fetches, req)
	gate := h.lib.gates["place:"+h.id]
	h.lib.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	h.lib.mu.Lock()
	defer h.lib.mu.Unlock()
	if place, ok := h.lib.byID[h.id]; ok {
		return place, h.lib.fetchErr
	}
	return h.lib.place, h.lib.fetchErr
}

func (f *fakeLibrary) searchInputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.searches))
	for i, s := range f.searches {
		out[i] = s.Input
	}
	return out
}

func (f *fakeLibrary) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *fakeLibrary) lastSearch() places.AutocompleteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches[len(f.searches)-1]
}

func (f *fakeLibrary) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func prediction(text string) *places.PlacePrediction {
	return &places.PlacePrediction{
		Place:   "places/" + text,
		PlaceID: text,
		Text:    &places.FormattableText{Text: text, Matches: []places.StringRange{{StartOffset: 0, EndOffset: 1}}},
	}
}

func tokenSeq() func() places.SessionToken {
	var mu sync.Mutex
	n := 0
	return func() places.SessionToken {
		mu.Lock()
		defer mu.Unlock()
		n++
		return places.SessionToken(fmt.Sprintf("tok-%d", n))
	}
}
