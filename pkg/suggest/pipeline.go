package suggest

import (
	"context"
	"sync"
	"time"

	"github.com/bastiangx/placeserve/pkg/address"
	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/bastiangx/placeserve/pkg/session"
	"github.com/charmbracelet/log"
)

// DefaultDebounce is the quiet period before a typed value is searched.
const DefaultDebounce = 725 * time.Millisecond

const eventBuffer = 128

// Pipeline turns raw input values into suggestion lists and selections into
// place details. All of its state is owned by the goroutine running Run;
// the public methods only enqueue events.
type Pipeline struct {
	lib     places.Library
	tokens  *session.Manager
	fetcher *Fetcher
	cache   *PrefixCache

	debounce    time.Duration
	noDebounce  bool
	distinct    bool
	loadDetails bool
	fields      []string
	options     places.RequestOptions

	events  chan event
	results chan result
	done    chan struct{}
	once    sync.Once

	// owned by Run
	lastValue    *string
	pending      *places.AutocompleteRequest
	optionsDirty bool
	dispatched   *string
	searchGen    uint64
	detailsGen   uint64

	mu          sync.RWMutex
	suggestions []Suggestion
	details     *PlaceDetails

	lmu       sync.RWMutex
	onOptions []func([]Suggestion)
	onDetails []func(*PlaceDetails)
	onError   []func(error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		p.debounce = d
		p.noDebounce = false
	}
}

// WithoutDebounce dispatches every value as soon as it arrives, with no
// duplicate suppression.
func WithoutDebounce() Option {
	return func(p *Pipeline) {
		p.noDebounce = true
	}
}

// WithDistinct toggles skipping a dispatch identical to the previous one.
func WithDistinct(on bool) Option {
	return func(p *Pipeline) {
		p.distinct = on
	}
}

// WithPlaceDetails toggles fetching details when a suggestion is selected.
func WithPlaceDetails(on bool) Option {
	return func(p *Pipeline) {
		p.loadDetails = on
	}
}

// WithFetchFields sets the place fields requested on selection.
func WithFetchFields(fields []string) Option {
	return func(p *Pipeline) {
		p.fields = fields
	}
}

// WithRequestOptions sets the initial bias and type options.
func WithRequestOptions(opts places.RequestOptions) Option {
	return func(p *Pipeline) {
		p.options = opts
	}
}

// WithCache serves repeated requests from c.
func WithCache(c *PrefixCache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// NewPipeline builds a pipeline over lib. tokens is shared with detail fetches.
func NewPipeline(lib places.Library, tokens *session.Manager, opts ...Option) *Pipeline {
	p := &Pipeline{
		lib:         lib,
		tokens:      tokens,
		fetcher:     NewFetcher(lib, tokens),
		debounce:    DefaultDebounce,
		distinct:    true,
		loadDetails: true,
		fields:      places.DefaultFields,
		events:      make(chan event, eventBuffer),
		results:     make(chan result, eventBuffer),
		done:        make(chan struct{}),
		suggestions: []Suggestion{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type eventKind uint8

const (
	evInput eventKind = iota
	evRequest
	evOptions
	evSelect
)

type event struct {
	kind    eventKind
	value   any
	request places.AutocompleteRequest
	options places.RequestOptions
	pick    *Suggestion
}

type result struct {
	details     bool
	gen         uint64
	req         places.AutocompleteRequest
	suggestions []places.AutocompleteSuggestion
	place       *places.Place
	err         error
}

// Input feeds a raw value. Only strings are searched; anything else clears the
// list after the debounce window, the same as an empty string.
func (p *Pipeline) Input(value any) {
	p.send(event{kind: evInput, value: value})
}

// Request feeds an explicit request. Its own options apply to this search.
func (p *Pipeline) Request(req places.AutocompleteRequest) {
	p.send(event{kind: evRequest, request: req})
}

// SetRequestOptions replaces the bias and type options and searches the last
// string value again. Cached results of the old options are dropped.
func (p *Pipeline) SetRequestOptions(opts places.RequestOptions) {
	p.send(event{kind: evOptions, options: opts})
}

// Select loads details for s when automatic detail loading is on.
func (p *Pipeline) Select(s *Suggestion) {
	p.send(event{kind: evSelect, pick: s})
}

// Fetcher exposes the detail fetcher for callers that load details themselves.
func (p *Pipeline) Fetcher() *Fetcher {
	return p.fetcher
}

// Suggestions returns the current suggestion list.
func (p *Pipeline) Suggestions() []Suggestion {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.suggestions
}

// PlaceDetails returns the details of the last completed selection, or nil.
func (p *Pipeline) PlaceDetails() *PlaceDetails {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.details
}

// OnOptionsUpdated registers fn to receive every new suggestion list.
func (p *Pipeline) OnOptionsUpdated(fn func([]Suggestion)) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.onOptions = append(p.onOptions, fn)
}

// OnPlaceDetailsUpdated registers fn to receive every completed selection.
func (p *Pipeline) OnPlaceDetailsUpdated(fn func(*PlaceDetails)) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.onDetails = append(p.onDetails, fn)
}

// OnError registers fn to receive failures of the latest search or selection.
func (p *Pipeline) OnError(fn func(error)) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.onError = append(p.onError, fn)
}

func (p *Pipeline) send(ev event) {
	select {
	case p.events <- ev:
	case <-p.done:
	}
}

// Run processes events until ctx is done. Results still in flight are dropped.
func (p *Pipeline) Run(ctx context.Context) error {
	defer p.once.Do(func() { close(p.done) })

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-p.events:
			if !p.handle(ctx, ev) {
				continue
			}
			if p.noDebounce {
				p.flush(ctx)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(p.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(p.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			p.flush(ctx)

		case res := <-p.results:
			if res.details {
				p.commitDetails(res)
			} else {
				p.commitSearch(res)
			}
		}
	}
}

// handle applies ev and reports whether a search is now pending.
func (p *Pipeline) handle(ctx context.Context, ev event) bool {
	switch ev.kind {
	case evInput:
		value, ok := ev.value.(string)
		if !ok {
			// clears like an empty string; lastValue stays for option changes
			log.Debugf("Clearing on non-string input of type %T", ev.value)
			p.pending = &places.AutocompleteRequest{RequestOptions: p.options}
			return true
		}
		p.lastValue = &value
		p.pending = &places.AutocompleteRequest{Input: value, RequestOptions: p.options}
		return true

	case evRequest:
		value := ev.request.Input
		p.lastValue = &value
		req := ev.request
		p.pending = &req
		return true

	case evOptions:
		if p.cache != nil && shapeKey(p.options) != shapeKey(ev.options) {
			if n := p.cache.DropShape(p.options); n > 0 {
				log.Debugf("Dropped %d cached results for old options", n)
			}
		}
		p.options = ev.options
		p.optionsDirty = true
		if p.lastValue == nil {
			return false
		}
		p.pending = &places.AutocompleteRequest{Input: *p.lastValue, RequestOptions: p.options}
		return true

	case evSelect:
		p.selectSuggestion(ctx, ev.pick)
	}
	return false
}

func (p *Pipeline) flush(ctx context.Context) {
	if p.pending == nil {
		return
	}
	req := *p.pending
	p.pending = nil
	p.dispatch(ctx, req)
}

func (p *Pipeline) dispatch(ctx context.Context, req places.AutocompleteRequest) {
	key := cacheKey(req)
	if p.distinct && !p.noDebounce && !p.optionsDirty && p.dispatched != nil && *p.dispatched == key {
		log.Debugf("Skipping unchanged input '%s'", req.Input)
		return
	}
	p.dispatched = &key
	p.optionsDirty = false

	p.searchGen++
	gen := p.searchGen

	if req.Input == "" {
		p.setSuggestions([]Suggestion{})
		return
	}

	if p.cache != nil {
		if cached, ok := p.cache.Get(req); ok {
			log.Debugf("Prefix cache hit for '%s'", req.Input)
			p.commitSearch(result{gen: gen, req: req, suggestions: cached})
			return
		}
	}

	req.SessionToken = p.tokens.Current()
	log.Debugf("Dispatching search #%d for '%s'", gen, req.Input)

	go func() {
		raw, err := p.lib.FetchAutocompleteSuggestions(ctx, req)
		p.deliver(ctx, result{gen: gen, req: req, suggestions: raw, err: err})
	}()
}

func (p *Pipeline) deliver(ctx context.Context, res result) {
	select {
	case p.results <- res:
	case <-ctx.Done():
	}
}

func (p *Pipeline) commitSearch(res result) {
	if res.gen != p.searchGen {
		log.Debugf("Dropping superseded search #%d for '%s'", res.gen, res.req.Input)
		return
	}
	if res.err != nil {
		log.Warnf("Search for '%s' failed: %v", res.req.Input, res.err)
		p.emitError(&FetchError{Op: "search", Input: res.req.Input, Err: res.err})
		return
	}
	if p.cache != nil {
		p.cache.Put(res.req, res.suggestions)
	}
	p.setSuggestions(Decorate(res.suggestions))
}

func (p *Pipeline) setSuggestions(list []Suggestion) {
	p.mu.Lock()
	p.suggestions = list
	p.mu.Unlock()

	p.lmu.RLock()
	defer p.lmu.RUnlock()
	for _, fn := range p.onOptions {
		fn(list)
	}
}

func (p *Pipeline) selectSuggestion(ctx context.Context, s *Suggestion) {
	if !p.loadDetails {
		return
	}
	if s == nil {
		log.Debug("Ignoring empty selection")
		return
	}

	p.detailsGen++
	gen := p.detailsGen
	target := FromPrediction(s.Prediction)
	fields := p.fields

	go func() {
		place, err := p.fetcher.Fetch(ctx, target, fields)
		p.deliver(ctx, result{details: true, gen: gen, place: place, err: err})
	}()
}

func (p *Pipeline) commitDetails(res result) {
	if res.gen != p.detailsGen {
		log.Debugf("Dropping superseded details #%d", res.gen)
		return
	}
	if res.err != nil {
		log.Warnf("Place details failed: %v", res.err)
		p.emitError(res.err)
		return
	}

	var details *PlaceDetails
	if res.place != nil {
		details = &PlaceDetails{Place: res.place, Address: address.Normalize(res.place)}
	}

	p.mu.Lock()
	p.details = details
	p.mu.Unlock()

	p.lmu.RLock()
	defer p.lmu.RUnlock()
	for _, fn := range p.onDetails {
		fn(details)
	}
}

func (p *Pipeline) emitError(err error) {
	p.lmu.RLock()
	defer p.lmu.RUnlock()
	for _, fn := range p.onError {
		fn(err)
	}
}
