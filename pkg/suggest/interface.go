/*
Package suggest is the core: it turns keystrokes into decorated place
suggestions and selections into normalized addresses.

	tokens := session.NewManager()
	p := suggest.NewPipeline(client, tokens, suggest.WithDebounce(300*time.Millisecond))
	p.OnOptionsUpdated(func(list []suggest.Suggestion) { render(list) })
	go p.Run(ctx)

	p.Input("10230 jasp")
	p.Select(&p.Suggestions()[0])

# Ordering

Every dispatched search gets a generation number. Only the result of the
newest generation may replace the suggestion list; older results, including
older failures, are dropped without notice. Selections follow the same rule.

# Sessions

Searches attach the token current at dispatch. A detail fetch refreshes the
token once it settles, so the next keystroke opens a new session.
*/
package suggest

import (
	"context"

	"github.com/bastiangx/placeserve/pkg/places"
)

// ISuggester is the surface a rendering layer drives.
type ISuggester interface {
	// Run processes events until ctx is done.
	Run(ctx context.Context) error

	Input(value any)
	Request(req places.AutocompleteRequest)
	SetRequestOptions(opts places.RequestOptions)
	Select(s *Suggestion)

	Suggestions() []Suggestion
	PlaceDetails() *PlaceDetails

	OnOptionsUpdated(fn func([]Suggestion))
	OnPlaceDetailsUpdated(fn func(*PlaceDetails))
	OnError(fn func(error))
}

var _ ISuggester = (*Pipeline)(nil)
