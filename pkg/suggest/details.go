package suggest

import (
	"context"

	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/bastiangx/placeserve/pkg/session"
	"github.com/charmbracelet/log"
)

type targetKind uint8

const (
	targetPrediction targetKind = iota
	targetSuggestion
)

// Target is what a detail fetch resolves: either a raw service suggestion or a
// bare prediction. Build it with FromSuggestion or FromPrediction.
type Target struct {
	kind       targetKind
	suggestion *places.AutocompleteSuggestion
	prediction *places.PlacePrediction
}

// FromSuggestion targets the prediction wrapped by s.
func FromSuggestion(s *places.AutocompleteSuggestion) Target {
	return Target{kind: targetSuggestion, suggestion: s}
}

// FromPrediction targets p directly.
func FromPrediction(p *places.PlacePrediction) Target {
	return Target{kind: targetPrediction, prediction: p}
}

// Prediction returns the prediction behind t, or nil.
func (t Target) Prediction() *places.PlacePrediction {
	if t.kind == targetSuggestion {
		if t.suggestion == nil {
			return nil
		}
		return t.suggestion.PlacePrediction
	}
	return t.prediction
}

// Fetcher retrieves field-restricted place details and closes the session.
type Fetcher struct {
	lib    places.Library
	tokens *session.Manager
}

// NewFetcher returns a Fetcher over lib sharing tokens with the pipeline.
func NewFetcher(lib places.Library, tokens *session.Manager) *Fetcher {
	return &Fetcher{lib: lib, tokens: tokens}
}

// Fetch resolves target and requests exactly fields (DefaultFields when empty).
// A target without a prediction yields (nil, nil) and leaves the session alone.
// Otherwise the session token is refreshed once, after the call settles,
// whether it succeeded or not.
func (f *Fetcher) Fetch(ctx context.Context, target Target, fields []string) (*places.Place, error) {
	pred := target.Prediction()
	if pred == nil {
		log.Debug("No prediction to fetch details for")
		return nil, nil
	}
	if len(fields) == 0 {
		fields = places.DefaultFields
	}

	token := f.tokens.Current()
	place, err := f.lib.ToPlace(pred).FetchFields(ctx, places.FetchFieldsRequest{
		Fields:       fields,
		SessionToken: token,
	})
	f.tokens.Refresh()

	if err != nil {
		return nil, &FetchError{Op: "details", Input: pred.PlaceID, Err: err}
	}
	return place, nil
}
