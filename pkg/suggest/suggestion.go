package suggest

import (
	"github.com/bastiangx/placeserve/pkg/address"
	"github.com/bastiangx/placeserve/pkg/places"
)

// Suggestion is a prediction decorated for display. Values are never patched;
// a new query produces a new list.
type Suggestion struct {
	Prediction             *places.PlacePrediction `msgpack:"p"`
	FormattedMainHTML      string                  `msgpack:"mh"`
	FormattedSecondaryHTML string                  `msgpack:"sh"`
	FormattedHTML          string                  `msgpack:"h"`
}

// PlaceDetails is a resolved place plus its normalized address.
type PlaceDetails struct {
	Place   *places.Place  `msgpack:"place" yaml:"place"`
	Address *address.Model `msgpack:"address" yaml:"address"`
}

// Decorate turns raw service suggestions into display suggestions, keeping
// service order and dropping entries without a place prediction.
func Decorate(raw []places.AutocompleteSuggestion) []Suggestion {
	out := make([]Suggestion, 0, len(raw))
	for _, s := range raw {
		p := s.PlacePrediction
		if p == nil {
			continue
		}
		out = append(out, Suggestion{
			Prediction:             p,
			FormattedMainHTML:      Highlight(p.MainText),
			FormattedSecondaryHTML: Highlight(p.SecondaryText),
			FormattedHTML:          Highlight(p.Text),
		})
	}
	return out
}

// DisplayFn returns the full prediction text of s, or "" if any link is missing.
func DisplayFn(s *Suggestion) string {
	if s == nil || s.Prediction == nil || s.Prediction.Text == nil {
		return ""
	}
	return s.Prediction.Text.Text
}
