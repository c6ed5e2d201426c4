package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/bastiangx/placeserve/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetPrediction(t *testing.T) {
	pred := prediction("x")

	assert.Same(t, pred, FromPrediction(pred).Prediction())
	assert.Same(t, pred, FromSuggestion(&places.AutocompleteSuggestion{PlacePrediction: pred}).Prediction())
	assert.Nil(t, FromPrediction(nil).Prediction())
	assert.Nil(t, FromSuggestion(nil).Prediction())
	assert.Nil(t, FromSuggestion(&places.AutocompleteSuggestion{}).Prediction())
}

func TestFetchMissingPrediction(t *testing.T) {
	targets := map[string]Target{
		"nil prediction":         FromPrediction(nil),
		"nil suggestion":         FromSuggestion(nil),
		"suggestion w/o predict": FromSuggestion(&places.AutocompleteSuggestion{QueryPrediction: &places.QueryPrediction{}}),
		"zero target":            {},
	}

	for name, target := range targets {
		t.Run(name, func(t *testing.T) {
			lib := newFakeLibrary()
			tokens := session.NewManager(session.WithGenerator(tokenSeq()))
			before := tokens.Current()

			place, err := NewFetcher(lib, tokens).Fetch(context.Background(), target, nil)
			assert.NoError(t, err)
			assert.Nil(t, place)
			assert.Equal(t, 0, lib.fetchCount())
			assert.Equal(t, before, tokens.Current())
			assert.Equal(t, 1, tokens.Issued())
		})
	}
}

func TestFetchSuccessRefreshesOnce(t *testing.T) {
	lib := newFakeLibrary()
	lib.place = &places.Place{DisplayName: "Test Place"}
	tokens := session.NewManager(session.WithGenerator(tokenSeq()))
	before := tokens.Current()

	place, err := NewFetcher(lib, tokens).Fetch(context.Background(), FromPrediction(prediction("x")), nil)
	require.NoError(t, err)
	assert.Equal(t, "Test Place", place.DisplayName)

	require.Equal(t, 1, lib.fetchCount())
	assert.Equal(t, []string{"addressComponents"}, lib.fetches[0].Fields)
	assert.Equal(t, before, lib.fetches[0].SessionToken)

	assert.NotEqual(t, before, tokens.Current())
	assert.Equal(t, 2, tokens.Issued())
}

func TestFetchFromSuggestionWrapper(t *testing.T) {
	lib := newFakeLibrary()
	tokens := session.NewManager()
	pred := prediction("wrapped")

	_, err := NewFetcher(lib, tokens).Fetch(context.Background(), FromSuggestion(&places.AutocompleteSuggestion{PlacePrediction: pred}), nil)
	require.NoError(t, err)
	require.Len(t, lib.resolved, 1)
	assert.Same(t, pred, lib.resolved[0])
}

func TestFetchCustomFields(t *testing.T) {
	lib := newFakeLibrary()
	fields := []string{"addressComponents", "googleMapsURI"}

	_, err := NewFetcher(lib, session.NewManager()).Fetch(context.Background(), FromPrediction(prediction("x")), fields)
	require.NoError(t, err)
	assert.Equal(t, fields, lib.fetches[0].Fields)
}

func TestFetchNilPlace(t *testing.T) {
	lib := newFakeLibrary()
	place, err := NewFetcher(lib, session.NewManager()).Fetch(context.Background(), FromPrediction(prediction("x")), nil)
	assert.NoError(t, err)
	assert.Nil(t, place)
}

func TestFetchFailureStillRefreshes(t *testing.T) {
	lib := newFakeLibrary()
	boom := errors.New("boom")
	lib.fetchErr = boom
	tokens := session.NewManager(session.WithGenerator(tokenSeq()))
	before := tokens.Current()

	place, err := NewFetcher(lib, tokens).Fetch(context.Background(), FromPrediction(prediction("x")), nil)
	assert.Nil(t, place)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "details", fe.Op)
	assert.NotEqual(t, before, tokens.Current())
}
