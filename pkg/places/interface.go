/*
Package places defines the contract with the external places-search service and
ships an HTTP implementation of it for the Google Places API (New).

The suggestion core never talks HTTP directly. It sees a Library:

	lib.FetchAutocompleteSuggestions(ctx, places.AutocompleteRequest{Input: "edmo", SessionToken: tok})
	lib.ToPlace(prediction).FetchFields(ctx, places.FetchFieldsRequest{Fields: []string{"addressComponents"}, SessionToken: tok})

Both calls may fail; timeouts belong to the implementation (Client uses the
http.Client timeout from config).

# Session tokens

A SessionToken groups the autocomplete calls of one user interaction with the
detail call that concludes it. Tokens are plain opaque strings; whoever builds a
request attaches the token it captured at that moment.

# Field-restricted payloads

FetchFields only populates the fields it was asked for. Place.RequestedFields
records them; every other field stays at its zero value.
*/
package places

import "context"

// Library is the external places collaborator.
type Library interface {
	// FetchAutocompleteSuggestions returns predictions for req.Input in service order.
	FetchAutocompleteSuggestions(ctx context.Context, req AutocompleteRequest) ([]AutocompleteSuggestion, error)

	// ToPlace resolves a prediction into a handle that can fetch place fields.
	ToPlace(prediction *PlacePrediction) PlaceHandle
}

// PlaceHandle fetches a field-restricted place payload.
type PlaceHandle interface {
	FetchFields(ctx context.Context, req FetchFieldsRequest) (*Place, error)
}
