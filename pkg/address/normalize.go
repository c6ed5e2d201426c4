/*
Package address maps the typed address components of a place into a fixed record.

Every component is checked against every row of a static table. When several
components feed the same field, the one seen last wins; the table is not a
priority list. Callers that want, say, administrative_area_level_1 to beat
administrative_area_level_2 must order the components before calling Normalize.

Two fields go beyond the long and short names of the usual components:
RegionCode takes the short text of the administrative areas that fill Region,
and AddressLine2 takes the subpremise (unit, suite).
*/
package address

import (
	"slices"

	"github.com/bastiangx/placeserve/pkg/places"
)

// Model is a normalized address. Missing parts are empty strings.
type Model struct {
	StreetNumber string `json:"streetNumber" msgpack:"streetNumber" yaml:"streetNumber"`
	PostalCode   string `json:"postalCode" msgpack:"postalCode" yaml:"postalCode"`
	Street       string `json:"street" msgpack:"street" yaml:"street"`
	Region       string `json:"region" msgpack:"region" yaml:"region"`
	RegionCode   string `json:"regionCode" msgpack:"regionCode" yaml:"regionCode"`
	City         string `json:"city" msgpack:"city" yaml:"city"`
	CountryCode  string `json:"countryCode" msgpack:"countryCode" yaml:"countryCode"`
	Country      string `json:"country" msgpack:"country" yaml:"country"`
	AddressLine2 string `json:"addressLine2" msgpack:"addressLine2" yaml:"addressLine2"`
}

type rule struct {
	types []string
	short bool
	set   func(m *Model, v string)
}

var regionTypes = []string{
	"administrative_area_level_1",
	"administrative_area_level_2",
	"administrative_area_level_3",
	"administrative_area_level_4",
	"administrative_area_level_5",
}

var rules = []rule{
	{types: []string{"street_number"}, set: func(m *Model, v string) { m.StreetNumber = v }},
	{types: []string{"postal_code"}, set: func(m *Model, v string) { m.PostalCode = v }},
	{types: []string{"street_address", "route"}, set: func(m *Model, v string) { m.Street = v }},
	{types: regionTypes, set: func(m *Model, v string) { m.Region = v }},
	{types: regionTypes, short: true, set: func(m *Model, v string) { m.RegionCode = v }},
	{types: []string{
		"locality",
		"sublocality",
		"sublocality_level_1",
		"sublocality_level_2",
		"sublocality_level_3",
		"sublocality_level_4",
	}, set: func(m *Model, v string) { m.City = v }},
	{types: []string{"country"}, short: true, set: func(m *Model, v string) { m.CountryCode = v }},
	{types: []string{"country"}, set: func(m *Model, v string) { m.Country = v }},
	{types: []string{"subpremise"}, set: func(m *Model, v string) { m.AddressLine2 = v }},
}

// Normalize builds a Model from place's address components. It returns nil
// when place is nil or carries no components.
func Normalize(place *places.Place) *Model {
	if place == nil || len(place.AddressComponents) == 0 {
		return nil
	}

	m := &Model{}
	for _, c := range place.AddressComponents {
		for _, r := range rules {
			if !matchesAny(c.Types, r.types) {
				continue
			}
			if r.short {
				r.set(m, c.ShortText)
			} else {
				r.set(m, c.LongText)
			}
		}
	}
	return m
}

func matchesAny(have, want []string) bool {
	for _, t := range want {
		if slices.Contains(have, t) {
			return true
		}
	}
	return false
}
