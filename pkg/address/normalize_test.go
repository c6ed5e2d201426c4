package address

import (
	"testing"

	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comp(long, short string, types ...string) places.AddressComponent {
	return places.AddressComponent{LongText: long, ShortText: short, Types: types}
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize(&places.Place{}))
	assert.Nil(t, Normalize(&places.Place{AddressComponents: []places.AddressComponent{}}))
}

func TestNormalizePostalCode(t *testing.T) {
	got := Normalize(&places.Place{AddressComponents: []places.AddressComponent{
		comp("T6J 0A1", "T6J", "postal_code"),
	}})
	require.NotNil(t, got)
	assert.Equal(t, "T6J 0A1", got.PostalCode)
	assert.Equal(t, Model{PostalCode: "T6J 0A1"}, *got)
}

func TestNormalizeFullAddress(t *testing.T) {
	got := Normalize(&places.Place{AddressComponents: []places.AddressComponent{
		comp("4", "4", "subpremise"),
		comp("10230", "10230", "street_number"),
		comp("Jasper Avenue Northwest", "Jasper Ave NW", "route"),
		comp("Edmonton", "Edmonton", "locality", "political"),
		comp("Alberta", "AB", "administrative_area_level_1", "political"),
		comp("Canada", "CA", "country", "political"),
		comp("T5J 4P6", "T5J 4P6", "postal_code"),
	}})
	require.NotNil(t, got)
	assert.Equal(t, Model{
		StreetNumber: "10230",
		PostalCode:   "T5J 4P6",
		Street:       "Jasper Avenue Northwest",
		Region:       "Alberta",
		RegionCode:   "AB",
		City:         "Edmonton",
		CountryCode:  "CA",
		Country:      "Canada",
		AddressLine2: "4",
	}, *got)
}

func TestNormalizeLastMatchWins(t *testing.T) {
	t.Run("city", func(t *testing.T) {
		got := Normalize(&places.Place{AddressComponents: []places.AddressComponent{
			comp("Edmonton", "Edmonton", "locality"),
			comp("Old Strathcona", "Old Strathcona", "sublocality"),
		}})
		require.NotNil(t, got)
		assert.Equal(t, "Old Strathcona", got.City)
	})

	t.Run("region follows iteration order, not level", func(t *testing.T) {
		got := Normalize(&places.Place{AddressComponents: []places.AddressComponent{
			comp("Alberta", "AB", "administrative_area_level_1"),
			comp("Division No. 11", "Division No. 11", "administrative_area_level_2"),
		}})
		require.NotNil(t, got)
		assert.Equal(t, "Division No. 11", got.Region)
		assert.Equal(t, "Division No. 11", got.RegionCode)
	})
}

func TestNormalizeUnmatchedFieldsStayEmpty(t *testing.T) {
	got := Normalize(&places.Place{AddressComponents: []places.AddressComponent{
		comp("Somewhere", "SW", "neighborhood"),
	}})
	require.NotNil(t, got)
	assert.Equal(t, Model{}, *got)
}
