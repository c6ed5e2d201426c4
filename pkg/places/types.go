package places

// SessionToken correlates autocomplete calls and the closing detail call.
type SessionToken string

// DefaultFields is the field set requested when a caller passes none.
var DefaultFields = []string{"addressComponents"}

// StringRange marks a matched span. Offsets count code points of the owning text.
type StringRange struct {
	StartOffset int `json:"startOffset" msgpack:"so"`
	EndOffset   int `json:"endOffset" msgpack:"eo"`
}

// FormattableText is a text plus the spans that matched the input.
type FormattableText struct {
	Text    string        `json:"text" msgpack:"t"`
	Matches []StringRange `json:"matches,omitempty" msgpack:"m,omitempty"`
}

// PlacePrediction is one candidate location.
type PlacePrediction struct {
	// Place is the resource name, "places/{placeId}".
	Place          string           `json:"place" msgpack:"place"`
	PlaceID        string           `json:"placeId" msgpack:"pid"`
	Text           *FormattableText `json:"text,omitempty" msgpack:"text,omitempty"`
	MainText       *FormattableText `json:"mainText,omitempty" msgpack:"main,omitempty"`
	SecondaryText  *FormattableText `json:"secondaryText,omitempty" msgpack:"sec,omitempty"`
	Types          []string         `json:"types,omitempty" msgpack:"types,omitempty"`
	DistanceMeters int              `json:"distanceMeters,omitempty" msgpack:"dist,omitempty"`
}

// QueryPrediction is a query completion; it references no place.
type QueryPrediction struct {
	Text *FormattableText `json:"text,omitempty"`
}

// AutocompleteSuggestion wraps either a place or a query prediction.
type AutocompleteSuggestion struct {
	PlacePrediction *PlacePrediction
	QueryPrediction *QueryPrediction
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude" msgpack:"lat" toml:"latitude"`
	Longitude float64 `json:"longitude" msgpack:"lng" toml:"longitude"`
}

// Circle biases results towards an area.
type Circle struct {
	Center LatLng  `json:"center" msgpack:"c" toml:"center"`
	Radius float64 `json:"radius" msgpack:"r" toml:"radius"`
}

// RequestOptions are the bias and type parameters of an autocomplete request.
type RequestOptions struct {
	IncludedPrimaryTypes []string `msgpack:"types,omitempty"`
	IncludedRegionCodes  []string `msgpack:"regions,omitempty"`
	LanguageCode         string   `msgpack:"lang,omitempty"`
	RegionCode           string   `msgpack:"region,omitempty"`
	LocationBias         *Circle  `msgpack:"bias,omitempty"`
	Origin               *LatLng  `msgpack:"origin,omitempty"`
	InputOffset          *int     `msgpack:"offset,omitempty"`
}

// AutocompleteRequest is one suggestion search.
type AutocompleteRequest struct {
	Input        string
	SessionToken SessionToken
	RequestOptions
}

// FetchFieldsRequest asks for a field set of a resolved place.
type FetchFieldsRequest struct {
	Fields       []string
	SessionToken SessionToken
}

// AddressComponent is one typed piece of a place's address.
type AddressComponent struct {
	LongText     string   `json:"longText" msgpack:"long" yaml:"longText"`
	ShortText    string   `json:"shortText" msgpack:"short" yaml:"shortText"`
	Types        []string `json:"types" msgpack:"types" yaml:"types"`
	LanguageCode string   `json:"languageCode,omitempty" msgpack:"lang,omitempty" yaml:"languageCode,omitempty"`
}

// Place is a field-restricted place payload.
type Place struct {
	ID                string             `json:"id,omitempty" msgpack:"id,omitempty" yaml:"id,omitempty"`
	DisplayName       string             `json:"displayName,omitempty" msgpack:"name,omitempty" yaml:"displayName,omitempty"`
	FormattedAddress  string             `json:"formattedAddress,omitempty" msgpack:"addr,omitempty" yaml:"formattedAddress,omitempty"`
	AddressComponents []AddressComponent `json:"addressComponents,omitempty" msgpack:"comps,omitempty" yaml:"addressComponents,omitempty"`
	Location          *LatLng            `json:"location,omitempty" msgpack:"loc,omitempty" yaml:"location,omitempty"`
	GoogleMapsURI     string             `json:"googleMapsUri,omitempty" msgpack:"uri,omitempty" yaml:"googleMapsUri,omitempty"`
	Types             []string           `json:"types,omitempty" msgpack:"types,omitempty" yaml:"types,omitempty"`
	UTCOffsetMinutes  *int               `json:"utcOffsetMinutes,omitempty" msgpack:"utc,omitempty" yaml:"utcOffsetMinutes,omitempty"`
	RequestedFields   []string           `json:"-" msgpack:"fields" yaml:"-"`
}

// HasField reports whether field was part of the request that produced p.
func (p *Place) HasField(field string) bool {
	if p == nil {
		return false
	}
	for _, f := range p.RequestedFields {
		if f == field {
			return true
		}
	}
	return false
}
