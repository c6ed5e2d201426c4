package places

// REST payloads of the Places API (New). Only the parts we read are mirrored.

type autocompleteBody struct {
	Input                string       `json:"input"`
	SessionToken         string       `json:"sessionToken,omitempty"`
	IncludedPrimaryTypes []string     `json:"includedPrimaryTypes,omitempty"`
	IncludedRegionCodes  []string     `json:"includedRegionCodes,omitempty"`
	LanguageCode         string       `json:"languageCode,omitempty"`
	RegionCode           string       `json:"regionCode,omitempty"`
	LocationBias         *locationBox `json:"locationBias,omitempty"`
	Origin               *LatLng      `json:"origin,omitempty"`
	InputOffset          *int         `json:"inputOffset,omitempty"`
}

type locationBox struct {
	Circle *Circle `json:"circle,omitempty"`
}

func newAutocompleteBody(req AutocompleteRequest) autocompleteBody {
	b := autocompleteBody{
		Input:                req.Input,
		SessionToken:         string(req.SessionToken),
		IncludedPrimaryTypes: req.IncludedPrimaryTypes,
		IncludedRegionCodes:  req.IncludedRegionCodes,
		LanguageCode:         req.LanguageCode,
		RegionCode:           req.RegionCode,
		Origin:               req.Origin,
		InputOffset:          req.InputOffset,
	}
	if req.LocationBias != nil {
		b.LocationBias = &locationBox{Circle: req.LocationBias}
	}
	return b
}

type autocompleteResponse struct {
	Suggestions []suggestionPayload `json:"suggestions"`
}

type suggestionPayload struct {
	PlacePrediction *struct {
		Place            string           `json:"place"`
		PlaceID          string           `json:"placeId"`
		Text             *FormattableText `json:"text"`
		StructuredFormat *struct {
			MainText      *FormattableText `json:"mainText"`
			SecondaryText *FormattableText `json:"secondaryText"`
		} `json:"structuredFormat"`
		Types          []string `json:"types"`
		DistanceMeters int      `json:"distanceMeters"`
	} `json:"placePrediction"`
	QueryPrediction *QueryPrediction `json:"queryPrediction"`
}

func (s suggestionPayload) toSuggestion() AutocompleteSuggestion {
	out := AutocompleteSuggestion{QueryPrediction: s.QueryPrediction}
	if p := s.PlacePrediction; p != nil {
		pred := &PlacePrediction{
			Place:          p.Place,
			PlaceID:        p.PlaceID,
			Text:           p.Text,
			Types:          p.Types,
			DistanceMeters: p.DistanceMeters,
		}
		if p.StructuredFormat != nil {
			pred.MainText = p.StructuredFormat.MainText
			pred.SecondaryText = p.StructuredFormat.SecondaryText
		}
		out.PlacePrediction = pred
	}
	return out
}

type placeResponse struct {
	ID          string `json:"id"`
	DisplayName *struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress  string             `json:"formattedAddress"`
	AddressComponents []AddressComponent `json:"addressComponents"`
	Location          *LatLng            `json:"location"`
	GoogleMapsURI     string             `json:"googleMapsUri"`
	Types             []string           `json:"types"`
	UTCOffsetMinutes  *int               `json:"utcOffsetMinutes"`
}

func (r placeResponse) toPlace() *Place {
	p := &Place{
		ID:                r.ID,
		FormattedAddress:  r.FormattedAddress,
		AddressComponents: r.AddressComponents,
		Location:          r.Location,
		GoogleMapsURI:     r.GoogleMapsURI,
		Types:             r.Types,
		UTCOffsetMinutes:  r.UTCOffsetMinutes,
	}
	if r.DisplayName != nil {
		p.DisplayName = r.DisplayName.Text
	}
	return p
}
