package places

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

const autocompleteJSON = `{
  "suggestions": [
    {
      "placePrediction": {
        "place": "places/abc",
        "placeId": "abc",
        "text": {"text": "Edmonton, AB, Canada", "matches": [{"endOffset": 4}]},
        "structuredFormat": {
          "mainText": {"text": "Edmonton", "matches": [{"endOffset": 4}]},
          "secondaryText": {"text": "AB, Canada"}
        },
        "types": ["locality", "political"]
      }
    },
    {
      "queryPrediction": {"text": {"text": "edmonton pizza"}}
    }
  ]
}`

func TestFetchAutocompleteSuggestions(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/places:autocomplete", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("X-Goog-Api-Key"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))
		_, _ = io.WriteString(w, autocompleteJSON)
	}))
	defer srv.Close()

	c := NewClient("key-123", WithBaseURL(srv.URL), WithRateLimit(0))
	got, err := c.FetchAutocompleteSuggestions(context.Background(), AutocompleteRequest{
		Input:        "Edmo",
		SessionToken: "tok-1",
		RequestOptions: RequestOptions{
			IncludedRegionCodes: []string{"ca"},
			LocationBias:        &Circle{Center: LatLng{Latitude: 53.5, Longitude: -113.5}, Radius: 5000},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Edmo", gotBody["input"])
	assert.Equal(t, "tok-1", gotBody["sessionToken"])
	assert.Equal(t, []any{"ca"}, gotBody["includedRegionCodes"])
	assert.Contains(t, gotBody, "locationBias")

	require.Len(t, got, 2)
	pred := got[0].PlacePrediction
	require.NotNil(t, pred)
	assert.Equal(t, "abc", pred.PlaceID)
	assert.Equal(t, "Edmonton", pred.MainText.Text)
	assert.Equal(t, []StringRange{{StartOffset: 0, EndOffset: 4}}, pred.MainText.Matches)
	assert.Equal(t, "AB, Canada", pred.SecondaryText.Text)
	assert.Nil(t, got[1].PlacePrediction)
	assert.NotNil(t, got[1].QueryPrediction)
}

func TestFetchFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/places/abc", r.URL.Path)
		assert.Equal(t, "tok-9", r.URL.Query().Get("sessionToken"))
		assert.Equal(t, "fr", r.URL.Query().Get("languageCode"))
		assert.Equal(t, "addressComponents,googleMapsUri", r.Header.Get("X-Goog-FieldMask"))
		_, _ = io.WriteString(w, `{"addressComponents":[{"longText":"T6J 0A1","shortText":"T6J","types":["postal_code"]}],"googleMapsUri":"https://maps.google.com/?cid=1"}`)
	}))
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL), WithRateLimit(0), WithLanguageCode("fr"))
	place, err := c.ToPlace(&PlacePrediction{Place: "places/abc"}).FetchFields(context.Background(), FetchFieldsRequest{
		Fields:       []string{"addressComponents", "googleMapsURI"},
		SessionToken: "tok-9",
	})
	require.NoError(t, err)
	require.NotNil(t, place)
	require.Len(t, place.AddressComponents, 1)
	assert.Equal(t, "T6J 0A1", place.AddressComponents[0].LongText)
	assert.Equal(t, "https://maps.google.com/?cid=1", place.GoogleMapsURI)
	assert.True(t, place.HasField("googleMapsURI"))
	assert.False(t, place.HasField("displayName"))
	assert.Empty(t, place.DisplayName)
}

func TestFetchFieldsMissingID(t *testing.T) {
	c := NewClient("key")
	_, err := c.ToPlace(&PlacePrediction{}).FetchFields(context.Background(), FetchFieldsRequest{})
	assert.ErrorIs(t, err, ErrMissingPlaceID)
}

func TestAPIError(t *testing.T) {
	t.Run("google envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"code":403,"message":"API key not valid.","status":"PERMISSION_DENIED"}}`)
		}))
		defer srv.Close()

		c := NewClient("bad", WithBaseURL(srv.URL), WithRateLimit(0))
		_, err := c.FetchAutocompleteSuggestions(context.Background(), AutocompleteRequest{Input: "x"})

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, "PERMISSION_DENIED", apiErr.Status)
		assert.Equal(t, "API key not valid.", apiErr.Message)
	})

	t.Run("plain body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient("k", WithBaseURL(srv.URL), WithRateLimit(0))
		_, err := c.FetchAutocompleteSuggestions(context.Background(), AutocompleteRequest{Input: "x"})

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "upstream down", apiErr.Message)
		assert.Equal(t, "Bad Gateway", apiErr.Status)
	})
}

func TestFieldMask(t *testing.T) {
	assert.Equal(t, "addressComponents", FieldMask(DefaultFields))
	assert.Equal(t, "id,websiteUri", FieldMask([]string{"id", "websiteURI"}))
}

func TestWithTimeoutCopiesSharedClient(t *testing.T) {
	shared := &http.Client{}
	c := NewClient("key", WithHTTPClient(shared), WithTimeout(3*time.Second))

	assert.Zero(t, shared.Timeout)
	assert.NotSame(t, shared, c.httpClient)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}
