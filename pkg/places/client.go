package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bastiangx/placeserve/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Places API (New) endpoint.
	DefaultBaseURL = "https://places.googleapis.com"

	// DefaultTimeout bounds one HTTP round trip.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is requests per second.
	DefaultRateLimit = 5
)

// JS-style field names that differ from the REST field mask.
var fieldAliases = map[string]string{
	"googleMapsURI": "googleMapsUri",
	"websiteURI":    "websiteUri",
	"iconMaskURI":   "iconMaskBaseUri",
}

// ErrMissingPlaceID is returned when a handle has nothing to resolve.
var ErrMissingPlaceID = errors.New("places: prediction has no place id")

// Client talks to the Places API (New) over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	language   string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP round trip timeout. A client passed through
// WithHTTPClient is copied, not modified.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithRateLimit sets requests per second. Zero or less disables throttling.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLanguageCode sets the language of place details.
func WithLanguageCode(code string) ClientOption {
	return func(c *Client) {
		c.language = code
	}
}

// WithLogger sets a logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  logger.New("places"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer from the Places API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("places API error: %s (status %d %s, endpoint: %s)", e.Message, e.StatusCode, e.Status, e.Endpoint)
}

// FetchAutocompleteSuggestions implements Library.
func (c *Client) FetchAutocompleteSuggestions(ctx context.Context, req AutocompleteRequest) ([]AutocompleteSuggestion, error) {
	body, err := json.Marshal(newAutocompleteBody(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode autocomplete request: %w", err)
	}

	var resp autocompleteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/places:autocomplete", nil, nil, body, &resp); err != nil {
		return nil, err
	}

	suggestions := make([]AutocompleteSuggestion, 0, len(resp.Suggestions))
	for _, s := range resp.Suggestions {
		suggestions = append(suggestions, s.toSuggestion())
	}

	c.logger.Debug("autocomplete done", "input", req.Input, "results", len(suggestions))
	return suggestions, nil
}

// ToPlace implements Library.
func (c *Client) ToPlace(prediction *PlacePrediction) PlaceHandle {
	h := &placeHandle{client: c}
	if prediction != nil {
		h.id = prediction.PlaceID
		if h.id == "" {
			h.id = strings.TrimPrefix(prediction.Place, "places/")
		}
	}
	return h
}

type placeHandle struct {
	client *Client
	id     string
}

// FetchFields implements PlaceHandle.
func (h *placeHandle) FetchFields(ctx context.Context, req FetchFieldsRequest) (*Place, error) {
	if h.id == "" {
		return nil, ErrMissingPlaceID
	}
	fields := req.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}

	params := url.Values{}
	if req.SessionToken != "" {
		params.Set("sessionToken", string(req.SessionToken))
	}
	if h.client.language != "" {
		params.Set("languageCode", h.client.language)
	}
	header := http.Header{}
	header.Set("X-Goog-FieldMask", FieldMask(fields))

	var resp placeResponse
	if err := h.client.do(ctx, http.MethodGet, "/v1/places/"+url.PathEscape(h.id), params, header, nil, &resp); err != nil {
		return nil, err
	}

	place := resp.toPlace()
	place.RequestedFields = append([]string(nil), fields...)
	return place, nil
}

// FieldMask joins fields into a REST field mask.
func FieldMask(fields []string) string {
	mask := make([]string, 0, len(fields))
	for _, f := range fields {
		if alias, ok := fieldAliases[f]; ok {
			f = alias
		}
		mask = append(mask, f)
	}
	return strings.Join(mask, ",")
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, header http.Header, body []byte, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("calling places API", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call places API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, path, data)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseAPIError reads the google.rpc.Status envelope when there is one.
func parseAPIError(statusCode int, endpoint string, data []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Message:    strings.TrimSpace(string(data)),
		Endpoint:   endpoint,
	}
	if !gjson.ValidBytes(data) {
		return apiErr
	}
	if msg := gjson.GetBytes(data, "error.message"); msg.Exists() {
		apiErr.Message = msg.String()
	}
	if status := gjson.GetBytes(data, "error.status"); status.Exists() {
		apiErr.Status = status.String()
	}
	return apiErr
}
