// Package googlemaps is a minimal client for the Google Maps Web Service
// APIs used by the collection pipeline: Geocoding, Places Text Search, and
// Place Details. Every request passes through the shared rate limiter and
// retries transient failures.
package googlemaps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mapleads-cli/internal/resilience"
)

const defaultBaseURL = "https://maps.googleapis.com"

// Client performs Google Maps API operations.
type Client interface {
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
	SearchPage(ctx context.Context, req SearchPageRequest) (*SearchPageResponse, error)
	Details(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// GeocodeResult is the first match returned by the Geocoding API.
type GeocodeResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	Matched          bool
}

// SearchPageRequest identifies one page of a Places Text Search.
type SearchPageRequest struct {
	Query        string
	Lat          float64
	Lng          float64
	RadiusMeters int
	// PageToken, when set, continues a previous search. The other fields are
	// still sent; the API ignores them on token-bearing requests.
	PageToken string
}

// SearchPageResponse is one page of search results.
type SearchPageResponse struct {
	Results       []SearchResult
	NextPageToken string
}

// SearchResult is one listing on a search page.
type SearchResult struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
}

// PlaceDetails holds the detail fields fetched per place.
type PlaceDetails struct {
	Name        string   `json:"name"`
	Address     string   `json:"formatted_address"`
	Phone       string   `json:"formatted_phone_number"`
	Website     string   `json:"website"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"user_ratings_total"`
	Types       []string `json:"types"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLimiter sets the rate limiter every request waits on.
func WithLimiter(l *resilience.WindowLimiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *resilience.WindowLimiter
	retry   resilience.RetryConfig
}

// NewClient creates a Google Maps API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type geocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (c *httpClient) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	params := url.Values{
		"address": {address},
		"key":     {c.apiKey},
	}

	var parsed geocodeResponse
	if err := c.getJSON(ctx, "geocode", "/maps/api/geocode/json", params, &parsed); err != nil {
		return nil, err
	}

	if parsed.Status != statusOK && parsed.Status != statusZeroResults {
		return nil, eris.Errorf("googlemaps: geocode status %s: %s", parsed.Status, parsed.ErrorMessage)
	}
	if parsed.Status == statusZeroResults || len(parsed.Results) == 0 {
		return &GeocodeResult{Matched: false}, nil
	}

	first := parsed.Results[0]
	return &GeocodeResult{
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
		Matched:          true,
	}, nil
}

type textSearchResponse struct {
	Results       []SearchResult `json:"results"`
	NextPageToken string         `json:"next_page_token"`
	Status        string         `json:"status"`
	ErrorMessage  string         `json:"error_message"`
}

func (c *httpClient) SearchPage(ctx context.Context, req SearchPageRequest) (*SearchPageResponse, error) {
	params := url.Values{
		"query":    {req.Query},
		"location": {strconv.FormatFloat(req.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(req.Lng, 'f', -1, 64)},
		"radius":   {strconv.Itoa(req.RadiusMeters)},
		"key":      {c.apiKey},
	}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	}

	var parsed textSearchResponse
	if err := c.getJSON(ctx, "search", "/maps/api/place/textsearch/json", params, &parsed); err != nil {
		return nil, err
	}

	if parsed.Status == statusZeroResults {
		return &SearchPageResponse{}, nil
	}
	if parsed.Status != statusOK {
		return nil, eris.Errorf("googlemaps: search status %s: %s", parsed.Status, parsed.ErrorMessage)
	}

	return &SearchPageResponse{
		Results:       parsed.Results,
		NextPageToken: parsed.NextPageToken,
	}, nil
}

type detailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

const detailFields = "name,formatted_address,formatted_phone_number,website,rating,user_ratings_total,types"

func (c *httpClient) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{
		"place_id": {placeID},
		"fields":   {detailFields},
		"key":      {c.apiKey},
	}

	var parsed detailsResponse
	if err := c.getJSON(ctx, "details", "/maps/api/place/details/json", params, &parsed); err != nil {
		return nil, err
	}

	if parsed.Status != statusOK {
		return nil, eris.Errorf("googlemaps: details status %s: %s", parsed.Status, parsed.ErrorMessage)
	}

	return &parsed.Result, nil
}

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// transientStatus reports API-level statuses that resolve on their own with
// a short wait: quota refill or internal hiccups. These arrive with HTTP 200,
// so they are classified here rather than by status code.
func transientStatus(status string) bool {
	return status == "OVER_QUERY_LIMIT" || status == "UNKNOWN_ERROR"
}

// getJSON issues one rate-limited, retried GET and decodes the body into out.
func (c *httpClient) getJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.doGet(ctx, op, path, params)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "googlemaps: %s unmarshal response", op)
	}
	return nil
}

func (c *httpClient) doGet(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "googlemaps: %s rate limit", op)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "googlemaps: %s create request", op)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "googlemaps: %s send request", op)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "googlemaps: %s read response", op)
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("googlemaps: %s unexpected status %d: %s", op, resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var probe struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && transientStatus(probe.Status) {
		return nil, resilience.NewTransientError(
			eris.Errorf("googlemaps: %s api status %s", op, probe.Status), resp.StatusCode)
	}

	return body, nil
}
