package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mr1hm/go-report-alerts/internal/fault"
	"github.com/mr1hm/go-report-alerts/internal/models"
)

// Client implements Resolver against the Google Maps Geocoding API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

func (c *Client) PincodeFromPoint(ctx context.Context, p models.GeoPoint) (models.PostalCode, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", fault.ErrInvalidInput, err)
	}

	params := url.Values{
		"latlng": {fmt.Sprintf("%f,%f", p.Latitude, p.Longitude)},
		"key":    {c.apiKey},
	}

	var data geocodeResponse
	if err := c.doRequest(ctx, params, &data); err != nil {
		return "", err
	}

	if len(data.Results) == 0 {
		return "", fmt.Errorf("%w: no geocoding result for %f,%f", fault.ErrNotFound, p.Latitude, p.Longitude)
	}

	for _, comp := range data.Results[0].AddressComponents {
		for _, t := range comp.Types {
			if t == "postal_code" {
				return models.PostalCode(comp.LongName), nil
			}
		}
	}

	return "", fmt.Errorf("%w: no postal_code component for %f,%f", fault.ErrNotFound, p.Latitude, p.Longitude)
}

func (c *Client) PointFromPincode(ctx context.Context, code models.PostalCode) (models.GeoPoint, error) {
	if code == "" {
		return models.GeoPoint{}, fmt.Errorf("%w: empty pincode", fault.ErrInvalidInput)
	}

	params := url.Values{
		"address": {string(code)},
		"key":     {c.apiKey},
	}

	var data geocodeResponse
	if err := c.doRequest(ctx, params, &data); err != nil {
		return models.GeoPoint{}, err
	}

	if len(data.Results) == 0 {
		return models.GeoPoint{}, fmt.Errorf("%w: no geocoding result for pincode %s", fault.ErrNotFound, code)
	}

	loc := data.Results[0].Geometry.Location
	return models.GeoPoint{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

func (c *Client) doRequest(ctx context.Context, params url.Values, out *geocodeResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", fault.ErrUpstreamUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: geocoding request: %v", fault.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status code: %d - status: %s", fault.ErrUpstreamUnavailable, resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", fault.ErrUpstreamUnavailable, err)
	}

	// The API reports lookup misses in the status field with HTTP 200.
	if out.Status == "ZERO_RESULTS" {
		out.Results = nil
	}

	return nil
}

// Google Maps Geocoding API response types.

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	Geometry          geometry           `json:"geometry"`
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
