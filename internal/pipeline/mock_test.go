package pipeline

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/mapleads-cli/pkg/googlemaps"
)

// --- Maps client mock ---

type mockMapsClient struct {
	mock.Mock
}

func (m *mockMapsClient) Geocode(ctx context.Context, address string) (*googlemaps.GeocodeResult, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*googlemaps.GeocodeResult), args.Error(1)
}

func (m *mockMapsClient) SearchPage(ctx context.Context, req googlemaps.SearchPageRequest) (*googlemaps.SearchPageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*googlemaps.SearchPageResponse), args.Error(1)
}

func (m *mockMapsClient) Details(ctx context.Context, placeID string) (*googlemaps.PlaceDetails, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*googlemaps.PlaceDetails), args.Error(1)
}

// --- Email extractor mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, siteURL string) string {
	args := m.Called(ctx, siteURL)
	return args.String(0)
}

// searchResults builds n sequentially numbered results starting at offset.
func searchResults(offset, n int) []googlemaps.SearchResult {
	results := make([]googlemaps.SearchResult, n)
	for i := range results {
		results[i] = googlemaps.SearchResult{
			PlaceID: fmt.Sprintf("place-%d", offset+i),
			Name:    fmt.Sprintf("Business %d", offset+i),
		}
	}
	return results
}

// pageTokenIs matches a SearchPageRequest by its continuation token.
func pageTokenIs(token string) any {
	return mock.MatchedBy(func(req googlemaps.SearchPageRequest) bool {
		return req.PageToken == token
	})
}
