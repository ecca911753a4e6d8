package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mapleads-cli/internal/model"
	"github.com/sells-group/mapleads-cli/pkg/googlemaps"
)

func testPipeline(maps googlemaps.Client, emails EmailExtractor) *Pipeline {
	return New(maps, emails, WithPageDelay(0), WithPoolSize(4))
}

func TestRun_CoordinateLocationSkipsGeocode(t *testing.T) {
	maps := &mockMapsClient{}
	emails := &mockExtractor{}

	maps.On("SearchPage", mock.Anything, mock.MatchedBy(func(req googlemaps.SearchPageRequest) bool {
		return req.Lat == 40.0 && req.Lng == -73.0
	})).Return(&googlemaps.SearchPageResponse{Results: searchResults(0, 1)}, nil)
	maps.On("Details", mock.Anything, "place-0").Return(&googlemaps.PlaceDetails{Name: "Business 0"}, nil)

	p := testPipeline(maps, emails)
	records, err := p.Run(context.Background(), model.SearchRequest{
		Location:     "40.0,-73.0",
		Query:        "plumbers",
		NumResults:   10,
		RadiusMeters: 50000,
	})

	require.NoError(t, err)
	require.Len(t, records, 1)
	maps.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	emails.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestRun_GeocodesPlaceName(t *testing.T) {
	maps := &mockMapsClient{}
	emails := &mockExtractor{}

	maps.On("Geocode", mock.Anything, "Portland, OR").
		Return(&googlemaps.GeocodeResult{Lat: 45.5, Lng: -122.7, Matched: true}, nil)
	maps.On("SearchPage", mock.Anything, mock.MatchedBy(func(req googlemaps.SearchPageRequest) bool {
		return req.Lat == 45.5 && req.Lng == -122.7
	})).Return(&googlemaps.SearchPageResponse{Results: searchResults(0, 2)}, nil)
	maps.On("Details", mock.Anything, mock.Anything).Return(&googlemaps.PlaceDetails{Name: "x"}, nil)

	p := testPipeline(maps, emails)
	records, err := p.Run(context.Background(), model.SearchRequest{
		Location:   "Portland, OR",
		Query:      "coffee",
		NumResults: 10,
	})

	require.NoError(t, err)
	assert.Len(t, records, 2)
	maps.AssertExpectations(t)
}

func TestRun_LocationNotFoundAbortsRun(t *testing.T) {
	maps := &mockMapsClient{}
	emails := &mockExtractor{}

	maps.On("Geocode", mock.Anything, "nowhere at all").
		Return(&googlemaps.GeocodeResult{Matched: false}, nil)

	p := testPipeline(maps, emails)
	_, err := p.Run(context.Background(), model.SearchRequest{
		Location:   "nowhere at all",
		Query:      "coffee",
		NumResults: 10,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocationNotFound)
	maps.AssertNotCalled(t, "SearchPage", mock.Anything, mock.Anything)
}

func TestRun_GeocodeErrorAbortsRun(t *testing.T) {
	maps := &mockMapsClient{}
	emails := &mockExtractor{}

	maps.On("Geocode", mock.Anything, mock.Anything).Return(nil, eris.New("quota exhausted"))

	p := testPipeline(maps, emails)
	_, err := p.Run(context.Background(), model.SearchRequest{
		Location:   "Portland, OR",
		Query:      "coffee",
		NumResults: 10,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestRun_PaginationStopsAtCapAndTruncates(t *testing.T) {
	maps := &mockMapsClient{}
	emails := &mockExtractor{}

	// Three pages of 20 with tokens on pages 1-2: the orchestrator fetches
	// all three (40 < 50 when page 3 is requested), accumulates 60, and
	// truncates to exactly 50.
	maps.On("SearchPage", mock.Anything, pageTokenIs("")).
		Return(&googlemaps.SearchPageResponse{Results: searchResults(0, 20), NextPageToken: "tok-2"}, nil).Once()
	maps.On("SearchPage", mock.Anything, pageTokenIs("tok-2")).
		Return(&googlemaps.SearchPageResponse{Results: searchResults(20, 20), NextPageToken: "tok-3"}, nil).Once()
	maps.On("SearchPage", mock.Anything, pageTokenIs("tok-3")).
		Return(&googlemaps.SearchPageResponse{Results: searchResults(40, 20)}, nil).Once()
	maps.On("Details", mock.Anything, mock.Anything).Return(&googlemaps.PlaceDetails{Name: "x"}, nil)

	p := testPipeline(maps, emails)
	records, err := p.Run(context.Background(), model.SearchRequest{
		Location:   "40.0,-73.0",
		Query:      "coffee",
		NumResults: 50,
	})

	require.NoError(t, err)
	assert.Len(t, records, 50)
	maps.AssertNumberOfCalls(t, "SearchPage", 3)
	maps.AssertNumberOfCalls(t, "Details", 50)
}

func TestRun_StopsWhenNoToken(t *testing.T) {
	maps := &mockMapsClient{}
	emails := &mockExtractor{}

	maps.On("SearchPage", mock.Anything, pageTokenIs("")).
		Return(&googlemaps.SearchPageResponse{Results: searchResults(0, 7)}, nil).Once()
	maps.On("Details", mock.Anything, mock.Anything).Return(&googlemaps.PlaceDetails{Name: "x"}, nil)

	p := testPipeline(maps, emails)
	records, err := p.Run(context.Background(), model.SearchRequest{
		Location:   "40.0,-73.0",
		Query:      "coffee",
		NumResults: 100,
	})

	require.NoError(t, err)
	assert.Len(t, records, 7)
	maps.AssertNumberOfCalls(t, "SearchPage", 1)
}

func TestRun_SearchErrorKeepsPartialResults(t *testing.T) {
	maps := &mockMapsClient{}
	emails := &mockExtractor{}

	maps.On("SearchPage", mock.Anything, pageTokenIs("")).
		Return(&googlemaps.SearchPageResponse{Results: searchResults(0, 3), NextPageToken: "tok-2"}, nil).Once()
	maps.On("SearchPage", mock.Anything, pageTokenIs("tok-2")).
		Return(nil, eris.New("backend unavailable")).Once()
	maps.On("Details", mock.Anything, mock.Anything).Return(&googlemaps.PlaceDetails{Name: "x"}, nil)

	p := testPipeline(maps, emails)
	records, err := p.Run(context.Background(), model.SearchRequest{
		Location:   "40.0,-73.0",
		Query:      "coffee",
		NumResults: 100,
	})

	require.NoError(t, err, "search errors degrade to partial results")
	assert.Len(t, records, 3)
}

func TestRun_FailedEnrichmentOmitsRecordOnly(t *testing.T) {
	maps := &mockMapsClient{}
	emails := &mockExtractor{}

	maps.On("SearchPage", mock.Anything, mock.Anything).
		Return(&googlemaps.SearchPageResponse{Results: searchResults(0, 3)}, nil)
	maps.On("Details", mock.Anything, "place-0").Return(&googlemaps.PlaceDetails{Name: "Business 0"}, nil)
	maps.On("Details", mock.Anything, "place-1").Return(nil, eris.New("detail fetch failed"))
	maps.On("Details", mock.Anything, "place-2").Return(&googlemaps.PlaceDetails{Name: "Business 2"}, nil)

	p := testPipeline(maps, emails)
	records, err := p.Run(context.Background(), model.SearchRequest{
		Location:   "40.0,-73.0",
		Query:      "coffee",
		NumResults: 10,
	})

	require.NoError(t, err)
	require.Len(t, records, 2)
	names := []string{records[0].Name, records[1].Name}
	assert.ElementsMatch(t, []string{"Business 0", "Business 2"}, names)
}

func TestRun_RecordCountNeverExceedsCap(t *testing.T) {
	maps := &mockMapsClient{}
	emails := &mockExtractor{}

	maps.On("SearchPage", mock.Anything, mock.Anything).
		Return(&googlemaps.SearchPageResponse{Results: searchResults(0, 9)}, nil)
	maps.On("Details", mock.Anything, mock.Anything).Return(&googlemaps.PlaceDetails{Name: "x"}, nil)

	for _, limit := range []int{1, 3, 9, 20} {
		p := testPipeline(maps, emails)
		records, err := p.Run(context.Background(), model.SearchRequest{
			Location:   "40.0,-73.0",
			Query:      "coffee",
			NumResults: limit,
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(records), limit, "cap %d", limit)
	}
}
