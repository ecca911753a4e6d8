package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a resolved latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the coordinate as "lat,lng" for API query parameters.
func (c Coordinate) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lng)
}

// ParseCoordinate parses a "lat,lng" string. ok is false when the input is
// not a coordinate pair, in which case the caller should geocode it instead.
func ParseCoordinate(s string) (Coordinate, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lng: lng}, true
}

// SearchRequest describes one pipeline run. Built once from configuration
// and not mutated afterwards.
type SearchRequest struct {
	Location     string `json:"location"`
	Query        string `json:"query"`
	NumResults   int    `json:"num_results"`
	RadiusMeters int    `json:"radius_meters"`
}

// RawPlaceRef is the minimal listing returned by one search page. It only
// lives long enough to drive the detail fetch.
type RawPlaceRef struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
}

// PlaceRecord is one fully enriched business listing.
type PlaceRecord struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Phone   string   `json:"phone"`
	Website string   `json:"website"`
	Email   string   `json:"email,omitempty"`
	Rating  float64  `json:"rating"`
	Reviews int      `json:"reviews"`
	Types   []string `json:"types"`
}

// RecordHeader is the column order for tabular exports.
var RecordHeader = []string{"Name", "Address", "Phone", "Website", "Email", "Rating", "Reviews", "Types"}

// Row renders the record as one tabular row in RecordHeader order.
func (p PlaceRecord) Row() []string {
	return []string{
		p.Name,
		p.Address,
		p.Phone,
		p.Website,
		p.Email,
		strconv.FormatFloat(p.Rating, 'f', -1, 64),
		strconv.Itoa(p.Reviews),
		strings.Join(p.Types, ", "),
	}
}
