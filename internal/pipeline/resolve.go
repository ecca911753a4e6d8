package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// ErrLocationNotFound aborts the run: no search is meaningful without
// resolved coordinates.
var ErrLocationNotFound = eris.New("location not found")

// resolveLocation turns the configured location into coordinates. A literal
// "lat,lng" pair is used verbatim without a geocoding call; anything else is
// geocoded and the first match wins.
func (p *Pipeline) resolveLocation(ctx context.Context, location string) (model.Coordinate, error) {
	if coord, ok := model.ParseCoordinate(location); ok {
		zap.L().Debug("pipeline: location already in coordinate form",
			zap.Float64("lat", coord.Lat),
			zap.Float64("lng", coord.Lng),
		)
		return coord, nil
	}

	result, err := p.maps.Geocode(ctx, location)
	if err != nil {
		return model.Coordinate{}, err
	}
	if !result.Matched {
		return model.Coordinate{}, ErrLocationNotFound
	}

	zap.L().Debug("pipeline: geocoded location",
		zap.String("location", location),
		zap.String("matched", result.FormattedAddress),
		zap.Float64("lat", result.Lat),
		zap.Float64("lng", result.Lng),
	)
	return model.Coordinate{Lat: result.Lat, Lng: result.Lng}, nil
}
