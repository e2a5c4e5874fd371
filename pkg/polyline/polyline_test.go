package polyline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdispatch/fleetdispatch/pkg/polyline"
)

func TestDecode_GoogleReferenceExample(t *testing.T) {
	// Reference example from Google's polyline algorithm documentation.
	coords := polyline.Decode("_p~iF~ps|U_ulLnnqC_mqNvxq`@")

	require.Len(t, coords, 3)
	assert.InDelta(t, 38.5, coords[0].Lat, 1e-5)
	assert.InDelta(t, -120.2, coords[0].Lon, 1e-5)
	assert.InDelta(t, 40.7, coords[1].Lat, 1e-5)
	assert.InDelta(t, -120.95, coords[1].Lon, 1e-5)
	assert.InDelta(t, 43.252, coords[2].Lat, 1e-5)
	assert.InDelta(t, -126.453, coords[2].Lon, 1e-5)
}

func TestDecode_Empty(t *testing.T) {
	assert.Nil(t, polyline.Decode(""))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := []polyline.Coordinate{
		{Lat: 52.2297, Lon: 21.0122},
		{Lat: 51.7592, Lon: 19.4560},
		{Lat: 50.0647, Lon: 19.9450},
	}

	decoded := polyline.Decode(polyline.Encode(original))

	require.Len(t, decoded, len(original))
	for i := range original {
		assert.InDelta(t, original[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, original[i].Lon, decoded[i].Lon, 1e-5)
	}
}

func TestLength(t *testing.T) {
	// Warsaw to Krakow straight line is roughly 252km.
	coords := []polyline.Coordinate{
		{Lat: 52.2297, Lon: 21.0122},
		{Lat: 50.0647, Lon: 19.9450},
	}

	length := polyline.Length(coords)
	assert.InDelta(t, 252000, length, 5000)
}

func TestLength_TooFewPoints(t *testing.T) {
	assert.Zero(t, polyline.Length(nil))
	assert.Zero(t, polyline.Length([]polyline.Coordinate{{Lat: 1, Lon: 1}}))
}

func TestBounds(t *testing.T) {
	coords := []polyline.Coordinate{
		{Lat: 52.2, Lon: 21.0},
		{Lat: 50.0, Lon: 19.9},
		{Lat: 51.1, Lon: 22.5},
	}

	minLat, minLon, maxLat, maxLon := polyline.Bounds(coords)
	assert.Equal(t, 50.0, minLat)
	assert.Equal(t, 19.9, minLon)
	assert.Equal(t, 52.2, maxLat)
	assert.Equal(t, 22.5, maxLon)
}

func TestCenter(t *testing.T) {
	coords := []polyline.Coordinate{
		{Lat: 50.0, Lon: 20.0},
		{Lat: 52.0, Lon: 22.0},
	}

	center := polyline.Center(coords)
	assert.InDelta(t, 51.0, center.Lat, 1e-9)
	assert.InDelta(t, 21.0, center.Lon, 1e-9)
}
