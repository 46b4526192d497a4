package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStops() []Stop {
	return []Stop{
		NewStop("1", "Stop 1", "10:00", 51.1605, 71.4704),
		NewStop("2", "Stop 2", "10:15", 51.1705, 71.4804),
	}
}

func TestDeriveSegmentsConnectsConsecutiveStops(t *testing.T) {
	stops := append(twoStops(), NewStop("3", "Stop 3", "10:30", 51.1805, 71.4904))

	segments := DeriveSegments(stops)

	require.Len(t, segments, len(stops)-1)
	for i, segment := range segments {
		assert.Equal(t, stops[i].ID, segment.From.ID)
		assert.Equal(t, stops[i+1].ID, segment.To.ID)
		assert.Equal(t, DefaultTravelTime, segment.TravelTime)
	}
}

func TestDeriveSegmentsWithFewerThanTwoStops(t *testing.T) {
	assert.Empty(t, DeriveSegments(nil))
	assert.Empty(t, DeriveSegments(twoStops()[:1]))
	assert.NotNil(t, DeriveSegments(nil))
}

func TestWithSegmentsKeepsServerSegments(t *testing.T) {
	stops := twoStops()
	route := NewRoute("r1", "Line 1", stops, []Segment{NewSegment(stops[0], stops[1], 12.5)})

	got := route.WithSegments()

	require.Len(t, got.Segments, 1)
	assert.Equal(t, 12.5, got.Segments[0].TravelTime)
}

func TestWithSegmentsDerivesMissingSegments(t *testing.T) {
	var route Route
	err := json.Unmarshal([]byte(`{
		"id": "r1",
		"name": "Line 1",
		"stops": [
			{"id": "a", "name": "A", "coordinates": [51.1, 71.4], "predictedArrivalTime": "06:00"},
			{"id": "b", "name": "B", "coordinates": [51.2, 71.5], "predictedArrivalTime": "06:10"}
		],
		"segments": []
	}`), &route)
	require.NoError(t, err)

	got := route.WithSegments()

	require.Len(t, got.Segments, 1)
	assert.Equal(t, "a", got.Segments[0].From.ID)
	assert.Equal(t, "b", got.Segments[0].To.ID)
	assert.Equal(t, 51.1, got.Stops[0].Coordinates.Lat())
	assert.Equal(t, 71.5, got.Stops[1].Coordinates.Lng())
}

func TestNormalizeRoutes(t *testing.T) {
	routes := NormalizeRoutes([]Route{
		NewRoute("r1", "Line 1", twoStops(), nil),
		NewRoute("r2", "Empty", nil, nil),
	})

	require.Len(t, routes, 2)
	assert.Len(t, routes[0].Segments, 1)
	assert.Empty(t, routes[1].Segments)
	assert.NotNil(t, routes[1].Stops)
	assert.NotNil(t, NormalizeRoutes(nil))
}

func TestRouteValidate(t *testing.T) {
	stops := twoStops()

	t.Run("valid route", func(t *testing.T) {
		route := NewRoute("r1", "Line 1", stops, DeriveSegments(stops))
		assert.NoError(t, route.Validate())
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		bad := append([]Stop{}, stops...)
		bad[1].Coordinates = NewCoordinates(91, 0)
		route := NewRoute("r1", "Line 1", bad, nil)
		assert.ErrorContains(t, route.Validate(), "latitude")
	})

	t.Run("segment outside route", func(t *testing.T) {
		foreign := NewStop("x", "Elsewhere", "", 0, 0)
		route := NewRoute("r1", "Line 1", stops, []Segment{NewSegment(stops[0], foreign, 3)})
		assert.ErrorContains(t, route.Validate(), "outside the route")
	})
}

func TestFindRoute(t *testing.T) {
	routes := []Route{NewRoute("r1", "Line 1", nil, nil), NewRoute("r2", "Line 2", nil, nil)}

	route, ok := FindRoute(routes, "r2")
	assert.True(t, ok)
	assert.Equal(t, "Line 2", route.Name)

	_, ok = FindRoute(routes, "missing")
	assert.False(t, ok)
}

func TestCoordinatesJSON(t *testing.T) {
	data, err := json.Marshal(NewStop("1", "Stop 1", "10:00", 51.1605, 71.4704))
	require.NoError(t, err)

	jsonStr := string(data)
	assert.Contains(t, jsonStr, `"coordinates":[51.1605,71.4704]`)
	assert.Contains(t, jsonStr, `"predictedArrivalTime":"10:00"`)
	assert.NotContains(t, jsonStr, `"sequence"`)
}

func TestCoordinatesValidate(t *testing.T) {
	assert.NoError(t, NewCoordinates(-90, 180).Validate())
	assert.Error(t, NewCoordinates(0, 180.5).Validate())
	assert.Error(t, NewCoordinates(-90.1, 0).Validate())
	assert.Error(t, NewCoordinates(math.NaN(), 71.4).Validate())
	assert.Error(t, NewCoordinates(51.1, math.NaN()).Validate())
	assert.Error(t, NewCoordinates(math.Inf(1), 0).Validate())
	assert.Error(t, NewCoordinates(0, math.Inf(-1)).Validate())
}

func TestRouteStopAsStop(t *testing.T) {
	rs := RouteStop{ID: "stop-1", Name: "Stop 1", Coordinates: NewCoordinates(1, 2), Sequence: 3, PredictedArrivalTime: "07:00"}

	stop := rs.AsStop()

	assert.Equal(t, "stop-1", stop.ID)
	assert.Equal(t, 3, stop.Sequence)
	assert.Equal(t, "07:00", stop.PredictedArrivalTime)
}
