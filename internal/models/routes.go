package models

import (
	"fmt"
)

// Route is an ordered sequence of stops and the segments connecting them.
// StartTime and EndTime are only set on routes created from the dashboard.
type Route struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime string    `json:"startTime,omitempty"`
	EndTime   string    `json:"endTime,omitempty"`
	Stops     []Stop    `json:"stops"`
	Segments  []Segment `json:"segments"`
}

func NewRoute(id, name string, stops []Stop, segments []Segment) Route {
	return Route{
		ID:       id,
		Name:     name,
		Stops:    stops,
		Segments: segments,
	}
}

// WithSegments returns the route with segments derived from consecutive stops
// when the route service sent none.
func (r Route) WithSegments() Route {
	if len(r.Segments) == 0 {
		r.Segments = DeriveSegments(r.Stops)
	}
	if r.Stops == nil {
		r.Stops = []Stop{}
	}
	return r
}

// NormalizeRoutes applies WithSegments to every route. A nil slice becomes empty.
func NormalizeRoutes(routes []Route) []Route {
	normalized := make([]Route, 0, len(routes))
	for _, route := range routes {
		normalized = append(normalized, route.WithSegments())
	}
	return normalized
}

// Validate checks stop coordinates and that every segment joins stops of this route.
func (r Route) Validate() error {
	known := make(map[string]bool, len(r.Stops))
	for i, stop := range r.Stops {
		if err := stop.Coordinates.Validate(); err != nil {
			return fmt.Errorf("route %q stop %d (%s): %w", r.ID, i, stop.ID, err)
		}
		known[stop.ID] = true
	}
	for i, segment := range r.Segments {
		if !known[segment.From.ID] || !known[segment.To.ID] {
			return fmt.Errorf("route %q segment %d (%s -> %s) references a stop outside the route",
				r.ID, i, segment.From.ID, segment.To.ID)
		}
	}
	return nil
}

// FindRoute returns the route with the given id.
func FindRoute(routes []Route, id string) (Route, bool) {
	for _, route := range routes {
		if route.ID == id {
			return route, true
		}
	}
	return Route{}, false
}
