package models

// DefaultTravelTime is the placeholder travel time, in minutes, given to segments
// derived locally because the route service did not send any.
const DefaultTravelTime = 5.0

// Segment is a directed edge between two consecutive stops of a route.
type Segment struct {
	From       Stop    `json:"from"`
	To         Stop    `json:"to"`
	TravelTime float64 `json:"travelTime"`
}

func NewSegment(from, to Stop, travelTime float64) Segment {
	return Segment{
		From:       from,
		To:         to,
		TravelTime: travelTime,
	}
}

// DeriveSegments connects consecutive stops in order. The result has
// len(stops)-1 entries and is empty for fewer than two stops.
func DeriveSegments(stops []Stop) []Segment {
	if len(stops) < 2 {
		return []Segment{}
	}
	segments := make([]Segment, 0, len(stops)-1)
	for i := 0; i < len(stops)-1; i++ {
		segments = append(segments, NewSegment(stops[i], stops[i+1], DefaultTravelTime))
	}
	return segments
}
