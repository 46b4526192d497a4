package models

// Stop is a named point on a route. PredictedArrivalTime is display text ("HH:MM")
// produced by the route service and is never parsed.
type Stop struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	PredictedArrivalTime string      `json:"predictedArrivalTime"`
	Coordinates          Coordinates `json:"coordinates"`
	Sequence             int         `json:"sequence,omitempty"`
}

func NewStop(id, name, predictedArrivalTime string, lat, lng float64) Stop {
	return Stop{
		ID:                   id,
		Name:                 name,
		PredictedArrivalTime: predictedArrivalTime,
		Coordinates:          NewCoordinates(lat, lng),
	}
}

// RouteStop is a stop accumulated while a route is being created. Sequence is
// 1-based and always set.
type RouteStop struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Coordinates          Coordinates `json:"coordinates"`
	Sequence             int         `json:"sequence"`
	PredictedArrivalTime string      `json:"predictedArrivalTime"`
}

func (rs RouteStop) AsStop() Stop {
	return Stop{
		ID:                   rs.ID,
		Name:                 rs.Name,
		PredictedArrivalTime: rs.PredictedArrivalTime,
		Coordinates:          rs.Coordinates,
		Sequence:             rs.Sequence,
	}
}
