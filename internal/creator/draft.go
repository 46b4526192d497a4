package creator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"busdash.astana.transit/internal/models"
	"busdash.astana.transit/internal/routeapi"
)

const (
	DefaultStartTime = "06:00"
	DefaultEndTime   = "23:00"

	// MinStops is the number of stops a route needs before it can be submitted.
	MinStops = 2
)

// ErrIncomplete is returned by Submit when the draft has no name or too few stops.
// No request is made in that case.
var ErrIncomplete = errors.New("route needs a name and at least two stops")

var validate = validator.New()

// Draft is a route under construction. It lives only as long as the creation
// form and is carried between requests by Encode/DecodeDraft.
type Draft struct {
	Name      string             `json:"name"`
	StartTime string             `json:"startTime"`
	EndTime   string             `json:"endTime"`
	Stops     []models.RouteStop `json:"stops"`
}

func NewDraft() *Draft {
	return &Draft{
		StartTime: DefaultStartTime,
		EndTime:   DefaultEndTime,
		Stops:     []models.RouteStop{},
	}
}

// DecodeDraft restores a draft from its encoded form. An empty string yields a
// fresh draft.
func DecodeDraft(encoded string) (*Draft, error) {
	draft := NewDraft()
	if strings.TrimSpace(encoded) == "" {
		return draft, nil
	}
	if err := json.Unmarshal([]byte(encoded), draft); err != nil {
		return nil, fmt.Errorf("decode route draft: %w", err)
	}
	if draft.Stops == nil {
		draft.Stops = []models.RouteStop{}
	}
	if _, _, err := draft.window(); err != nil {
		draft.StartTime, draft.EndTime = DefaultStartTime, DefaultEndTime
	}
	draft.renumber()
	draft.Reschedule()
	return draft, nil
}

// Encode serializes the draft for the hidden form field.
func (d *Draft) Encode() string {
	data, err := json.Marshal(d)
	if err != nil {
		// A draft only holds strings and numbers.
		panic(err)
	}
	return string(data)
}

// SetWindow changes the service window used to schedule stops.
func (d *Draft) SetWindow(start, end string) error {
	startMinutes, err := ParseClock(start)
	if err != nil {
		return err
	}
	endMinutes, err := ParseClock(end)
	if err != nil {
		return err
	}
	if endMinutes <= startMinutes {
		return fmt.Errorf("end time %s must be after start time %s", end, start)
	}

	d.StartTime = FormatClock(startMinutes)
	d.EndTime = FormatClock(endMinutes)
	d.Reschedule()
	return nil
}

// AddStop appends a stop at the clicked location and reschedules every stop.
func (d *Draft) AddStop(lat, lng float64) (models.RouteStop, error) {
	coordinates := models.NewCoordinates(lat, lng)
	if err := coordinates.Validate(); err != nil {
		return models.RouteStop{}, err
	}

	sequence := len(d.Stops) + 1
	stop := models.RouteStop{
		ID:          "stop-" + uuid.NewString(),
		Name:        defaultStopName(sequence),
		Coordinates: coordinates,
		Sequence:    sequence,
	}
	d.Stops = append(d.Stops, stop)
	d.Reschedule()

	return d.Stops[len(d.Stops)-1], nil
}

// RemoveStop drops the stop with the given id, renumbers the remaining stops and
// reschedules them. It reports whether a stop was removed.
func (d *Draft) RemoveStop(id string) bool {
	for i, stop := range d.Stops {
		if stop.ID == id {
			d.Stops = append(d.Stops[:i], d.Stops[i+1:]...)
			d.renumber()
			d.Reschedule()
			return true
		}
	}
	return false
}

// Reschedule spreads the stops evenly inside the service window: with n stops,
// stop i is at start + (end-start)*i/(n+1), floored to the minute.
func (d *Draft) Reschedule() {
	start, end, err := d.window()
	if err != nil {
		return
	}

	n := len(d.Stops)
	interval := float64(end-start) / float64(n+1)
	for i := range d.Stops {
		offset := int(interval * float64(d.Stops[i].Sequence))
		d.Stops[i].PredictedArrivalTime = FormatClock(start + offset)
	}
}

// CanSubmit reports whether Submit would issue a request.
func (d *Draft) CanSubmit() bool {
	return strings.TrimSpace(d.Name) != "" && len(d.Stops) >= MinStops
}

// Request builds the body posted to the route service.
func (d *Draft) Request() routeapi.CreateRouteRequest {
	stops := make([]routeapi.CreateStop, 0, len(d.Stops))
	for _, stop := range d.Stops {
		stops = append(stops, routeapi.CreateStop{
			Name:          stop.Name,
			Latitude:      stop.Coordinates.Lat(),
			Longitude:     stop.Coordinates.Lng(),
			ScheduledTime: stop.PredictedArrivalTime,
		})
	}
	return routeapi.CreateRouteRequest{
		Name:  strings.TrimSpace(d.Name),
		Stops: stops,
	}
}

// Preview returns the draft as a route the map renderer can draw. Segment
// travel times are the gaps between the interpolated arrivals.
func (d *Draft) Preview() models.Route {
	stops := make([]models.Stop, 0, len(d.Stops))
	for _, stop := range d.Stops {
		stops = append(stops, stop.AsStop())
	}

	segments := make([]models.Segment, 0, len(stops))
	for i := 1; i < len(stops); i++ {
		segments = append(segments, models.NewSegment(stops[i-1], stops[i],
			travelMinutes(stops[i-1].PredictedArrivalTime, stops[i].PredictedArrivalTime)))
	}

	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = "New Route"
	}
	route := models.NewRoute("new", name, stops, segments)
	route.StartTime = d.StartTime
	route.EndTime = d.EndTime
	return route
}

// travelMinutes is the time between two "HH:MM" arrivals, zero when either is
// unscheduled.
func travelMinutes(from, to string) float64 {
	start, err := ParseClock(from)
	if err != nil {
		return 0
	}
	end, err := ParseClock(to)
	if err != nil || end < start {
		return 0
	}
	return float64(end - start)
}

// Submit sends the draft to the route service. The draft is left untouched
// whatever the outcome.
func (d *Draft) Submit(ctx context.Context, api routeapi.API) error {
	if !d.CanSubmit() {
		return ErrIncomplete
	}

	req := d.Request()
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid route: %w", err)
	}

	return api.CreateRoute(ctx, req)
}

func (d *Draft) window() (int, int, error) {
	start, err := ParseClock(d.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(d.EndTime)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("end time %s must be after start time %s", d.EndTime, d.StartTime)
	}
	return start, end, nil
}

// renumber restores sequences 1..n. Stops still carrying their generated name
// are renamed to match.
func (d *Draft) renumber() {
	for i := range d.Stops {
		sequence := i + 1
		if d.Stops[i].Name == "" || d.Stops[i].Name == defaultStopName(d.Stops[i].Sequence) {
			d.Stops[i].Name = defaultStopName(sequence)
		}
		d.Stops[i].Sequence = sequence
	}
}

func defaultStopName(sequence int) string {
	return fmt.Sprintf("Stop %d", sequence)
}
