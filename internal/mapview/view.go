package mapview

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-polyline"

	"busdash.astana.transit/internal/models"
)

// Mode says whether the map only displays a route or also collects stops.
type Mode int

const (
	ModeViewing Mode = iota
	ModeCreating
)

func (m Mode) String() string {
	switch m {
	case ModeCreating:
		return "creating"
	default:
		return "viewing"
	}
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

type Popup struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Marker struct {
	StopID string             `json:"stopId"`
	Point  models.Coordinates `json:"point"`
	Popup  Popup              `json:"popup"`
}

type Polyline struct {
	Points  []models.Coordinates `json:"points"`
	Color   string               `json:"color"`
	Weight  int                  `json:"weight"`
	Tooltip string               `json:"tooltip"`
}

// Bounds is the south-west / north-east box around all stops. The dashboard
// map keeps its camera on Center; Bounds is published for map view API clients.
type Bounds struct {
	SouthWest models.Coordinates `json:"southWest"`
	NorthEast models.Coordinates `json:"northEast"`
}

// View is everything the browser needs to mount one map surface.
type View struct {
	RouteID     string             `json:"routeId"`
	Mode        Mode               `json:"mode"`
	TileURL     string             `json:"tileUrl"`
	Attribution string             `json:"attribution"`
	Center      models.Coordinates `json:"center"`
	Zoom        int                `json:"zoom"`
	Bounds      *Bounds            `json:"bounds,omitempty"`
	Icon        IconConfig         `json:"icon"`
	Markers     []Marker           `json:"markers"`
	Polylines   []Polyline         `json:"polylines"`
	EncodedPath string             `json:"encodedPath"`
	// ClickForm is the id of the form that receives clicked coordinates. It is
	// only set in ModeCreating.
	ClickForm string `json:"clickForm,omitempty"`
}

// JSON renders the view for the page's data attribute.
func (v View) JSON() (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode map view: %w", err)
	}
	return string(data), nil
}

// Renderer builds map views from routes.
type Renderer struct {
	config Config
}

// NewRenderer validates cfg and returns a renderer using it.
func NewRenderer(cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map configuration: %w", err)
	}
	return &Renderer{config: cfg}, nil
}

func (r *Renderer) Config() Config {
	return r.config
}

// Build produces the full view of route. Views are rebuilt from scratch on every
// render. clickForm is ignored unless mode is ModeCreating.
func (r *Renderer) Build(route models.Route, mode Mode, clickForm string) View {
	view := View{
		RouteID:     route.ID,
		Mode:        mode,
		TileURL:     r.config.TileURL,
		Attribution: r.config.Attribution,
		Center:      r.config.FallbackCenter,
		Zoom:        r.config.Zoom,
		Icon:        r.config.Icon,
		Markers:     make([]Marker, 0, len(route.Stops)),
		Polylines:   make([]Polyline, 0, len(route.Segments)),
	}
	if mode == ModeCreating {
		view.ClickForm = clickForm
	}

	if len(route.Stops) > 0 {
		view.Center = route.Stops[0].Coordinates
		view.Bounds = stopBounds(route.Stops)
		view.EncodedPath = encodePath(route.Stops)
	}

	for i, segment := range route.Segments {
		view.Polylines = append(view.Polylines, Polyline{
			Points:  []models.Coordinates{segment.From.Coordinates, segment.To.Coordinates},
			Color:   r.config.SegmentColors[i%len(r.config.SegmentColors)],
			Weight:  3,
			Tooltip: fmt.Sprintf("Travel time: %s min", formatMinutes(segment.TravelTime)),
		})
	}

	for _, stop := range route.Stops {
		view.Markers = append(view.Markers, Marker{
			StopID: stop.ID,
			Point:  stop.Coordinates,
			Popup: Popup{
				Title: stop.Name,
				Body:  "Predicted arrival: " + stop.PredictedArrivalTime,
			},
		})
	}

	return view
}

func stopBounds(stops []models.Stop) *Bounds {
	flat := make([]float64, 0, 2*len(stops))
	for _, stop := range stops {
		flat = append(flat, stop.Coordinates.Lng(), stop.Coordinates.Lat())
	}
	b := geom.NewBounds(geom.XY).Extend(geom.NewLineStringFlat(geom.XY, flat))
	return &Bounds{
		SouthWest: models.NewCoordinates(b.Min(1), b.Min(0)),
		NorthEast: models.NewCoordinates(b.Max(1), b.Max(0)),
	}
}

func encodePath(stops []models.Stop) string {
	coords := make([][]float64, 0, len(stops))
	for _, stop := range stops {
		coords = append(coords, []float64{stop.Coordinates.Lat(), stop.Coordinates.Lng()})
	}
	return string(polyline.EncodeCoords(coords))
}

func formatMinutes(minutes float64) string {
	return strconv.FormatFloat(minutes, 'f', -1, 64)
}
