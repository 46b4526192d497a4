package mapview

import (
	"github.com/go-playground/validator/v10"

	"busdash.astana.transit/internal/models"
)

const (
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "&copy; OpenStreetMap contributors"
	DefaultZoom        = 13
	leafletAssets      = "https://unpkg.com/leaflet@1.9.4/dist/images/"
)

// DefaultCenter is used when a route has no stops yet.
var DefaultCenter = models.NewCoordinates(51.1605, 71.4704)

// IconConfig describes the marker icon. It is handed to the browser with every
// view, so nothing in the page patches the map library's defaults.
type IconConfig struct {
	IconURL       string `yaml:"iconURL" json:"iconUrl" validate:"required"`
	IconRetinaURL string `yaml:"iconRetinaURL" json:"iconRetinaUrl"`
	ShadowURL     string `yaml:"shadowURL" json:"shadowUrl"`
	IconSize      [2]int `yaml:"iconSize" json:"iconSize"`
	IconAnchor    [2]int `yaml:"iconAnchor" json:"iconAnchor"`
	PopupAnchor   [2]int `yaml:"popupAnchor" json:"popupAnchor"`
	ShadowSize    [2]int `yaml:"shadowSize" json:"shadowSize"`
}

// Config controls how routes are drawn.
type Config struct {
	TileURL        string             `yaml:"tileURL" validate:"required"`
	Attribution    string             `yaml:"attribution"`
	Zoom           int                `yaml:"zoom" validate:"gte=1,lte=19"`
	FallbackCenter models.Coordinates `yaml:"fallbackCenter"`
	SegmentColors  []string           `yaml:"segmentColors" validate:"min=1,dive,required"`
	Icon           IconConfig         `yaml:"icon"`
}

func DefaultIcon() IconConfig {
	return IconConfig{
		IconURL:       leafletAssets + "marker-icon.png",
		IconRetinaURL: leafletAssets + "marker-icon-2x.png",
		ShadowURL:     leafletAssets + "marker-shadow.png",
		IconSize:      [2]int{25, 41},
		IconAnchor:    [2]int{12, 41},
		PopupAnchor:   [2]int{1, -34},
		ShadowSize:    [2]int{41, 41},
	}
}

func DefaultConfig() Config {
	return Config{
		TileURL:        DefaultTileURL,
		Attribution:    DefaultAttribution,
		Zoom:           DefaultZoom,
		FallbackCenter: DefaultCenter,
		SegmentColors:  []string{"#2563eb", "#dc2626", "#16a34a", "#d97706", "#7c3aed", "#0891b2"},
		Icon:           DefaultIcon(),
	}
}

// Validate checks the configuration, including the fallback center.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return c.FallbackCenter.Validate()
}
