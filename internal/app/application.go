package app

import (
	"log/slog"

	"busdash.astana.transit/internal/mapview"
	"busdash.astana.transit/internal/routeapi"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config Config
	Logger *slog.Logger
	Routes routeapi.API
	Maps   *mapview.Renderer
}

// New wires an Application from a validated configuration.
func New(cfg Config, logger *slog.Logger) (*Application, error) {
	maps, err := mapview.NewRenderer(cfg.Map)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config: cfg,
		Logger: logger,
		Routes: routeapi.NewClient(cfg.RouteAPI, logger),
		Maps:   maps,
	}, nil
}
