package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"busdash.astana.transit/internal/logging"
	"busdash.astana.transit/internal/mapview"
	"busdash.astana.transit/internal/models"
	"busdash.astana.transit/internal/utils"
)

// healthCheckTimeout bounds the upstream call made by the health endpoint.
const healthCheckTimeout = 2 * time.Second

// mapViewHandler returns the map view of one route as JSON.
func (ui *WebUI) mapViewHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(id); err != nil {
		ui.sendJSON(w, r, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	routes, err := ui.Routes.ListRoutes(r.Context())
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to fetch routes for map view", err)
		ui.sendJSON(w, r, http.StatusBadGateway, models.ErrorResponse{Error: msgFetchFailed})
		return
	}

	route, ok := models.FindRoute(routes, id)
	if !ok {
		ui.sendJSON(w, r, http.StatusNotFound, models.ErrorResponse{Error: "route not found"})
		return
	}

	ui.sendJSON(w, r, http.StatusOK, ui.Maps.Build(route, mapview.ModeViewing, ""))
}

type healthResponse struct {
	Status    string    `json:"status"`
	RouteAPI  string    `json:"routeApi"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// healthHandler reports liveness and whether the route service answers.
func (ui *WebUI) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := healthResponse{
		Status:    "ok",
		RouteAPI:  "reachable",
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK

	if _, err := ui.Routes.ListRoutes(ctx); err != nil {
		response.Status = "degraded"
		response.RouteAPI = "unreachable"
		response.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	ui.sendJSON(w, r, status, response)
}

func (ui *WebUI) sendJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode response", err)
	}
}
