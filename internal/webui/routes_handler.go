package webui

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"

	"busdash.astana.transit/internal/export"
	"busdash.astana.transit/internal/logging"
	"busdash.astana.transit/internal/routeapi"
	"busdash.astana.transit/internal/selection"
	"busdash.astana.transit/internal/utils"
)

func (ui *WebUI) routesHandler(w http.ResponseWriter, r *http.Request) {
	ui.renderRoutes(w, r, http.StatusOK, r.URL.Query().Get(selection.QueryParam), "")
}

func (ui *WebUI) renderRoutes(w http.ResponseWriter, r *http.Request, status int, selectedID, message string) {
	page := routesPage{
		pageData: pageData{Title: "Manage Routes", Active: "routes", Error: message},
	}

	routes, err := ui.Routes.ListRoutes(r.Context())
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to fetch routes", err)
		if page.Error == "" {
			page.Error = msgFetchFailed
		}
		status = http.StatusBadGateway
	}
	page.Routes = routes
	page.CanExport = len(routes) > 0

	if route, ok := selection.Select(routes, selectedID); ok {
		selected, err := ui.selected(route)
		if err != nil {
			ui.serverError(w, r, err)
			return
		}
		page.SelectedID = route.ID
		page.Selected = selected
	}

	ui.render(w, r, status, "routes", page)
}

// deleteRouteHandler deletes a route upstream and returns to the management
// page. The selection survives unless it was the deleted route.
func (ui *WebUI) deleteRouteHandler(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	selectedID := r.PostFormValue("selected")

	if err := utils.ValidateID(id); err != nil {
		ui.renderRoutes(w, r, http.StatusBadRequest, selectedID, "Invalid route id: "+err.Error())
		return
	}

	if err := ui.Routes.DeleteRoute(context.WithoutCancel(r.Context()), id); err != nil {
		logging.LogError(logger, "failed to delete route", err, slog.String("route_id", id))
		message := msgDeleteFailed
		if serverErr, ok := routeapi.IsServerError(err); ok {
			message = "Failed to delete route: " + serverErr.Message
		}
		ui.renderRoutes(w, r, http.StatusBadGateway, selectedID, message)
		return
	}

	logging.LogOperation(logger, "route_deleted", slog.String("route_id", id))
	http.Redirect(w, r, routesURL(selection.AfterDelete(selectedID, id)), http.StatusSeeOther)
}

func routesURL(selectedID string) string {
	if selectedID == "" {
		return "/routes"
	}
	return "/routes?" + url.Values{selection.QueryParam: {selectedID}}.Encode()
}

// exportHandler downloads every route's stops as CSV.
func (ui *WebUI) exportHandler(w http.ResponseWriter, r *http.Request) {
	routes, err := ui.Routes.ListRoutes(r.Context())
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to fetch routes for export", err)
		http.Error(w, msgFetchFailed, http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRoutesCSV(&buf, routes); err != nil {
		ui.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to write export", err)
		return
	}
	logging.LogOperation(logging.FromContext(r.Context()), "routes_exported",
		slog.Int("routes", len(routes)),
		slog.Int("rows", export.CountRows(routes)))
}
