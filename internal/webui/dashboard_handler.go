package webui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"busdash.astana.transit/internal/logging"
	"busdash.astana.transit/internal/models"
	"busdash.astana.transit/internal/routeapi"
	"busdash.astana.transit/internal/selection"
	"busdash.astana.transit/internal/upload"
	"busdash.astana.transit/internal/utils"
)

func (ui *WebUI) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	page := ui.dashboardPage()
	status := http.StatusOK

	routes, err := ui.Routes.ListRoutes(r.Context())
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to fetch routes", err)
		page.Error = msgFetchFailed
		status = http.StatusBadGateway
	}
	page.Routes = routes

	if err := ui.selectRoute(&page, r.URL.Query().Get(selection.QueryParam)); err != nil {
		ui.serverError(w, r, err)
		return
	}

	ui.render(w, r, status, "dashboard", page)
}

// uploadHandler forwards the chosen file to the route service and shows the
// routes it parsed in place of the current collection.
func (ui *WebUI) uploadHandler(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	page := ui.dashboardPage()

	routes, err := ui.forwardUpload(w, r)
	if err != nil {
		logging.LogError(logger, "upload failed", err)
		page.Error = uploadErrorMessage(err)
		ui.render(w, r, uploadErrorStatus(err), "dashboard", page)
		return
	}

	logging.LogOperation(logger, "routes_uploaded", slog.Int("route_count", len(routes)))
	page.Routes = routes
	page.Notice = fmt.Sprintf("Loaded %d routes.", len(routes))
	ui.render(w, r, http.StatusOK, "dashboard", page)
}

var errNoFile = errors.New("no file selected")

// uploadRejectedError is a file the dashboard refused before contacting the
// route service.
type uploadRejectedError struct {
	err error
}

func (e *uploadRejectedError) Error() string { return e.err.Error() }
func (e *uploadRejectedError) Unwrap() error { return e.err }

func (ui *WebUI) forwardUpload(w http.ResponseWriter, r *http.Request) ([]models.Route, error) {
	limit := ui.Config.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, &uploadRejectedError{err: fmt.Errorf("read upload: %w", err)}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer logging.SafeCloseWithLogging(file, logging.FromContext(r.Context()), "upload file")

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &uploadRejectedError{err: fmt.Errorf("read upload: %w", err)}
	}

	name, body, err := upload.Prepare(utils.SanitizeFilename(header.Filename), data)
	if err != nil {
		return nil, &uploadRejectedError{err: err}
	}

	// Leaving the page does not abort an upload that already started.
	return ui.Routes.Upload(context.WithoutCancel(r.Context()), name, body)
}

func uploadErrorMessage(err error) string {
	var rejected *uploadRejectedError
	switch {
	case errors.Is(err, errNoFile):
		return msgNoFile
	case errors.As(err, &rejected):
		return "Upload failed: " + rejected.Error()
	case errors.Is(err, routeapi.ErrNoRoutes):
		return "Upload failed: " + err.Error()
	}
	if serverErr, ok := routeapi.IsServerError(err); ok {
		return "Upload failed: " + serverErr.Message
	}
	return msgUploadFailed
}

func uploadErrorStatus(err error) int {
	var rejected *uploadRejectedError
	if errors.Is(err, errNoFile) || errors.As(err, &rejected) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func (ui *WebUI) dashboardPage() dashboardPage {
	return dashboardPage{
		pageData:    pageData{Title: "Routes", Active: "dashboard"},
		MaxUploadMB: ui.Config.MaxUploadMB,
	}
}

func (ui *WebUI) selectRoute(page *dashboardPage, id string) error {
	route, ok := selection.Select(page.Routes, id)
	if !ok {
		return nil
	}
	selected, err := ui.selected(route)
	if err != nil {
		return err
	}
	page.SelectedID = route.ID
	page.Selected = selected
	return nil
}
