package webui

import (
	"fmt"

	"busdash.astana.transit/internal/creator"
	"busdash.astana.transit/internal/mapview"
	"busdash.astana.transit/internal/models"
	"busdash.astana.transit/internal/utils"
)

// User-facing messages.
const (
	msgFetchFailed  = "Failed to fetch routes. Please try again."
	msgUploadFailed = "Failed to upload file. Please try again."
	msgDeleteFailed = "Failed to delete route. Please try again."
	msgCreateFailed = "Failed to create route. Please try again."
	msgNoFile       = "Please choose a file to upload."
	msgIncomplete   = "A route needs a name and at least two stops."
	msgNoClick      = "Click on the map to add a stop."
	msgStopNotFound = "That stop is no longer part of the route."
)

// createFormID is the form on the creation page that receives map clicks.
const createFormID = "route-form"

type pageData struct {
	Title  string
	Active string
	Error  string
	Notice string
}

type arrivalRow struct {
	Sequence int
	Name     string
	Arrival  string
	Heading  string
	Lat      float64
	Lng      float64
}

type selectedRoute struct {
	Route    models.Route
	ViewJSON string
	Arrivals []arrivalRow
}

type dashboardPage struct {
	pageData
	Routes      []models.Route
	SelectedID  string
	Selected    *selectedRoute
	MaxUploadMB int
}

type routesPage struct {
	pageData
	Routes     []models.Route
	SelectedID string
	Selected   *selectedRoute
	CanExport  bool
}

type createPage struct {
	pageData
	FormID    string
	Draft     *creator.Draft
	DraftJSON string
	ViewJSON  string
	CanSubmit bool
	MinStops  int
}

// selected renders route for the viewing map and the arrival table.
func (ui *WebUI) selected(route models.Route) (*selectedRoute, error) {
	viewJSON, err := ui.Maps.Build(route, mapview.ModeViewing, "").JSON()
	if err != nil {
		return nil, err
	}

	return &selectedRoute{
		Route:    route,
		ViewJSON: viewJSON,
		Arrivals: arrivals(route.Stops),
	}, nil
}

// arrivals lists the stops in order with the heading towards the next stop.
func arrivals(stops []models.Stop) []arrivalRow {
	rows := make([]arrivalRow, 0, len(stops))
	for i, stop := range stops {
		sequence := stop.Sequence
		if sequence == 0 {
			sequence = i + 1
		}
		heading := ""
		if i+1 < len(stops) {
			heading = utils.Heading(stop.Coordinates, stops[i+1].Coordinates)
		}
		rows = append(rows, arrivalRow{
			Sequence: sequence,
			Name:     stop.Name,
			Arrival:  stop.PredictedArrivalTime,
			Heading:  heading,
			Lat:      stop.Coordinates.Lat(),
			Lng:      stop.Coordinates.Lng(),
		})
	}
	return rows
}

func (ui *WebUI) createPage(draft *creator.Draft, message string) (createPage, error) {
	viewJSON, err := ui.Maps.Build(draft.Preview(), mapview.ModeCreating, createFormID).JSON()
	if err != nil {
		return createPage{}, fmt.Errorf("create page: %w", err)
	}

	return createPage{
		pageData:  pageData{Title: "Create Route", Active: "create", Error: message},
		FormID:    createFormID,
		Draft:     draft,
		DraftJSON: draft.Encode(),
		ViewJSON:  viewJSON,
		CanSubmit: draft.CanSubmit(),
		MinStops:  creator.MinStops,
	}, nil
}
