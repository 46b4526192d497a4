// Package selection holds the route selection rules of the dashboard. The
// selected route id travels in the ?route= query parameter, so these are pure
// functions over the current id and the routes on screen.
package selection

import "busdash.astana.transit/internal/models"

// QueryParam is the query parameter carrying the selected route id.
const QueryParam = "route"

// Select resolves the requested route id against routes. It returns the route
// and true when the id names one of them; an unknown or empty id selects nothing.
func Select(routes []models.Route, id string) (models.Route, bool) {
	if id == "" {
		return models.Route{}, false
	}
	return models.FindRoute(routes, id)
}

// AfterDelete returns the selection that remains once deletedID is gone: empty
// when the deleted route was the selected one, unchanged otherwise.
func AfterDelete(selectedID, deletedID string) string {
	if selectedID == deletedID {
		return ""
	}
	return selectedID
}
