package webui

import (
	"bytes"
	"net/http"

	"github.com/davecgh/go-spew/spew"
)

var debugDataTypes = []string{"routes", "segments", "config", "map"}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
}

func (ui *WebUI) writeDebugData(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	var buf bytes.Buffer
	err := ui.debug.Execute(&buf, debugData{
		Title:     title,
		Pre:       spew.Sdump(data),
		DataTypes: debugDataTypes,
	})
	if err != nil {
		ui.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (ui *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "routes", "segments":
		routes, err := ui.Routes.ListRoutes(r.Context())
		if err != nil {
			data = map[string]string{"error": err.Error()}
			title = "Route Service - Error"
			break
		}
		if dataType == "routes" {
			data = routes
			title = "Route Service - Routes"
		} else {
			segments := make(map[string]interface{}, len(routes))
			for _, route := range routes {
				segments[route.ID] = route.Segments
			}
			data = segments
			title = "Route Service - Segments"
		}
	case "config":
		data = ui.Config
		title = "Dashboard - Configuration"
	case "map":
		data = ui.Maps.Config()
		title = "Dashboard - Map Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: routes, segments, config, map.",
		}
		title = "Choose a data type"
	}

	ui.writeDebugData(w, r, title, data)
}
